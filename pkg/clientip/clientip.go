package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
)

type Option func(*Resolver)

// WithTrustedHeaders sets the proxy headers consulted before RemoteAddr, in
// priority order. No headers means RemoteAddr only.
func WithTrustedHeaders(headers ...string) Option {
	return func(res *Resolver) {
		res.headers = res.headers[:0]
		for _, h := range headers {
			if h = strings.TrimSpace(h); h != "" {
				res.headers = append(res.headers, http.CanonicalHeaderKey(h))
			}
		}
	}
}

// WithTrustedProxies lists the networks of the proxies in front of the
// server. When set, headers are only honored for requests arriving from one
// of them, and their own addresses are skipped while walking a header list.
// Invalid prefixes are ignored.
func WithTrustedProxies(cidrs ...string) Option {
	return func(res *Resolver) {
		for _, c := range cidrs {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if p, err := netip.ParsePrefix(c); err == nil {
				res.proxies = append(res.proxies, p.Masked())
			} else if a, err := netip.ParseAddr(c); err == nil {
				res.proxies = append(res.proxies, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			}
		}
	}
}

// Resolver extracts client addresses from requests.
type Resolver struct {
	headers []string
	proxies []netip.Prefix
}

func New(opts ...Option) *Resolver {
	res := &Resolver{}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// IP returns the client address or "" when nothing parses.
//
// Proxies append the address they received the request from, so only the
// right end of a forwarded list is trustworthy. Entries are read right to
// left and the first one that is not a trusted proxy wins.
func (res *Resolver) IP(r *http.Request) string {
	peer := peerAddr(r.RemoteAddr)
	if len(res.headers) == 0 || (len(res.proxies) > 0 && !res.trusted(peer)) {
		return format(peer)
	}

	for _, h := range res.headers {
		var entries []string
		for _, v := range r.Header.Values(h) {
			entries = append(entries, strings.Split(v, ",")...)
		}
		for _, e := range slices.Backward(entries) {
			addr, ok := parse(e)
			if !ok {
				continue
			}
			if res.trusted(addr) {
				continue
			}
			return format(addr)
		}
	}
	return format(peer)
}

func (res *Resolver) trusted(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range res.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func peerAddr(remote string) netip.Addr {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	addr, _ := parse(host)
	return addr
}

func parse(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}

func format(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	return addr.String()
}
