// Package clientip resolves the originating client address of a request.
//
// By default only the TCP peer address is used. Proxy headers are consulted
// when listed with WithTrustedHeaders; X-Forwarded-For style lists are read
// from the right, skipping the addresses of proxies declared with
// WithTrustedProxies, because everything left of the last proxy hop is
// supplied by the client. Addresses are normalized through net/netip, so
// IPv4-mapped IPv6 forms collapse to plain IPv4.
//
//	r.Use(clientip.Middleware(
//		clientip.WithTrustedHeaders("X-Forwarded-For"),
//		clientip.WithTrustedProxies("10.0.0.0/8"),
//	))
//
//	ip := clientip.FromContext(r.Context())
//
// LoggerExtractor adds the resolved address to every log record written
// with the request context.
package clientip
