package clientip

import "net/http"

// Middleware stores the resolved client address in the request context.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	res := New(opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := res.IP(r); ip != "" {
				r = r.WithContext(WithIP(r.Context(), ip))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// KeyFunc returns the client address from the context, falling back to
// RemoteAddr resolution when Middleware did not run. Its signature matches
// ratelimiter.KeyFunc.
func KeyFunc(prefix string) func(r *http.Request) string {
	res := New()
	return func(r *http.Request) string {
		ip := FromContext(r.Context())
		if ip == "" {
			ip = res.IP(r)
		}
		if ip == "" {
			return ""
		}
		return prefix + ip
	}
}
