package csrf

import "net/http"

// ValidatorFunc resolves the Validator for the current request, typically from
// the session attached to the request context. A nil result fails the check.
type ValidatorFunc func(r *http.Request) Validator

// Require returns middleware rejecting requests whose token does not match.
// onError receives ErrInvalid and writes the response; next is never invoked
// for a rejected request.
func Require(resolve ValidatorFunc, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v := resolve(r); v == nil || !v(r) {
				onError(w, r, ErrInvalid)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
