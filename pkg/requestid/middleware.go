package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type config struct {
	header      string
	trustClient bool
	generate    func() string
}

type Option func(*config)

// WithHeader changes the header read from the request and written to the
// response.
func WithHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.header = http.CanonicalHeaderKey(name)
		}
	}
}

// IgnoreClientID always generates a fresh id.
func IgnoreClientID() Option {
	return func(c *config) { c.trustClient = false }
}

// WithGenerator replaces the UUIDv7 generator.
func WithGenerator(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.generate = fn
		}
	}
}

func Middleware(opts ...Option) func(http.Handler) http.Handler {
	cfg := config{header: Header, trustClient: true, generate: newID}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(cfg.header)
			if !cfg.trustClient || !IsValid(id) {
				id = cfg.generate()
			}
			w.Header().Set(cfg.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

// IsValid reports whether id is safe to echo back and log.
func IsValid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
