package auth

import (
	"net/http"
	"strings"

	"github.com/moodmoney/quota/pkg/response"
)

// TokenExtractorFunc pulls a raw token out of a request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// ErrorHandlerFunc writes the response for a rejected request.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	extractor TokenExtractorFunc
	onError   ErrorHandlerFunc
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithExtractor replaces the bearer header extractor.
func WithExtractor(fn TokenExtractorFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.extractor = fn
		}
	}
}

// WithErrorHandler replaces the default 401 JSON response.
func WithErrorHandler(fn ErrorHandlerFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

// Middleware rejects requests without a valid token and stores the verified
// claims in the request context.
func Middleware(v *Verifier, opts ...MiddlewareOption) func(next http.Handler) http.Handler {
	if v == nil {
		panic("auth: verifier is required")
	}
	cfg := middlewareConfig{
		extractor: BearerTokenExtractor,
		onError:   defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.extractor(r)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	response.Error(w, response.ErrUnauthorized)
}
