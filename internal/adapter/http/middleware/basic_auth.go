package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/api-sage/mini-bank-ledger/internal/domain"
	"github.com/api-sage/mini-bank-ledger/internal/logger"
)

type contextKey struct{}

var principalKey contextKey

// BasicAuth authenticates the admin channel and attaches the resulting
// Principal to the request context. Services receive the Principal
// explicitly; nothing downstream consults session state.
func BasicAuth(channelID, channelKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if channelID == "" || channelKey == "" {
				logger.Error("basic auth middleware missing server configuration", nil, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "server auth configuration is missing", http.StatusInternalServerError)
				return
			}

			id, key, ok := r.BasicAuth()
			if !ok || !secureEqual(id, channelID) || !secureEqual(key, channelKey) {
				logger.Info("basic auth middleware unauthorized request", logger.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"credentials": "invalid_or_missing",
				})
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal := domain.Principal{
				ChannelID: channelID,
				Capabilities: []domain.Capability{
					domain.CapabilityAccountAdmin,
					domain.CapabilityFundsMovement,
				},
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
		})
	}
}

// PrincipalFromContext returns the authenticated Principal, or a zero
// Principal holding no capabilities when authentication never ran.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	principal, _ := ctx.Value(principalKey).(domain.Principal)
	return principal
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
