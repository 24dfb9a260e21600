package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"go-character-api/internal/model"
	"go-character-api/internal/service"
)

type authenticator interface {
	Authenticate(header string) service.AuthResult
}

type authObserver interface {
	ObserveAuth(result string)
}

type contextKey string

const authContextKey contextKey = "auth"

type authContext struct {
	claims *model.AuthClaims
	token  string
}

// AuthMiddleware is the request pipeline in front of protected routes:
// RequireAuth authenticates the bearer token, RequireRoles gates on role.
type AuthMiddleware struct {
	authenticator authenticator
	observer      authObserver
}

func NewAuthMiddleware(authenticator authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// WithObserver reports every authentication outcome to observer.
func (m *AuthMiddleware) WithObserver(observer authObserver) *AuthMiddleware {
	m.observer = observer
	return m
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result := m.authenticator.Authenticate(r.Header.Get("Authorization"))
		if m.observer != nil {
			m.observer.ObserveAuth(result.Status.String())
		}

		switch result.Status {
		case service.AuthAuthenticated:
			ctx := context.WithValue(r.Context(), authContextKey, authContext{claims: result.Claims, token: result.Token})
			next.ServeHTTP(w, r.WithContext(ctx))
		case service.AuthRevoked:
			WriteJSONError(w, http.StatusForbidden, "TOKEN_REVOKED", "Token revoked")
		case service.AuthInvalid:
			WriteJSONError(w, http.StatusForbidden, "INVALID_TOKEN", "Invalid token")
		case service.AuthUnauthenticated:
			WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		default:
			slog.Error("unknown auth status", "status", result.Status.String())
			WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}
	})
}

// RequireRoles must run after RequireAuth. The deny response never names the
// roles that would have been accepted.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	allowed := service.NewRoleSet(allowedRoles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}

			if !service.Authorize(claims, allowed) {
				WriteJSONError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	auth, ok := ctx.Value(authContextKey).(authContext)
	if !ok || auth.claims == nil {
		return nil, false
	}
	return auth.claims, true
}

// TokenFromContext returns the raw bearer token RequireAuth accepted.
func TokenFromContext(ctx context.Context) (string, bool) {
	auth, ok := ctx.Value(authContextKey).(authContext)
	if !ok || auth.token == "" {
		return "", false
	}
	return auth.token, true
}
