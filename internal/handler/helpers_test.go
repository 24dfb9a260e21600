package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-character-api/internal/middleware"
	"go-character-api/internal/model"
	"go-character-api/internal/repository"
	"go-character-api/internal/service"
	"go-character-api/internal/validate"
)

type testServer struct {
	handler     http.Handler
	credentials *service.CredentialStore
	tokens      *service.TokenService
	audit       *service.AuditService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	revocations := repository.NewRevocationSet()
	credentials := service.NewCredentialStore(
		repository.NewMemoryUserRepository(),
		bcrypt.MinCost,
		validate.CredentialRules{MinPasswordLength: 6, EmailDomain: "example.com"},
	)
	tokens, err := service.NewTokenService("handler-secret", time.Hour, 24*time.Hour, revocations)
	require.NoError(t, err)

	authService := service.NewAuthService(credentials, tokens, revocations, nil)
	characterService := service.NewCharacterService(repository.NewMemoryCharacterRepository(), nil)
	auditService := service.NewAuditService(10)

	authMW := middleware.NewAuthMiddleware(authService)
	authHandler := NewAuthHandler(authService)
	characterHandler := NewCharacterHandler(characterService)
	auditHandler := NewAuditHandler(auditService)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.With(authMW.RequireAuth).Post("/auth/logout", authHandler.Logout)
	r.With(authMW.RequireAuth).Get("/auth/me", authHandler.Me)
	r.With(authMW.RequireAuth).Get("/characters", characterHandler.List)
	r.With(authMW.RequireAuth).Get("/characters/{id}", characterHandler.Get)
	r.With(authMW.RequireAuth, authMW.RequireRoles(model.RoleAdmin, model.RoleUser)).Post("/characters", characterHandler.Create)
	r.With(authMW.RequireAuth, authMW.RequireRoles(model.RoleAdmin, model.RoleUser)).Patch("/characters/{id}", characterHandler.Update)
	r.With(authMW.RequireAuth, authMW.RequireRoles(model.RoleAdmin)).Delete("/characters/{id}", characterHandler.Delete)
	r.With(authMW.RequireAuth, authMW.RequireRoles(model.RoleAdmin)).Get("/audit", auditHandler.List)

	return testServer{handler: r, credentials: credentials, tokens: tokens, audit: auditService}
}

func (s testServer) do(t *testing.T, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// login registers email and returns a fresh access token for it.
func (s testServer) login(t *testing.T, email string, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/register", "", model.CredentialsRequest{Email: email, Password: password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/auth/login", "", model.CredentialsRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.AccessToken
}

func (s testServer) adminToken(t *testing.T) string {
	t.Helper()

	admin, _, err := s.credentials.EnsureAdmin(t.Context(), "root@example.com", "rootpass")
	require.NoError(t, err)

	token, err := s.tokens.IssueAccessToken(admin)
	require.NoError(t, err)
	return token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
