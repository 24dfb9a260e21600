package handler

import (
	"net/http"

	"go-character-api/internal/middleware"
	"go-character-api/internal/model"
	"go-character-api/internal/service"
	"go-character-api/internal/validate"
	"go-character-api/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.CredentialsRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login answers with both tokens in the body and repeats the access token
// in the authorization response header.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.CredentialsRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if issues := validate.Credentials(payload, h.service.Credentials().Rules()); len(issues) > 0 {
		writeError(w, apierror.New("BAD_REQUEST", "Bad Request", "", http.StatusBadRequest).WithIssues(issues))
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+tokens.AccessToken)
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Message:      "Login successful",
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	token, _ := middleware.TokenFromContext(r.Context())

	if err := h.service.Logout(r.Context(), claims, token); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Logout successful")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	user, err := h.service.Me(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
