package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-character-api/internal/event"
	"go-character-api/internal/model"
	"go-character-api/pkg/apierror"
)

type tokenRevoker interface {
	Revoke(token string, expiresAt time.Time)
	PruneExpired(now time.Time) int
}

// AuthService runs the login, logout and registration flows on top of the
// credential store, token service and revocation set.
type AuthService struct {
	credentials *CredentialStore
	tokens      *TokenService
	revocations tokenRevoker
	bus         event.Bus
}

func NewAuthService(credentials *CredentialStore, tokens *TokenService, revocations tokenRevoker, bus event.Bus) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		revocations: revocations,
		bus:         bus,
	}
}

func (s *AuthService) Credentials() *CredentialStore {
	return s.credentials
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (model.AuthUser, error) {
	user, err := s.credentials.Register(ctx, email, password)
	if err != nil {
		return model.AuthUser{}, err
	}

	s.publish(event.TypeUserRegistered, actorFromUser(user), userResource(user.ID), nil)
	return user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	user, err := s.credentials.Find(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		s.publish(event.TypeUserLoginFailed, event.Actor{Email: email}, "", map[string]string{"reason": "unknown_email"})
		return model.TokenPair{}, invalidCredentials()
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	if !s.credentials.VerifyPassword(user, password) {
		s.publish(event.TypeUserLoginFailed, actorFromUser(user), userResource(user.ID), map[string]string{"reason": "wrong_password"})
		return model.TokenPair{}, invalidCredentials()
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := s.credentials.SetRefreshToken(ctx, user.Email, refreshToken); err != nil {
		return model.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	s.publish(event.TypeUserLoggedIn, actorFromUser(user), userResource(user.ID), nil)
	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the presented access token and clears the caller's refresh
// token. A caller without claims is a bad request; a caller whose identity
// has vanished is forbidden.
func (s *AuthService) Logout(ctx context.Context, claims *model.AuthClaims, token string) error {
	if token != "" {
		var expiresAt time.Time
		if claims != nil {
			expiresAt = claims.ExpiresAt
		}
		s.revocations.Revoke(token, expiresAt)
	}

	if claims == nil || claims.Email == "" {
		return apierror.New("BAD_REQUEST", "User not authenticated", "", http.StatusBadRequest)
	}

	err := s.credentials.SetRefreshToken(ctx, claims.Email, "")
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.publish(event.TypeUserLoggedOut, actorFromClaims(claims), userResource(claims.UserID), nil)
	return nil
}

func (s *AuthService) Me(ctx context.Context, claims *model.AuthClaims) (model.AuthUser, error) {
	if claims == nil {
		return model.AuthUser{}, model.ErrUnauthorized
	}

	user, err := s.credentials.FindByID(ctx, claims.UserID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) Authenticate(header string) AuthResult {
	return s.tokens.Authenticate(header)
}

// StartRevocationSweeper prunes expired revocation entries on every tick
// until ctx is cancelled.
func (s *AuthService) StartRevocationSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.revocations.PruneExpired(now); removed > 0 {
				slog.Info("pruned expired revoked tokens", "removed", removed)
			}
		}
	}
}

func (s *AuthService) publish(t event.Type, actor event.Actor, resource string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.New(t, actor, resource, payload))
}

func invalidCredentials() error {
	return model.ErrInvalidCredentials
}

func actorFromUser(user model.User) event.Actor {
	return event.Actor{UserID: user.ID, Email: user.Email, Role: string(user.Role)}
}

func actorFromClaims(claims *model.AuthClaims) event.Actor {
	if claims == nil {
		return event.Actor{}
	}
	return event.Actor{UserID: claims.UserID, Email: claims.Email, Role: string(claims.Role)}
}

func userResource(id int64) string {
	return fmt.Sprintf("users/%d", id)
}
