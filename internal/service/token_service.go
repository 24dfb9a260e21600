package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-character-api/internal/model"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthStatus is the outcome of authenticating a bearer header.
type AuthStatus int

const (
	// AuthUnauthenticated means no usable "Bearer <token>" header was sent.
	AuthUnauthenticated AuthStatus = iota
	// AuthRevoked means the token is on the revocation set.
	AuthRevoked
	// AuthInvalid means the signature, type or expiry check failed.
	AuthInvalid
	AuthAuthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case AuthUnauthenticated:
		return "unauthenticated"
	case AuthRevoked:
		return "revoked"
	case AuthInvalid:
		return "invalid"
	case AuthAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("AuthStatus(%d)", int(s))
	}
}

// AuthResult carries Claims only when Status is AuthAuthenticated.
type AuthResult struct {
	Status AuthStatus
	Token  string
	Claims *model.AuthClaims
}

type revocationChecker interface {
	IsRevoked(token string) bool
}

type tokenClaims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    revocationChecker
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration, refreshTTL time.Duration, revoked revocationChecker) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		now:        time.Now,
	}, nil
}

func (s *TokenService) IssueAccessToken(user model.User) (string, error) {
	return s.sign(tokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		Type:   tokenTypeAccess,
	}, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(user model.User) (string, error) {
	return s.sign(tokenClaims{
		UserID: user.ID,
		Type:   tokenTypeRefresh,
	}, s.refreshTTL)
}

// Authenticate checks a raw Authorization header value. The revocation set
// is consulted before the signature, and both must pass.
func (s *TokenService) Authenticate(header string) AuthResult {
	token, ok := bearerToken(header)
	if !ok {
		return AuthResult{Status: AuthUnauthenticated}
	}

	if s.revoked != nil && s.revoked.IsRevoked(token) {
		return AuthResult{Status: AuthRevoked, Token: token}
	}

	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return AuthResult{Status: AuthInvalid, Token: token}
	}

	return AuthResult{Status: AuthAuthenticated, Token: token, Claims: claims}
}

func (s *TokenService) parse(token string, expectedType string) (*model.AuthClaims, error) {
	parsed := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	if parsed.Type != expectedType || parsed.UserID == 0 {
		return nil, model.ErrTokenInvalid
	}

	claims := &model.AuthClaims{
		UserID:  parsed.UserID,
		Email:   parsed.Email,
		Role:    model.Role(parsed.Role),
		Type:    parsed.Type,
		TokenID: parsed.ID,
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

func (s *TokenService) sign(claims tokenClaims, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   fmt.Sprintf("%d", claims.UserID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.Type, err)
	}
	return signed, nil
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
