package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-character-api/internal/event"
	"go-character-api/internal/repository"
	"go-character-api/internal/validate"
)

const testSecret = "test-secret"

type authFixture struct {
	auth        *AuthService
	credentials *CredentialStore
	tokens      *TokenService
	revocations *repository.RevocationSet
	users       *repository.MemoryUserRepository
	bus         *event.InMemoryBus
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	revocations := repository.NewRevocationSet()
	bus := event.NewBus()

	credentials := NewCredentialStore(users, bcrypt.MinCost, validate.CredentialRules{MinPasswordLength: 6, EmailDomain: "example.com"})
	tokens, err := NewTokenService(testSecret, time.Hour, 24*time.Hour, revocations)
	require.NoError(t, err)

	return authFixture{
		auth:        NewAuthService(credentials, tokens, revocations, bus),
		credentials: credentials,
		tokens:      tokens,
		revocations: revocations,
		users:       users,
		bus:         bus,
	}
}
