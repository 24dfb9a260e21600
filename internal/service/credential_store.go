package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-character-api/internal/model"
	"go-character-api/internal/validate"
	"go-character-api/pkg/apierror"
)

type userRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetRefreshToken(ctx context.Context, email string, token string) error
}

// CredentialStore owns identities and password hashing. Hashing happens
// before the repository is touched so no store lock is held while bcrypt runs.
type CredentialStore struct {
	repo  userRepository
	cost  int
	rules validate.CredentialRules
}

func NewCredentialStore(repo userRepository, cost int, rules validate.CredentialRules) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{repo: repo, cost: cost, rules: rules}
}

func (s *CredentialStore) Rules() validate.CredentialRules {
	return s.rules
}

func (s *CredentialStore) Register(ctx context.Context, email string, password string) (model.User, error) {
	return s.create(ctx, email, password, model.RoleUser)
}

// EnsureAdmin creates an admin identity unless the email is already taken.
func (s *CredentialStore) EnsureAdmin(ctx context.Context, email string, password string) (model.User, bool, error) {
	user, err := s.create(ctx, email, password, model.RoleAdmin)
	if errors.Is(err, model.ErrUserAlreadyExists) {
		existing, findErr := s.Find(ctx, email)
		return existing, false, findErr
	}
	if err != nil {
		return model.User{}, false, err
	}
	return user, true, nil
}

func (s *CredentialStore) Find(ctx context.Context, email string) (model.User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

func (s *CredentialStore) FindByID(ctx context.Context, id int64) (model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// VerifyPassword compares in constant time via bcrypt.
func (s *CredentialStore) VerifyPassword(user model.User, plaintext string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil
}

func (s *CredentialStore) SetRefreshToken(ctx context.Context, email string, token string) error {
	return s.repo.SetRefreshToken(ctx, strings.TrimSpace(email), token)
}

func (s *CredentialStore) create(ctx context.Context, email string, password string, role model.Role) (model.User, error) {
	email = strings.TrimSpace(email)

	if issues := validate.Credentials(model.CredentialsRequest{Email: email, Password: password}, s.rules); len(issues) > 0 {
		return model.User{}, apierror.New("BAD_REQUEST", "Bad Request", "", http.StatusBadRequest).WithIssues(issues)
	}

	// Cheap pre-check so duplicates do not pay for a bcrypt round. The
	// repository enforces uniqueness again on insert.
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, fmt.Errorf("register %s: %w", email, model.ErrUserAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}
