package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the stored identity. PasswordHash and RefreshToken never leave the
// service layer; handlers respond with AuthUser.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) Public() AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, Role: u.Role}
}

type AuthClaims struct {
	UserID    int64
	Email     string
	Role      Role
	Type      string
	TokenID   string
	ExpiresAt time.Time
}

type AuthUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
