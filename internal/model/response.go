package model

import "go-character-api/pkg/apierror"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string           `json:"message"`
	Code    string           `json:"code,omitempty"`
	Details string           `json:"details,omitempty"`
	Issues  []apierror.Issue `json:"issues,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse keeps the accesToken spelling clients already depend on.
type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accesToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuditListResponse struct {
	Items []AuditEntry `json:"items"`
	Meta  Meta         `json:"meta"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
