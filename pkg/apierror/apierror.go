package apierror

import (
	"fmt"
	"strings"
)

// Issue is one failed field constraint reported back to the client.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIError struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Details    string  `json:"details,omitempty"`
	Issues     []Issue `json:"issues,omitempty"`
	HTTPStatus int     `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if len(e.Issues) > 0 {
		fields := make([]string, 0, len(e.Issues))
		for _, issue := range e.Issues {
			fields = append(fields, issue.Field)
		}
		return fmt.Sprintf("%s: %s [%s]", e.Code, e.Message, strings.Join(fields, ","))
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// WithIssues returns a copy of e carrying the given validation issues.
func (e *APIError) WithIssues(issues []Issue) *APIError {
	clone := *e
	clone.Issues = append([]Issue(nil), issues...)
	return &clone
}
