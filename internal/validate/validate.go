// Package validate checks decoded request bodies against the shapes the API
// accepts and reports every failed constraint as an apierror.Issue.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"go-character-api/internal/model"
	"go-character-api/pkg/apierror"
)

const MinCharacterFieldLength = 6

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

type CredentialRules struct {
	MinPasswordLength int
	// EmailDomain restricts registrations to one domain. Empty accepts any.
	EmailDomain string
}

func Credentials(req model.CredentialsRequest, rules CredentialRules) []apierror.Issue {
	issues := make([]apierror.Issue, 0)

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		issues = append(issues, apierror.Issue{Field: "email", Message: "email is required"})
	case !isEmail(email):
		issues = append(issues, apierror.Issue{Field: "email", Message: "email must be a valid address"})
	case rules.EmailDomain != "" && !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(rules.EmailDomain)):
		issues = append(issues, apierror.Issue{Field: "email", Message: fmt.Sprintf("email must end with @%s", rules.EmailDomain)})
	}

	if utf8.RuneCountInString(req.Password) < rules.MinPasswordLength {
		issues = append(issues, apierror.Issue{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", rules.MinPasswordLength),
		})
	} else if len(req.Password) > MaxPasswordBytes {
		issues = append(issues, apierror.Issue{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes),
		})
	}

	return issues
}

func Character(req model.CharacterRequest) []apierror.Issue {
	issues := make([]apierror.Issue, 0)
	issues = appendMinLength(issues, "name", req.Name, MinCharacterFieldLength)
	issues = appendMinLength(issues, "lastname", req.Lastname, MinCharacterFieldLength)
	return issues
}

func appendMinLength(issues []apierror.Issue, field string, value string, minLength int) []apierror.Issue {
	if utf8.RuneCountInString(value) < minLength {
		return append(issues, apierror.Issue{
			Field:   field,
			Message: fmt.Sprintf("%s must be at least %d characters", field, minLength),
		})
	}
	return issues
}

// isEmail accepts bare addresses only; "Name <a@b.c>" forms are rejected.
func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	if addr.Address != value {
		return false
	}

	at := strings.LastIndex(value, "@")
	return at > 0 && strings.Contains(value[at+1:], ".")
}
