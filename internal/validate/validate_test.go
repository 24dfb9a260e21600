package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-character-api/internal/model"
)

func TestCredentials(t *testing.T) {
	t.Parallel()

	rules := CredentialRules{MinPasswordLength: 6, EmailDomain: "example.com"}

	tests := []struct {
		name   string
		req    model.CredentialsRequest
		fields []string
	}{
		{name: "valid", req: model.CredentialsRequest{Email: "a@example.com", Password: "secret1"}},
		{name: "missing email", req: model.CredentialsRequest{Password: "secret1"}, fields: []string{"email"}},
		{name: "malformed email", req: model.CredentialsRequest{Email: "not-an-email", Password: "secret1"}, fields: []string{"email"}},
		{name: "display name form", req: model.CredentialsRequest{Email: "A <a@example.com>", Password: "secret1"}, fields: []string{"email"}},
		{name: "wrong domain", req: model.CredentialsRequest{Email: "a@other.org", Password: "secret1"}, fields: []string{"email"}},
		{name: "short password", req: model.CredentialsRequest{Email: "a@example.com", Password: "12345"}, fields: []string{"password"}},
		{name: "long password", req: model.CredentialsRequest{Email: "a@example.com", Password: strings.Repeat("x", 73)}, fields: []string{"password"}},
		{name: "both invalid", req: model.CredentialsRequest{Email: "x", Password: ""}, fields: []string{"email", "password"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := Credentials(tc.req, rules)
			fields := make([]string, 0, len(issues))
			for _, issue := range issues {
				fields = append(fields, issue.Field)
			}
			if len(tc.fields) == 0 {
				require.Empty(t, fields)
				return
			}
			require.Equal(t, tc.fields, fields)
		})
	}
}

func TestCredentialsWithoutDomainRestriction(t *testing.T) {
	t.Parallel()

	issues := Credentials(model.CredentialsRequest{Email: "someone@elsewhere.io", Password: "secret1"}, CredentialRules{MinPasswordLength: 6})
	require.Empty(t, issues)
}

func TestCharacter(t *testing.T) {
	t.Parallel()

	require.Empty(t, Character(model.CharacterRequest{Name: "Walter", Lastname: "Sobchak"}))

	issues := Character(model.CharacterRequest{Name: "Dude", Lastname: "Lebowski"})
	require.Len(t, issues, 1)
	require.Equal(t, "name", issues[0].Field)

	issues = Character(model.CharacterRequest{})
	require.Len(t, issues, 2)
}
