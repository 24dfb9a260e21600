package model

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CharacterRequest struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}

type AuditActor struct {
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

type AuditEntry struct {
	ID         string     `json:"id"`
	Action     string     `json:"action"`
	OccurredAt string     `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Resource   string     `json:"resource,omitempty"`
	Payload    any        `json:"payload,omitempty"`
}

type AuditQuery struct {
	Action string
	Page   int
	Limit  int
}
