package domain

type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// Identity is the verified caller supplied by the auth collaborator. The
// core never sees credentials.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Actor returns the identifier written to the audit trail.
func (i Identity) Actor() string {
	if i.ID == "" {
		return AnonymousActor
	}
	return i.ID
}
