package models

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// Principal is the identity carried by a verified bearer token.
type Principal struct {
	ID   uint
	Role string
}

func (principal Principal) IsAdmin() bool {
	return principal.Role == RoleAdmin
}
