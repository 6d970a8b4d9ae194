package domain

// Role differentiates customers from the administrator. It is fixed at creation.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Identity is what a session remembers about the signed-in user.
type Identity struct {
	UserID int64  `json:"user_id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
}

// IdentityOf builds the session identity for u.
func IdentityOf(u *User) Identity {
	return Identity{UserID: u.ID, Role: u.Role, Name: u.Name}
}
