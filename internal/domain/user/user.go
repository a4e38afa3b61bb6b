// Package user defines the authenticated identity consumed by the service
// layer for authorization decisions.
package user

// Role gates access to admin operations.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// User is a stored account. HashedPassword is a bcrypt hash.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	Role           Role
	Active         bool
}

// Identity is the authenticated principal attached to a request: the numeric
// token subject plus the role used for authorization.
type Identity struct {
	UserID int64
	Role   Role
}
