package models

type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Caller is the authenticated principal handed to every core operation by the
// identity layer. The core trusts it and only performs role/ownership checks.
type Caller struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// RecipientModel returns the identity space notifications for this caller live in.
func (c Caller) RecipientModel() RecipientModel {
	if c.Role == RoleVendor {
		return RecipientVendor
	}
	return RecipientUser
}
