package domain

import "time"

// Claims is the verified claim set of a signed token.
type Claims struct {
	ID          string
	Issuer      string
	Subject     string
	Role        Role
	Permissions []Permission
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Principal returns the snapshot that was embedded at issuance.
func (c *Claims) Principal() Principal {
	return NewPrincipal(c.Subject, c.Role, c.Permissions)
}
