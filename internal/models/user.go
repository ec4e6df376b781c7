package models

import "time"

// Roles known to the system. Capability checks live in the service layer.
const (
	RoleAdministrateur = "administrateur"
	RoleGestionnaire   = "gestionnaire"
	RoleAgent          = "agent"
)

// User represents a staff user in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
