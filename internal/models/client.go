package models

import "time"

// Client represents a microfinance client. Deleting a client cascades to
// its credits and savings accounts.
type Client struct {
	ID          int64      `json:"id"`
	ClientID    string     `json:"client_id"` // external identifier, CLT prefix
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	IDNumber    string     `json:"id_number"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FullName returns the client's display name
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
