package domain

import "time"

// Profile es el documento de perfil asociado uno a uno con una cuenta.
type Profile struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	ContactPhone string    `json:"contact_phone"`
	CreatedAt    time.Time `json:"created_at"`
}
