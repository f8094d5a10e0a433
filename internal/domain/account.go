package domain

import "time"

// Account representa la identidad de una cuenta registrada.
// El hash de la contraseña nunca se serializa en respuestas.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
