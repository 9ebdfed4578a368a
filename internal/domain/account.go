package domain

import "time"

// Account represents a registered user of the service
type Account struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Phone     string    `json:"phone" db:"phone"` // E.164
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
