package model

import "github.com/google/uuid"

// User is the contact record joined into admin order listings and used as
// the notification recipient. Account management lives in a separate
// identity service; this table is read-only here.
type User struct {
	ID       uuid.UUID `json:"id" db:"id"`
	FullName string    `json:"full_name" db:"full_name"`
	Email    string    `json:"email" db:"email"`
	Phone    string    `json:"phone,omitempty" db:"phone"`
}
