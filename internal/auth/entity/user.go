package entity

import "time"

// User is the minimal identity this module manages: a phone number that has
// proven control of itself at least once.
type User struct {
	ID        int64
	Phone     string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
