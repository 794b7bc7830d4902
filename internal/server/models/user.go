package models

import "time"

// User is an operator account allowed to request upload intents and
// commit asset metadata.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}
