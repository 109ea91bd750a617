package domain

import "time"

const (
	UsernameMinLen = 3
	UsernameMaxLen = 32
	PasswordMinLen = 6
)

// User models a registered forum member. Usernames never change once
// created, so copies cached in a session stay accurate for its lifetime.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
