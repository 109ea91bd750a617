package domain

import "time"

// Identity is the authenticated actor attached to a request.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Session binds an opaque token to an identity until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity returns the identity the session authenticates.
func (s *Session) Identity() Identity {
	return Identity{UserID: s.UserID, Username: s.Username}
}
