package model

import "time"

// UserProfile describes the account owning the session.
type UserProfile struct {
	ID        ServerID  `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session pairs the opaque bearer token with the profile it authenticates.
// ExpiresAt is zero when the token does not carry an expiry.
type Session struct {
	Token     string
	User      UserProfile
	ExpiresAt time.Time
}

// Expired reports whether the token expiry is known and has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
