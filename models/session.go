package models

import "time"

// Session binds an opaque id to a profile snapshot until ExpiresAt.
type Session struct {
	ID        string
	Profile   Profile
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
