// File: internal/domain/session.go
package domain

import "time"

// SessionUser is the profile part of a session.
type SessionUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is an identity token plus the user it belongs to.
type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	ExpiresAt   int64       `json:"expires_at"`
	User        SessionUser `json:"user"`
}

// Expired reports whether the session's token has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

// SessionUserFrom projects a stored user onto the session payload.
func SessionUserFrom(u *User) SessionUser {
	su := SessionUser{ID: u.ID, Email: u.Email}
	if u.FullName != "" {
		su.Metadata = map[string]any{"full_name": u.FullName}
	}
	return su
}
