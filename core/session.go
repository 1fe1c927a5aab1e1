package core

import "time"

// SessionTTL is the validity window for an admin session. The KV record is
// written with the same TTL so expired sessions disappear on their own even
// if nobody validates them again.
const SessionTTL = 24 * time.Hour

type (
	// Session is the server-side record behind the admin cookie. The token
	// itself is an opaque UUID; everything else lives in the store.
	Session struct {
		ID            string    `json:"id"`
		Authenticated bool      `json:"authenticated"`
		CreatedAt     time.Time `json:"createdAt"`
		ExpiresAt     time.Time `json:"expiresAt"`
	}
)

// Valid reports whether the session is authenticated and not yet expired.
func (s *Session) Valid(now time.Time) bool {
	return s.Authenticated && now.Before(s.ExpiresAt)
}
