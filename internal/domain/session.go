package domain

import "time"

// Session tracks one refresh-token lineage. At most one non-revoked session
// exists per (user, device); issuing a new one revokes the prior first.
type Session struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	DeviceID         string     `json:"device_id"`
	RefreshTokenHash string     `json:"-"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
