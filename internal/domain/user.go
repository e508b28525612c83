package domain

import "time"

// User is an authenticated operator account. Anonymous raters are tracked by
// session instead.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session records an anonymous rater, upserted on every touch.
type Session struct {
	SessionID  string    `json:"session_id"`
	Country    *string   `json:"country"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
