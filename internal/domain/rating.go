package domain

import "time"

// ValidRatingValue reports whether v is an accepted rating direction.
func ValidRatingValue(v int) bool {
	switch v {
	case -2, -1, 1, 2:
		return true
	}
	return false
}

// Rating is one append-only vote on a content record, identified by either a
// logged-in user or an anonymous session.
type Rating struct {
	ID        int64     `json:"id"`
	ContentID int64     `json:"content_id"`
	UserID    *int64    `json:"user_id"`
	SessionID *string   `json:"session_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
