package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Message is one chat message of a stored session. Only role and content are
// persisted; any other keys the caller sends are dropped.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the persisted conversation context of one caller-chosen id.
type Session struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	CreatedAt UnixTime  `json:"created_at"`
	UpdatedAt UnixTime  `json:"updated_at"`
}

// Expired reports whether the session was last updated more than ttl before now.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt.Time) > ttl
}

// UnixTime is a timestamp encoded as fractional unix seconds.
type UnixTime struct {
	time.Time
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	secs := float64(t.UnixNano()) / float64(time.Second)
	return []byte(strconv.FormatFloat(secs, 'f', 6, 64)), nil
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return err
	}
	whole, frac := math.Modf(secs)
	t.Time = time.Unix(int64(whole), int64(frac*float64(time.Second)))
	return nil
}
