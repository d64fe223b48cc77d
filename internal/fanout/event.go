// Package fanout delivers calendar events to live subscribers. Events are
// addressed to groups; a subscriber joins any number of groups.
package fanout

import (
	"encoding/json"
	"time"
)

type Event struct {
	Group   string          `json:"group"`
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// UserGroup receives everything addressed to one user.
func UserGroup(userID string) string { return "User_" + userID }

// CalendarGroup receives generic updates about one user's calendar.
func CalendarGroup(ownerID string) string { return "Calendar_" + ownerID }
