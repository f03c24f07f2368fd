package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ActivityID identifies an activity. The server sends integers; the client
// only ever uses the id as a URL path segment or an option value, so it keeps
// the textual form and accepts either JSON numbers or strings.
type ActivityID string

func (id *ActivityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ActivityID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("activity id must be a number or string: %w", err)
	}
	*id = ActivityID(n.String())
	return nil
}

func (id ActivityID) String() string {
	return string(id)
}

// Activity is a server-defined offering as returned by GET /activities.
type Activity struct {
	ID                  ActivityID `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description"`
	Schedule            string     `json:"schedule"`
	MaxParticipants     int        `json:"max_participants"`
	CurrentParticipants int        `json:"current_participants"`
}

// UnmarshalJSON accepts capacities written as whole floats (12.0) as well as
// integers.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID                  ActivityID  `json:"id"`
		Name                string      `json:"name"`
		Description         string      `json:"description"`
		Schedule            string      `json:"schedule"`
		MaxParticipants     json.Number `json:"max_participants"`
		CurrentParticipants json.Number `json:"current_participants"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	maxParticipants, err := wholeNumber(wire.MaxParticipants)
	if err != nil {
		return fmt.Errorf("max_participants: %w", err)
	}
	currentParticipants, err := wholeNumber(wire.CurrentParticipants)
	if err != nil {
		return fmt.Errorf("current_participants: %w", err)
	}

	*a = Activity{
		ID:                  wire.ID,
		Name:                wire.Name,
		Description:         wire.Description,
		Schedule:            wire.Schedule,
		MaxParticipants:     maxParticipants,
		CurrentParticipants: currentParticipants,
	}
	return nil
}

func wholeNumber(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%s is not a whole number", n)
	}
	return int(f), nil
}

// SpotsLeft is max minus current participants. CurrentParticipants <=
// MaxParticipants is assumed, not enforced, so the result may be negative.
func (a Activity) SpotsLeft() int {
	return a.MaxParticipants - a.CurrentParticipants
}
