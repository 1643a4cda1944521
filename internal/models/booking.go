package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the approval status of a booking. A booking is created WAITING
// and is moved exactly once by the item's owner to APPROVED or REJECTED.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Terminal reports whether no further transition is intended from s.
// The approval path does not currently enforce this; see the service layer.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) String() string { return string(s) }

// State is a query-time classification bucket for listing bookings.
// WAITING and REJECTED select by status; PAST, CURRENT and FUTURE compare
// the booking interval against the server clock.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState matches a state token case-insensitively after trimming
// surrounding whitespace. An empty token defaults to ALL.
func ParseState(raw string) (State, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return StateAll, nil
	}
	switch State(token) {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return State(token), nil
	}
	return "", fmt.Errorf("unknown state: %s", raw)
}

// Booking reserves an item for a half-open-ish interval: a booking is
// CURRENT when start <= now < end. End is strictly after start, enforced
// at creation only.
type Booking struct {
	ID         int64     `json:"id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ItemID     int64     `json:"itemId"`
	ItemName   string    `json:"itemName"`
	BookerID   int64     `json:"bookerId"`
	BookerName string    `json:"bookerName"`
	Status     Status    `json:"status"`
}
