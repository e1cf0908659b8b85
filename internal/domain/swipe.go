package domain

import (
	"fmt"
	"time"
)

type Direction string

const (
	DirectionAccept Direction = "accept"
	DirectionReject Direction = "reject"
)

func (d Direction) Valid() bool {
	return d == DirectionAccept || d == DirectionReject
}

// ParseDirection accepts the canonical names plus the left/right aliases used
// by card clients.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "accept", "right", "like":
		return DirectionAccept, nil
	case "reject", "left", "pass":
		return DirectionReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

type SwipeDecision struct {
	ID        string    `json:"id" db:"id"`
	ActorID   string    `json:"actor_id" db:"actor_id"`
	TargetID  string    `json:"target_id" db:"target_id"`
	Direction Direction `json:"direction" db:"direction"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ResolutionStatus string

const (
	StatusRejected ResolutionStatus = "rejected"
	StatusPending  ResolutionStatus = "pending"
	StatusMatched  ResolutionStatus = "matched"
)

// Resolution is the outcome of resolving one swipe. A non-nil Resolution
// always means the decision was recorded.
type Resolution struct {
	Status       ResolutionStatus `json:"status"`
	Decision     *SwipeDecision   `json:"decision,omitempty"`
	Match        *Match           `json:"match,omitempty"`
	Conversation *Conversation    `json:"conversation,omitempty"`
}

func (r *Resolution) Recorded() bool {
	return r != nil && r.Decision != nil
}

type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Type  string            `json:"type"`
	Data  map[string]string `json:"data,omitempty"`
}

const NotificationTypeMatch = "match"
