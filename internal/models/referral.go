package models

import "time"

// Referral is a directed inviter→referee edge. A referee owns at most one
// edge ever, and the edge activates at most once (on the referee's first
// order).
type Referral struct {
	InviterID string    `json:"inviter_id"`
	RefereeID string    `json:"referee_id"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterOutcome reports what Register did, so callers and tests assert on
// outcomes instead of the absence of an error.
type RegisterOutcome string

const (
	RegisterCreated       RegisterOutcome = "created"
	RegisterAlreadyExists RegisterOutcome = "already_exists"
	RegisterSelfReferral  RegisterOutcome = "self_referral"
)

// InviterStanding is one leaderboard row.
type InviterStanding struct {
	InviterID string `json:"inviter_id"`
	Activated int    `json:"activated"`
}
