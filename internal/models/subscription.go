package models

import "time"

type SubscriptionState string

const (
	StateQuoted  SubscriptionState = "quoted"
	StateActive  SubscriptionState = "active"
	StateExpired SubscriptionState = "expired"
	// StateSuperseded is an activated row that a later activation replaced.
	StateSuperseded SubscriptionState = "superseded"
)

type Subscription struct {
	ID                   int64      `json:"id"`
	AccountID            int64      `json:"accountId"`
	Tier                 Tier       `json:"tier"`
	Period               Period     `json:"period"`
	Amount               float64    `json:"amount"`
	Active               bool       `json:"active"`
	TransactionSignature *string    `json:"transactionSignature"`
	StartDate            time.Time  `json:"startDate"`
	EndDate              *time.Time `json:"endDate"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Expired reports whether an end date exists and now is past it.
func (s *Subscription) Expired(now time.Time) bool {
	return s.EndDate != nil && now.After(*s.EndDate)
}

// State derives the lifecycle state; expiry is never stored.
func (s *Subscription) State(now time.Time) SubscriptionState {
	switch {
	case s.Active && s.Expired(now):
		return StateExpired
	case s.Active:
		return StateActive
	case s.TransactionSignature != nil:
		return StateSuperseded
	default:
		return StateQuoted
	}
}
