package models

import "time"

// Account is a wallet owner, keyed by its base58 public key.
type Account struct {
	ID        int64     `json:"id" db:"id"`
	PubKey    string    `json:"pubKey" db:"pub_key"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
