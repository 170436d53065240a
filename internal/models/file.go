package models

import "time"

// File is the metadata row for a blob held by the content-addressed store.
// Paid is always true on upload; storage is gated by quota instead.
type File struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"accountId"`
	FileName  string    `json:"fileName"`
	CID       string    `json:"cid"`
	Size      int64     `json:"size,string"`
	MimeType  string    `json:"mimetype"`
	Paid      bool      `json:"paid"`
	Deleted   bool      `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}
