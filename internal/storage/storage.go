package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidCID   = errors.New("invalid content id")
)

// BlobStore is a content-addressed store: Put returns the id derived from the
// bytes written.
type BlobStore interface {
	Put(ctx context.Context, data io.Reader) (cid string, size int64, err error)
	Get(ctx context.Context, cid string) (io.ReadCloser, error)
	Ping(ctx context.Context) error
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
