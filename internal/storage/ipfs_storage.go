package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
)

// IPFSStorage stores blobs on an IPFS node through its HTTP API. Added
// content is pinned by the node.
type IPFSStorage struct {
	sh *shell.Shell
}

func NewIPFSStorage(apiURL string) *IPFSStorage {
	sh := shell.NewShell(apiURL)
	sh.SetTimeout(2 * time.Minute)
	return &IPFSStorage{sh: sh}
}

func (s *IPFSStorage) Put(_ context.Context, data io.Reader) (string, int64, error) {
	cr := &countingReader{r: data}
	cid, err := s.sh.Add(cr, shell.Pin(true))
	if err != nil {
		return "", 0, fmt.Errorf("ipfs add: %w", err)
	}
	return cid, cr.n, nil
}

func (s *IPFSStorage) Get(_ context.Context, cid string) (io.ReadCloser, error) {
	if cid == "" || strings.ContainsAny(cid, "/\\ ") {
		return nil, ErrInvalidCID
	}
	rc, err := s.sh.Cat(cid)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("blob %s: %w", cid, ErrBlobNotFound)
		}
		return nil, fmt.Errorf("ipfs cat: %w", err)
	}
	return rc, nil
}

func (s *IPFSStorage) Ping(context.Context) error {
	if !s.sh.IsUp() {
		return fmt.Errorf("ipfs node is not reachable")
	}
	return nil
}
