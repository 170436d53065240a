package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps blobs on disk under their sha256 digest.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func validCID(cid string) bool {
	if len(cid) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(cid)
	return err == nil
}

func (ls *LocalStorage) getPathFromCID(cid string) string {
	return filepath.Join(ls.basePath, cid[:2], cid[2:4], cid)
}

func (ls *LocalStorage) Put(ctx context.Context, data io.Reader) (string, int64, error) {
	tmp, err := os.CreateTemp(ls.basePath, "upload-*")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, hasher), data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, err
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	cid := hex.EncodeToString(hasher.Sum(nil))
	filePath := ls.getPathFromCID(cid)
	if _, err := os.Stat(filePath); err == nil {
		return cid, n, nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return "", 0, err
	}
	return cid, n, nil
}

func (ls *LocalStorage) Get(_ context.Context, cid string) (io.ReadCloser, error) {
	if !validCID(cid) {
		return nil, ErrInvalidCID
	}

	file, err := os.Open(ls.getPathFromCID(cid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", cid, ErrBlobNotFound)
		}
		return nil, err
	}
	return file, nil
}

func (ls *LocalStorage) Delete(cid string) error {
	if !validCID(cid) {
		return ErrInvalidCID
	}
	err := os.Remove(ls.getPathFromCID(cid))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (ls *LocalStorage) Ping(context.Context) error {
	_, err := os.Stat(ls.basePath)
	return err
}
