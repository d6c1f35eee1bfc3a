// Package storage is the persisted side channel for cart state. The
// in-memory cart remains authoritative for the session; everything here is
// best effort and callers are expected to swallow write failures.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("cart blob not found")

type Storage interface {
	Load(c context.Context, key string) ([]byte, error)
	Save(c context.Context, key string, blob []byte) error
	Delete(c context.Context, key string) error
}

func CartKey(prefix string, sessionID string) string {
	if prefix == "" {
		prefix = "carts"
	}
	return fmt.Sprintf("%s:%s", prefix, sessionID)
}
