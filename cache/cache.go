/*
Package cache holds derived, re-computable views keyed by string.

PURPOSE:
  The portfolio summary runs two full simulations per request. It only
  changes when one of the owner's debts changes, so it is cached per owner
  and per month, and dropped by the debt service's change hook.

BACKENDS:
  LRU:   In-process, TTL plus size-bounded eviction (default)
  Redis: Shared across instances, values JSON-encoded, TTL on the key

KEYS:
  SummaryKey(owner, now) = "debt-summary:<owner>:<YYYY-MM>". The month is
  part of the key because month labels in the summary move with the clock.
*/
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCorruptValue is returned by Get when a stored value cannot be decoded.
// Callers treat it like any other backend failure: log, recompute, Set.
var ErrCorruptValue = errors.New("cache: corrupt value")

// Cache is a typed key-value cache. A miss is (zero, false, nil); errors are
// reserved for backend failures and undecodable values.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
	Delete(ctx context.Context, key string) error
}

// SummaryKey is the cache key for an owner's summary in the month of now.
func SummaryKey(ownerID int64, now time.Time) string {
	return fmt.Sprintf("debt-summary:%d:%s", ownerID, now.UTC().Format("2006-01"))
}
