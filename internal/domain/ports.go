package domain

import (
	"context"
	"time"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(topic string, msgs ...Message) error
}

// PayoutDispatcher is the boundary to the external transfer API that
// actually moves money. Retries live behind this boundary, not in the
// ledger core.
type PayoutDispatcher interface {
	Transfer(ctx context.Context, recipientID string, amount int64, reference string) error
}

// Locker is an advisory distributed lock. The ledger stays correct if
// every acquisition spuriously succeeds; the lock only keeps overlapping
// collection runs from scanning the same rows.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
