package domain

import "time"

// CollectionRun summarizes one pass of the periodic fee collection.
type CollectionRun struct {
	ID                  string
	PlatformFees        int64
	DeliveryCuts        int64
	ProcessedOrders     int64
	ProcessedDeliveries int64
	Cutoff              time.Time
	CreatedAt           time.Time
}

// OutboxEvent is a post-commit side effect recorded in the same database
// transaction as the financial write it announces. A relay worker
// publishes unsent rows; a publish failure can never roll back or block
// the ledger write.
type OutboxEvent struct {
	ID          string
	Topic       string
	Key         string
	Payload     []byte
	Published   bool
	CreatedAt   time.Time
	PublishedAt *time.Time
}
