package models

import "time"

type CollectionRunModel struct {
	ID                  string `gorm:"primaryKey;type:uuid"`
	PlatformFees        int64  `gorm:"not null"`
	DeliveryCuts        int64  `gorm:"not null"`
	ProcessedOrders     int64
	ProcessedDeliveries int64
	Cutoff              time.Time
	CreatedAt           time.Time `gorm:"index"`
}

func (CollectionRunModel) TableName() string {
	return "collection_runs"
}

// OutboxEventModel rows are written inside the same transaction as the
// financial write they announce and relayed to Kafka by a worker.
type OutboxEventModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Topic       string `gorm:"not null"`
	Key         string
	Payload     []byte    `gorm:"type:jsonb"`
	Published   bool      `gorm:"index"`
	CreatedAt   time.Time `gorm:"index"`
	PublishedAt *time.Time
}

func (OutboxEventModel) TableName() string {
	return "outbox_events"
}
