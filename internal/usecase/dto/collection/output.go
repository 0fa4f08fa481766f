package collectiondto

import (
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
)

type Summary struct {
	PlatformFeesCollected   int64     `json:"platform_fees_collected"`
	DeliveryCutsCollected   int64     `json:"delivery_cuts_collected"`
	ProcessedOrderCount     int64     `json:"processed_order_count"`
	ProcessedDeliveryCount  int64     `json:"processed_delivery_count"`
	Cutoff                  time.Time `json:"cutoff"`
}

type HistoryOutput struct {
	Runs              []*domain.CollectionRun `json:"runs"`
	Total             int64                   `json:"total"`
	PlatformFeesTotal int64                   `json:"platform_fees_total"`
	DeliveryCutsTotal int64                   `json:"delivery_cuts_total"`
}
