package domain

import "time"

// LedgerFilters narrows reconciliation queries. Zero values mean "no
// constraint". Limit/Offset paginate; repositories over-fetch so the
// read path can drop out-of-mode rows before assembling the page.
type LedgerFilters struct {
	SellerID string
	BuyerID  string
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
	Offset   int
}

type TransactionRepository interface {
	GetTransactionByID(txID string) (*Transaction, error)
	UpdateTransactionStatus(txID string, newStatus TransactionStatus) error
	ListTransactions(filters LedgerFilters) ([]*Transaction, int64, error)

	// CreatePayoutGuarded inserts the payout while holding a row lock on
	// its transaction, re-verifying that payouts stay within the
	// transaction amount. Violations return ErrPayoutExceedsTransaction
	// and write nothing.
	CreatePayoutGuarded(payout *Payout) error
	// CreateRefundGuarded inserts the refund under the same lock,
	// verifying refunds stay within amount minus payouts. Violations
	// return ErrRefundExceedsAvailable and write nothing.
	CreateRefundGuarded(refund *Refund) error

	SumPayouts(txID string) (int64, error)
	SumRefunds(txID string) (int64, error)
	ListPayouts(filters LedgerFilters) ([]*Payout, int64, error)
	ListRefunds(filters LedgerFilters) ([]*Refund, int64, error)
}

type DeliveryOrderRepository interface {
	GetByOrderID(orderID string) (*DeliveryOrder, error)
	UpdateDeliveryStatus(deliveryOrderID string, newStatus DeliveryStatus) error

	FindUncollectedDelivered(cutoff time.Time) ([]*DeliveryOrder, error)
	MarkDeliveryFeeCollected(deliveryOrderID string) (bool, error)
	// RevertDeliveryFeeCollected releases a claim after a failed
	// disbursement so the next run retries the row.
	RevertDeliveryFeeCollected(deliveryOrderID string) error
}

type CourierRepository interface {
	FirstActive() (*CourierProfile, error)
}

type CollectionRepository interface {
	CreateRun(run *CollectionRun, evt *OutboxEvent) error
	ListRuns(limit, offset int) ([]*CollectionRun, int64, error)
	Totals() (platformFees, deliveryCuts int64, err error)
}

type OutboxRepository interface {
	FetchUnpublished(limit int) ([]*OutboxEvent, error)
	MarkPublished(eventIDs []string) error
}
