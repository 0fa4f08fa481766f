package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusSettled  TransactionStatus = "SETTLED"
	TransactionStatusRefunded TransactionStatus = "REFUNDED"
)

// Transaction is one settled payment leg of an Order. A multi-seller
// checkout produces one transaction per seller. OrderID is resolved once,
// at ingest, when both records are created together.
type Transaction struct {
	ID          string
	OrderID     string
	SellerID    string
	BuyerID     string
	ProviderRef string
	Mode        Mode // derived from ProviderRef, never persisted
	Amount      int64
	Status      TransactionStatus
	CreatedAt   time.Time
}

// Payout is a disbursement from the platform to a seller or courier
// against one Transaction. Sum of payouts never exceeds the transaction
// amount.
type Payout struct {
	ID            string
	TransactionID string
	RecipientID   string
	Amount        int64
	ProviderRef   string // provider ref of the source transaction
	CreatedAt     time.Time
}

// Refund is a reversal against one Transaction. Sum of refunds never
// exceeds the transaction amount minus payouts already made.
type Refund struct {
	ID            string
	TransactionID string
	ProviderRef   string // provider refund reference, may be empty
	// TransactionRef is the parent transaction's provider reference.
	// Mode checks always use this, never the refund's own reference,
	// so a refund recorded without one cannot dodge the filter.
	TransactionRef string
	Amount         int64
	CreatedAt      time.Time
}
