package reconciledto

import "github.com/greenbasket/ledger-service/internal/domain"

// Pages report best-effort totals: the count is taken before the
// defensive mode filter runs, per the documented pagination limitation.

type TransactionPage struct {
	Items       []*domain.Transaction
	Total       int64
	Limit       int
	Offset      int
	TotalAmount int64
}

type PayoutPage struct {
	Items       []*domain.Payout
	Total       int64
	Limit       int
	Offset      int
	TotalAmount int64
}

type RefundPage struct {
	Items       []*domain.Refund
	Total       int64
	Limit       int
	Offset      int
	TotalAmount int64
}
