package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/cache"
	reconciledto "github.com/greenbasket/ledger-service/internal/usecase/dto/reconcile"
	"go.uber.org/zap"
)

const defaultPageLimit = 20

type ReconciliationUsecase interface {
	ListTransactions(ctx context.Context, filters domain.LedgerFilters) (*reconciledto.TransactionPage, error)
	ListPayouts(ctx context.Context, filters domain.LedgerFilters) (*reconciledto.PayoutPage, error)
	ListRefunds(ctx context.Context, filters domain.LedgerFilters) (*reconciledto.RefundPage, error)
}

// DefaultReconciliationUsecase serves the financial read views. Every
// page is assembled in two passes: fetch candidates (over-fetched 2x by
// the repository), then drop rows whose provider reference classifies
// into the other payment mode. The typed OrderID join makes this filter
// defensive rather than load-bearing, but test money must never leak
// into a live dashboard even if a row was written wrong.
type DefaultReconciliationUsecase struct {
	TxRepo domain.TransactionRepository
	Cache  *cache.TTLCache
	Mode   domain.Mode
	logger *zap.Logger
}

func NewDefaultReconciliationUsecase(
	txRepo domain.TransactionRepository,
	readCache *cache.TTLCache,
	mode domain.Mode,
	logger *zap.Logger,
) *DefaultReconciliationUsecase {
	return &DefaultReconciliationUsecase{
		TxRepo: txRepo,
		Cache:  readCache,
		Mode:   mode,
		logger: logger,
	}
}

func (uc *DefaultReconciliationUsecase) ListTransactions(ctx context.Context, filters domain.LedgerFilters) (*reconciledto.TransactionPage, error) {
	filters = normalize(filters)
	key := cacheKey("tx", uc.Mode, filters)
	if uc.Cache != nil {
		if cached, ok := uc.Cache.Get(key); ok {
			if page, ok := cached.(*reconciledto.TransactionPage); ok {
				return page, nil
			}
		}
	}

	candidates, total, err := uc.TxRepo.ListTransactions(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	items := make([]*domain.Transaction, 0, filters.Limit)
	var totalAmount int64
	for _, tx := range candidates {
		if !domain.MatchesMode(tx.ProviderRef, uc.Mode) {
			continue
		}
		if len(items) == filters.Limit {
			break
		}
		items = append(items, tx)
		totalAmount += tx.Amount
	}

	page := &reconciledto.TransactionPage{
		Items:       items,
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
		TotalAmount: totalAmount,
	}
	if uc.Cache != nil {
		uc.Cache.Set(key, page)
	}
	return page, nil
}

func (uc *DefaultReconciliationUsecase) ListPayouts(ctx context.Context, filters domain.LedgerFilters) (*reconciledto.PayoutPage, error) {
	filters = normalize(filters)
	key := cacheKey("payout", uc.Mode, filters)
	if uc.Cache != nil {
		if cached, ok := uc.Cache.Get(key); ok {
			if page, ok := cached.(*reconciledto.PayoutPage); ok {
				return page, nil
			}
		}
	}

	candidates, total, err := uc.TxRepo.ListPayouts(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	items := make([]*domain.Payout, 0, filters.Limit)
	var totalAmount int64
	for _, payout := range candidates {
		if !domain.MatchesMode(payout.ProviderRef, uc.Mode) {
			continue
		}
		if len(items) == filters.Limit {
			break
		}
		items = append(items, payout)
		totalAmount += payout.Amount
	}

	page := &reconciledto.PayoutPage{
		Items:       items,
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
		TotalAmount: totalAmount,
	}
	if uc.Cache != nil {
		uc.Cache.Set(key, page)
	}
	return page, nil
}

func (uc *DefaultReconciliationUsecase) ListRefunds(ctx context.Context, filters domain.LedgerFilters) (*reconciledto.RefundPage, error) {
	filters = normalize(filters)
	key := cacheKey("refund", uc.Mode, filters)
	if uc.Cache != nil {
		if cached, ok := uc.Cache.Get(key); ok {
			if page, ok := cached.(*reconciledto.RefundPage); ok {
				return page, nil
			}
		}
	}

	candidates, total, err := uc.TxRepo.ListRefunds(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list refunds: %w", err)
	}

	items := make([]*domain.Refund, 0, filters.Limit)
	var totalAmount int64
	for _, refund := range candidates {
		// the refund's own reference may be empty, so the mode check
		// runs against the parent transaction's reference instead
		if !domain.MatchesMode(refund.TransactionRef, uc.Mode) {
			continue
		}
		if len(items) == filters.Limit {
			break
		}
		items = append(items, refund)
		totalAmount += refund.Amount
	}

	page := &reconciledto.RefundPage{
		Items:       items,
		Total:       total,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
		TotalAmount: totalAmount,
	}
	if uc.Cache != nil {
		uc.Cache.Set(key, page)
	}
	return page, nil
}

func normalize(filters domain.LedgerFilters) domain.LedgerFilters {
	if filters.Limit <= 0 {
		filters.Limit = defaultPageLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return filters
}

func cacheKey(kind string, mode domain.Mode, f domain.LedgerFilters) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%d|%d",
		kind, mode, f.SellerID, f.BuyerID,
		f.DateFrom.Format(time.RFC3339), f.DateTo.Format(time.RFC3339),
		f.Limit, f.Offset)
}
