package repository

import (
	"errors"
	"fmt"

	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/mappers"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultTransactionRepository struct {
	DB *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{DB: db}
}

func (r *DefaultTransactionRepository) GetTransactionByID(txID string) (*domain.Transaction, error) {
	var model models.TransactionModel
	if err := r.DB.First(&model, "id = ?", txID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&model), nil
}

func (r *DefaultTransactionRepository) UpdateTransactionStatus(txID string, newStatus domain.TransactionStatus) error {
	res := r.DB.Model(&models.TransactionModel{}).
		Where("id = ?", txID).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *DefaultTransactionRepository) ListTransactions(filters domain.LedgerFilters) ([]*domain.Transaction, int64, error) {
	var txModels []models.TransactionModel
	var total int64

	baseQuery := r.DB.Model(&models.TransactionModel{})
	baseQuery = applyLedgerFilters(baseQuery, "transactions", "seller_id", "buyer_id", filters)

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	// Over-fetch twice the page so the read path can drop out-of-mode
	// rows and still fill the page most of the time.
	err := baseQuery.
		Order("transactions.created_at DESC").
		Offset(filters.Offset).
		Limit(overfetch(filters.Limit)).
		Find(&txModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}

	txs := make([]*domain.Transaction, len(txModels))
	for i, model := range txModels {
		txs[i] = mappers.ToDomainTransaction(&model)
	}

	return txs, total, nil
}

// CreatePayoutGuarded locks the source transaction row, re-checks the
// payout sum invariant and inserts, all in one database transaction. The
// lock serializes concurrent payouts against the same transaction.
func (r *DefaultTransactionRepository) CreatePayoutGuarded(payout *domain.Payout) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var txModel models.TransactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&txModel, "id = ?", payout.TransactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}

		paidOut, err := sumAmount(tx, &models.PayoutModel{}, payout.TransactionID)
		if err != nil {
			return err
		}

		if paidOut+payout.Amount > txModel.Amount {
			return domain.ErrPayoutExceedsTransaction
		}

		return tx.Create(mappers.ToGORMPayout(payout)).Error
	})
}

// CreateRefundGuarded mirrors CreatePayoutGuarded for refunds: the sum
// of refunds must stay within the transaction amount minus payouts
// already made.
func (r *DefaultTransactionRepository) CreateRefundGuarded(refund *domain.Refund) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var txModel models.TransactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&txModel, "id = ?", refund.TransactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}

		paidOut, err := sumAmount(tx, &models.PayoutModel{}, refund.TransactionID)
		if err != nil {
			return err
		}
		refunded, err := sumAmount(tx, &models.RefundModel{}, refund.TransactionID)
		if err != nil {
			return err
		}

		if refunded+refund.Amount > txModel.Amount-paidOut {
			return domain.ErrRefundExceedsAvailable
		}

		return tx.Create(mappers.ToGORMRefund(refund)).Error
	})
}

func (r *DefaultTransactionRepository) SumPayouts(txID string) (int64, error) {
	return sumAmount(r.DB, &models.PayoutModel{}, txID)
}

func (r *DefaultTransactionRepository) SumRefunds(txID string) (int64, error) {
	return sumAmount(r.DB, &models.RefundModel{}, txID)
}

// payoutRow carries the joined provider reference so the read path can
// run its mode check without a second query per payout.
type payoutRow struct {
	models.PayoutModel
	ProviderRef string
}

func (r *DefaultTransactionRepository) ListPayouts(filters domain.LedgerFilters) ([]*domain.Payout, int64, error) {
	var rows []payoutRow
	var total int64

	baseQuery := r.DB.Model(&models.PayoutModel{}).
		Joins("JOIN transactions ON transactions.id = payouts.transaction_id")
	baseQuery = applyLedgerFilters(baseQuery, "payouts", "recipient_id", "", filters)
	if filters.BuyerID != "" {
		baseQuery = baseQuery.Where("transactions.buyer_id = ?", filters.BuyerID)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	err := baseQuery.
		Select("payouts.*, transactions.provider_ref AS provider_ref").
		Order("payouts.created_at DESC").
		Offset(filters.Offset).
		Limit(overfetch(filters.Limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find payouts: %w", err)
	}

	payouts := make([]*domain.Payout, len(rows))
	for i, row := range rows {
		payouts[i] = &domain.Payout{
			ID:            row.ID,
			TransactionID: row.TransactionID,
			RecipientID:   row.RecipientID,
			Amount:        row.Amount,
			ProviderRef:   row.ProviderRef,
			CreatedAt:     row.CreatedAt,
		}
	}

	return payouts, total, nil
}

// refundRow joins in the parent transaction's provider reference, same
// shape as payoutRow, so mode checks never rely on the refund's own
// reference (which may be empty).
type refundRow struct {
	models.RefundModel
	TransactionRef string
}

func (r *DefaultTransactionRepository) ListRefunds(filters domain.LedgerFilters) ([]*domain.Refund, int64, error) {
	var rows []refundRow
	var total int64

	baseQuery := r.DB.Model(&models.RefundModel{}).
		Joins("JOIN transactions ON transactions.id = refunds.transaction_id")
	if filters.SellerID != "" {
		baseQuery = baseQuery.Where("transactions.seller_id = ?", filters.SellerID)
	}
	if filters.BuyerID != "" {
		baseQuery = baseQuery.Where("transactions.buyer_id = ?", filters.BuyerID)
	}
	if !filters.DateFrom.IsZero() {
		baseQuery = baseQuery.Where("refunds.created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		baseQuery = baseQuery.Where("refunds.created_at <= ?", filters.DateTo)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count refunds: %w", err)
	}

	err := baseQuery.
		Select("refunds.*, transactions.provider_ref AS transaction_ref").
		Order("refunds.created_at DESC").
		Offset(filters.Offset).
		Limit(overfetch(filters.Limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find refunds: %w", err)
	}

	refunds := make([]*domain.Refund, len(rows))
	for i, row := range rows {
		refund := mappers.ToDomainRefund(&row.RefundModel)
		refund.TransactionRef = row.TransactionRef
		refunds[i] = refund
	}

	return refunds, total, nil
}

func applyLedgerFilters(q *gorm.DB, table, sellerCol, buyerCol string, filters domain.LedgerFilters) *gorm.DB {
	if filters.SellerID != "" && sellerCol != "" {
		q = q.Where(fmt.Sprintf("%s.%s = ?", table, sellerCol), filters.SellerID)
	}
	if filters.BuyerID != "" && buyerCol != "" {
		q = q.Where(fmt.Sprintf("%s.%s = ?", table, buyerCol), filters.BuyerID)
	}
	if !filters.DateFrom.IsZero() {
		q = q.Where(fmt.Sprintf("%s.created_at >= ?", table), filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		q = q.Where(fmt.Sprintf("%s.created_at <= ?", table), filters.DateTo)
	}
	return q
}

func sumAmount(db *gorm.DB, model interface{}, txID string) (int64, error) {
	var sum int64
	err := db.Model(model).
		Where("transaction_id = ?", txID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

func overfetch(limit int) int {
	if limit <= 0 {
		limit = 20
	}
	return limit * 2
}
