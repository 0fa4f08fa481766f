package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/fees"
	publisher "github.com/greenbasket/ledger-service/internal/infrastructure/kafka"
	"github.com/greenbasket/ledger-service/internal/infrastructure/metrics"
	collectiondto "github.com/greenbasket/ledger-service/internal/usecase/dto/collection"
	"go.uber.org/zap"
)

const collectionLockKey = "fee-collection"

type CollectionUsecase interface {
	CollectFees(ctx context.Context, cutoff time.Time) (*collectiondto.Summary, error)
	RecordPayout(ctx context.Context, transactionID, recipientID string, amount int64) (*domain.Payout, error)
	RecordRefund(ctx context.Context, transactionID string, amount int64, providerRef string) (*domain.Refund, error)
	CollectionHistory(ctx context.Context, limit, offset int) (*collectiondto.HistoryOutput, error)
}

type DefaultCollectionUsecase struct {
	OrderRepo      domain.OrderRepository
	DeliveryRepo   domain.DeliveryOrderRepository
	TxRepo         domain.TransactionRepository
	CollectionRepo domain.CollectionRepository
	Locker         domain.Locker
	Dispatcher     domain.PayoutDispatcher
	Mode           domain.Mode
	Topic          string
	logger         *zap.Logger
}

func NewDefaultCollectionUsecase(
	orderRepo domain.OrderRepository,
	deliveryRepo domain.DeliveryOrderRepository,
	txRepo domain.TransactionRepository,
	collectionRepo domain.CollectionRepository,
	locker domain.Locker,
	dispatcher domain.PayoutDispatcher,
	mode domain.Mode,
	topic string,
	logger *zap.Logger,
) *DefaultCollectionUsecase {
	return &DefaultCollectionUsecase{
		OrderRepo:      orderRepo,
		DeliveryRepo:   deliveryRepo,
		TxRepo:         txRepo,
		CollectionRepo: collectionRepo,
		Locker:         locker,
		Dispatcher:     dispatcher,
		Mode:           mode,
		Topic:          topic,
		logger:         logger,
	}
}

// CollectFees scans eligible orders and delivery orders and claims each
// one with a conditional flag flip. Overlapping runs are safe: a row is
// collected by whichever run wins its flip, and only that run counts it.
// The redis lock on top is advisory, it just keeps a second cron tick
// from scanning rows the first is already working through.
func (uc *DefaultCollectionUsecase) CollectFees(ctx context.Context, cutoff time.Time) (*collectiondto.Summary, error) {
	if uc.Locker != nil {
		acquired, err := uc.Locker.Acquire(ctx, collectionLockKey, time.Minute)
		if err != nil {
			uc.logger.Warn("collection lock unavailable, relying on row claims", zap.Error(err))
		} else if !acquired {
			return nil, domain.ErrCollectionRunning
		} else {
			defer func() {
				if err := uc.Locker.Release(context.Background(), collectionLockKey); err != nil {
					uc.logger.Warn("failed to release collection lock", zap.Error(err))
				}
			}()
		}
	}

	if cutoff.IsZero() {
		cutoff = time.Now().UTC()
	}

	summary := &collectiondto.Summary{Cutoff: cutoff}

	orders, err := uc.OrderRepo.FindUncollectedPaid(cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to scan uncollected orders: %w", err)
	}

	for _, order := range orders {
		if order.ProviderRef != "" && !domain.MatchesMode(order.ProviderRef, uc.Mode) {
			// the other environment's money never enters the totals
			continue
		}

		platformFee, _, err := fees.ComputePlatformFee(order.TotalAmount)
		if err != nil {
			uc.logger.Error("uncollectable order total",
				zap.String("order_id", order.ID), zap.Error(err))
			continue
		}

		claimed, err := uc.OrderRepo.MarkPlatformFeeCollected(order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to claim order %s: %w", order.ID, err)
		}
		if !claimed {
			// a concurrent run won this row
			continue
		}

		summary.PlatformFeesCollected += platformFee
		summary.ProcessedOrderCount++
	}

	deliveries, err := uc.DeliveryRepo.FindUncollectedDelivered(cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to scan uncollected deliveries: %w", err)
	}

	for _, delivery := range deliveries {
		if delivery.ProviderRef != "" && !domain.MatchesMode(delivery.ProviderRef, uc.Mode) {
			// the parent order is the other environment's money; its
			// courier must be paid by that environment's process
			continue
		}

		claimed, err := uc.DeliveryRepo.MarkDeliveryFeeCollected(delivery.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to claim delivery %s: %w", delivery.ID, err)
		}
		if !claimed {
			continue
		}

		if delivery.CourierID != "" {
			reference := fmt.Sprintf("delivery:%s", delivery.ID)
			if err := uc.Dispatcher.Transfer(ctx, delivery.CourierID, delivery.CourierCut, reference); err != nil {
				// release the claim so the next run retries the row
				metrics.DispatchFailuresTotal.Inc()
				uc.logger.Error("courier disbursement failed, releasing claim",
					zap.String("delivery_order_id", delivery.ID), zap.Error(err))
				if revertErr := uc.DeliveryRepo.RevertDeliveryFeeCollected(delivery.ID); revertErr != nil {
					uc.logger.Error("failed to release delivery claim",
						zap.String("delivery_order_id", delivery.ID), zap.Error(revertErr))
				}
				continue
			}
		}

		summary.DeliveryCutsCollected += delivery.PlatformCut
		summary.ProcessedDeliveryCount++
	}

	run := &domain.CollectionRun{
		ID:                  uuid.New().String(),
		PlatformFees:        summary.PlatformFeesCollected,
		DeliveryCuts:        summary.DeliveryCutsCollected,
		ProcessedOrders:     summary.ProcessedOrderCount,
		ProcessedDeliveries: summary.ProcessedDeliveryCount,
		Cutoff:              cutoff,
		CreatedAt:           time.Now().UTC(),
	}

	evt, err := uc.collectionOutboxEvent(run)
	if err != nil {
		return nil, err
	}
	if err := uc.CollectionRepo.CreateRun(run, evt); err != nil {
		return nil, fmt.Errorf("failed to append collection run: %w", err)
	}

	metrics.CollectionRunsTotal.Inc()
	metrics.PlatformFeesCollectedTotal.Add(float64(summary.PlatformFeesCollected))
	metrics.DeliveryCutsCollectedTotal.Add(float64(summary.DeliveryCutsCollected))

	uc.logger.Info("fee collection run completed",
		zap.Int64("platform_fees", summary.PlatformFeesCollected),
		zap.Int64("delivery_cuts", summary.DeliveryCutsCollected),
		zap.Int64("orders", summary.ProcessedOrderCount),
		zap.Int64("deliveries", summary.ProcessedDeliveryCount))

	return summary, nil
}

// RecordPayout disburses money to a recipient and records the payout
// leg. The guarded insert re-verifies the sum invariant under a row
// lock; a violation is a hard error, never a silent clamp.
func (uc *DefaultCollectionUsecase) RecordPayout(ctx context.Context, transactionID, recipientID string, amount int64) (*domain.Payout, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := uc.TxRepo.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if !domain.MatchesMode(tx.ProviderRef, uc.Mode) {
		// out-of-mode records are "not found" in this context
		return nil, domain.ErrTransactionNotFound
	}

	paidOut, err := uc.TxRepo.SumPayouts(transactionID)
	if err != nil {
		return nil, err
	}
	if paidOut+amount > tx.Amount {
		metrics.InvariantViolationsTotal.WithLabelValues("payout").Inc()
		return nil, domain.ErrPayoutExceedsTransaction
	}

	reference := fmt.Sprintf("payout:%s", transactionID)
	if err := uc.Dispatcher.Transfer(ctx, recipientID, amount, reference); err != nil {
		metrics.DispatchFailuresTotal.Inc()
		return nil, fmt.Errorf("disbursement failed: %w", err)
	}

	payout := &domain.Payout{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		RecipientID:   recipientID,
		Amount:        amount,
		ProviderRef:   tx.ProviderRef,
		CreatedAt:     time.Now().UTC(),
	}

	if err := uc.TxRepo.CreatePayoutGuarded(payout); err != nil {
		if errors.Is(err, domain.ErrPayoutExceedsTransaction) {
			// the transfer already went out; this needs an operator
			metrics.InvariantViolationsTotal.WithLabelValues("payout").Inc()
			uc.logger.Error("disbursed transfer rejected by ledger guard",
				zap.String("transaction_id", transactionID),
				zap.String("recipient_id", recipientID),
				zap.Int64("amount", amount))
		}
		return nil, err
	}

	return payout, nil
}

// RecordRefund records a reversal against a transaction. Refunds may
// never dip into money already paid out; there is no clawback here.
func (uc *DefaultCollectionUsecase) RecordRefund(ctx context.Context, transactionID string, amount int64, providerRef string) (*domain.Refund, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := uc.TxRepo.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}
	if !domain.MatchesMode(tx.ProviderRef, uc.Mode) {
		return nil, domain.ErrTransactionNotFound
	}
	if providerRef != "" && domain.ClassifyMode(providerRef) != tx.Mode {
		return nil, domain.ErrModeMismatch
	}

	refund := &domain.Refund{
		ID:             uuid.New().String(),
		TransactionID:  transactionID,
		ProviderRef:    providerRef,
		TransactionRef: tx.ProviderRef,
		Amount:         amount,
		CreatedAt:      time.Now().UTC(),
	}

	if err := uc.TxRepo.CreateRefundGuarded(refund); err != nil {
		if errors.Is(err, domain.ErrRefundExceedsAvailable) {
			metrics.InvariantViolationsTotal.WithLabelValues("refund").Inc()
		}
		return nil, err
	}

	refunded, err := uc.TxRepo.SumRefunds(transactionID)
	if err == nil && refunded == tx.Amount {
		if err := uc.TxRepo.UpdateTransactionStatus(transactionID, domain.TransactionStatusRefunded); err != nil {
			uc.logger.Warn("failed to mark transaction refunded",
				zap.String("transaction_id", transactionID), zap.Error(err))
		}
	}

	return refund, nil
}

func (uc *DefaultCollectionUsecase) CollectionHistory(ctx context.Context, limit, offset int) (*collectiondto.HistoryOutput, error) {
	runs, total, err := uc.CollectionRepo.ListRuns(limit, offset)
	if err != nil {
		return nil, err
	}

	platformFees, deliveryCuts, err := uc.CollectionRepo.Totals()
	if err != nil {
		return nil, err
	}

	return &collectiondto.HistoryOutput{
		Runs:              runs,
		Total:             total,
		PlatformFeesTotal: platformFees,
		DeliveryCutsTotal: deliveryCuts,
	}, nil
}

func (uc *DefaultCollectionUsecase) collectionOutboxEvent(run *domain.CollectionRun) (*domain.OutboxEvent, error) {
	payload, err := json.Marshal(publisher.LedgerEvent{
		EventID:    uuid.New().String(),
		Type:       publisher.EventFeesCollected,
		Amount:     run.PlatformFees + run.DeliveryCuts,
		Mode:       string(uc.Mode),
		OccurredAt: run.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	return &domain.OutboxEvent{
		ID:        uuid.New().String(),
		Topic:     uc.Topic,
		Key:       run.ID,
		Payload:   payload,
		CreatedAt: run.CreatedAt,
	}, nil
}
