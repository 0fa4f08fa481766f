package background

import (
	"context"
	"errors"
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/metrics"
	"github.com/greenbasket/ledger-service/internal/usecase"
	"go.uber.org/zap"
)

const outboxBatchSize = 100

type BackgroundTasks struct {
	CollectionUsecase  usecase.CollectionUsecase
	OutboxRepo         domain.OutboxRepository
	Publisher          domain.PublisherPort
	CollectionInterval time.Duration
	CollectionEnabled  bool
	logger             *zap.Logger
}

func NewBackgroundTasks(
	collectionUC usecase.CollectionUsecase,
	outboxRepo domain.OutboxRepository,
	pub domain.PublisherPort,
	collectionInterval time.Duration,
	collectionEnabled bool,
	logger *zap.Logger,
) *BackgroundTasks {
	return &BackgroundTasks{
		CollectionUsecase:  collectionUC,
		OutboxRepo:         outboxRepo,
		Publisher:          pub,
		CollectionInterval: collectionInterval,
		CollectionEnabled:  collectionEnabled,
		logger:             logger,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.CollectionEnabled {
		go bt.startFeeCollection(ctx)
	}
	go bt.startOutboxRelay(ctx)
}

func (bt *BackgroundTasks) startFeeCollection(ctx context.Context) {
	ticker := time.NewTicker(bt.CollectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := bt.CollectionUsecase.CollectFees(ctx, time.Time{})
			if err != nil && !errors.Is(err, domain.ErrCollectionRunning) {
				bt.logger.Error("scheduled fee collection failed", zap.Error(err))
			}
		}
	}
}

// startOutboxRelay drains outbox rows to the broker. Events are marked
// published only after the broker confirms the write, so a crash here
// means a redelivery, never a lost event.
func (bt *BackgroundTasks) startOutboxRelay(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.relayOutboxBatch(); err != nil {
				bt.logger.Error("outbox relay failed", zap.Error(err))
			}
		}
	}
}

func (bt *BackgroundTasks) relayOutboxBatch() error {
	events, err := bt.OutboxRepo.FetchUnpublished(outboxBatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]string, 0, len(events))
	for _, evt := range events {
		msg := domain.Message{Key: []byte(evt.Key), Value: evt.Payload}
		if err := bt.Publisher.Publish(evt.Topic, msg); err != nil {
			// stop the batch; the rest stays queued in order
			bt.logger.Warn("broker publish failed, keeping event queued",
				zap.String("event_id", evt.ID), zap.Error(err))
			break
		}
		published = append(published, evt.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := bt.OutboxRepo.MarkPublished(published); err != nil {
		return err
	}
	metrics.OutboxPublishedTotal.Add(float64(len(published)))
	return nil
}
