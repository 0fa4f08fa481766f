package repository

import (
	"fmt"
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/mappers"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCollectionRepository struct {
	DB *gorm.DB
}

func NewDefaultCollectionRepository(db *gorm.DB) *DefaultCollectionRepository {
	return &DefaultCollectionRepository{DB: db}
}

func (r *DefaultCollectionRepository) CreateRun(run *domain.CollectionRun, evt *domain.OutboxEvent) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMCollectionRun(run)).Error; err != nil {
			return err
		}
		if evt != nil {
			if err := tx.Create(mappers.ToGORMOutboxEvent(evt)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DefaultCollectionRepository) ListRuns(limit, offset int) ([]*domain.CollectionRun, int64, error) {
	var runModels []models.CollectionRunModel
	var total int64

	if err := r.DB.Model(&models.CollectionRunModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count collection runs: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	err := r.DB.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find collection runs: %w", err)
	}

	runs := make([]*domain.CollectionRun, len(runModels))
	for i, model := range runModels {
		runs[i] = mappers.ToDomainCollectionRun(&model)
	}

	return runs, total, nil
}

func (r *DefaultCollectionRepository) Totals() (int64, int64, error) {
	type totalsRow struct {
		PlatformFees int64
		DeliveryCuts int64
	}
	var row totalsRow
	err := r.DB.Model(&models.CollectionRunModel{}).
		Select("COALESCE(SUM(platform_fees), 0) AS platform_fees, COALESCE(SUM(delivery_cuts), 0) AS delivery_cuts").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.PlatformFees, row.DeliveryCuts, nil
}

type DefaultOutboxRepository struct {
	DB *gorm.DB
}

func NewDefaultOutboxRepository(db *gorm.DB) *DefaultOutboxRepository {
	return &DefaultOutboxRepository{DB: db}
}

func (r *DefaultOutboxRepository) FetchUnpublished(limit int) ([]*domain.OutboxEvent, error) {
	var eventModels []models.OutboxEventModel
	if err := r.DB.
		Where("published = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}

	events := make([]*domain.OutboxEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = mappers.ToDomainOutboxEvent(&model)
	}

	return events, nil
}

func (r *DefaultOutboxRepository) MarkPublished(eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return r.DB.Model(&models.OutboxEventModel{}).
		Where("id IN (?)", eventIDs).
		Updates(map[string]interface{}{"published": true, "published_at": now}).Error
}
