package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/mappers"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

// IngestOrder performs the idempotent checkout write. The order insert
// uses insert-or-ignore keyed on the unique provider reference; when the
// insert is skipped the whole transaction rolls back untouched, so a
// provider retry can never produce partial state.
func (r *DefaultOrderRepository) IngestOrder(
	order *domain.Order,
	txs []*domain.Transaction,
	delivery *domain.DeliveryOrder,
	evt *domain.OutboxEvent,
) (bool, error) {
	created := false

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		orderModel := mappers.ToGORMOrder(order)
		itemModels := orderModel.Items
		orderModel.Items = nil

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_ref"}},
			DoNothing: true,
		}).Create(orderModel)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// duplicate delivery of the same provider event
			return nil
		}
		created = true

		if len(itemModels) > 0 {
			if err := tx.Create(&itemModels).Error; err != nil {
				return err
			}
		}

		for _, t := range txs {
			if err := tx.Create(mappers.ToGORMTransaction(t)).Error; err != nil {
				return err
			}
		}

		if delivery != nil {
			if err := tx.Create(mappers.ToGORMDeliveryOrder(delivery)).Error; err != nil {
				return err
			}
		}

		if evt != nil {
			if err := tx.Create(mappers.ToGORMOutboxEvent(evt)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to ingest order: %w", err)
	}

	return created, nil
}

func (r *DefaultOrderRepository) GetOrderByID(orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByProviderRef(providerRef string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.Preload("Items").First(&order, "provider_ref = ?", providerRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) error {
	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *DefaultOrderRepository) FindUncollectedPaid(cutoff time.Time) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.
		Where("status = ?", domain.OrderStatusPaid).
		Where("platform_fee_collected = ?", false).
		Where("created_at <= ?", cutoff).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}

// MarkPlatformFeeCollected is the per-row claim of the collection scan.
// The WHERE on the flag makes the flip atomic: with two overlapping runs
// exactly one caller sees RowsAffected == 1.
func (r *DefaultOrderRepository) MarkPlatformFeeCollected(orderID string) (bool, error) {
	res := r.DB.Model(&models.OrderModel{}).
		Where("id = ? AND platform_fee_collected = ?", orderID, false).
		Update("platform_fee_collected", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
