package repository

import (
	"errors"
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/mappers"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultDeliveryOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultDeliveryOrderRepository(db *gorm.DB) *DefaultDeliveryOrderRepository {
	return &DefaultDeliveryOrderRepository{DB: db}
}

func (r *DefaultDeliveryOrderRepository) GetByOrderID(orderID string) (*domain.DeliveryOrder, error) {
	var model models.DeliveryOrderModel
	if err := r.DB.First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDeliveryOrder(&model), nil
}

func (r *DefaultDeliveryOrderRepository) UpdateDeliveryStatus(deliveryOrderID string, newStatus domain.DeliveryStatus) error {
	updates := map[string]interface{}{"status": newStatus}
	now := time.Now().UTC()
	switch newStatus {
	case domain.DeliveryStatusPickedUp:
		updates["picked_up_at"] = now
	case domain.DeliveryStatusDelivered:
		updates["delivered_at"] = now
	}

	res := r.DB.Model(&models.DeliveryOrderModel{}).
		Where("id = ?", deliveryOrderID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// deliveryRow carries the parent order's provider reference so the
// collection scan can run its mode check without a per-row lookup.
type deliveryRow struct {
	models.DeliveryOrderModel
	OrderProviderRef *string
}

func (r *DefaultDeliveryOrderRepository) FindUncollectedDelivered(cutoff time.Time) ([]*domain.DeliveryOrder, error) {
	var rows []deliveryRow
	if err := r.DB.Model(&models.DeliveryOrderModel{}).
		Joins("JOIN orders ON orders.id = delivery_orders.order_id").
		Where("delivery_orders.status = ?", domain.DeliveryStatusDelivered).
		Where("delivery_orders.fee_collected = ?", false).
		Where("delivery_orders.created_at <= ?", cutoff).
		Select("delivery_orders.*, orders.provider_ref AS order_provider_ref").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	deliveries := make([]*domain.DeliveryOrder, len(rows))
	for i, row := range rows {
		delivery := mappers.ToDomainDeliveryOrder(&row.DeliveryOrderModel)
		if row.OrderProviderRef != nil {
			delivery.ProviderRef = *row.OrderProviderRef
		}
		deliveries[i] = delivery
	}

	return deliveries, nil
}

func (r *DefaultDeliveryOrderRepository) MarkDeliveryFeeCollected(deliveryOrderID string) (bool, error) {
	res := r.DB.Model(&models.DeliveryOrderModel{}).
		Where("id = ? AND fee_collected = ?", deliveryOrderID, false).
		Update("fee_collected", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultDeliveryOrderRepository) RevertDeliveryFeeCollected(deliveryOrderID string) error {
	return r.DB.Model(&models.DeliveryOrderModel{}).
		Where("id = ?", deliveryOrderID).
		Update("fee_collected", false).Error
}

type DefaultCourierRepository struct {
	DB *gorm.DB
}

func NewDefaultCourierRepository(db *gorm.DB) *DefaultCourierRepository {
	return &DefaultCourierRepository{DB: db}
}

// FirstActive picks any courier currently marked active. Assignment is
// deliberately naive, no distance or load weighting.
func (r *DefaultCourierRepository) FirstActive() (*domain.CourierProfile, error) {
	var model models.CourierProfileModel
	if err := r.DB.First(&model, "active = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoActiveCourier
		}
		return nil, err
	}
	return mappers.ToDomainCourier(&model), nil
}
