package models

import (
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
)

type DeliveryOrderModel struct {
	ID           string                `gorm:"primaryKey;type:uuid"`
	OrderID      string                `gorm:"type:uuid;not null;uniqueIndex"`
	CourierID    string                `gorm:"index"`
	Fee          int64                 `gorm:"not null"`
	CourierCut   int64                 `gorm:"not null"`
	PlatformCut  int64                 `gorm:"not null"`
	Status       domain.DeliveryStatus `gorm:"index:idx_delivery_collectable"`
	FeeCollected bool                  `gorm:"index:idx_delivery_collectable"`
	PickedUpAt   *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DeliveryOrderModel) TableName() string {
	return "delivery_orders"
}

type CourierProfileModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	DisplayName string
	Active      bool `gorm:"index"`
	CreatedAt   time.Time
}

func (CourierProfileModel) TableName() string {
	return "courier_profiles"
}
