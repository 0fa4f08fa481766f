package models

import (
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
)

// OrderModel persists one checkout attempt. ProviderRef carries the
// provider session reference verbatim; the payment mode is always
// derived from it, never stored, so the two cannot drift apart.
type OrderModel struct {
	ID                   string `gorm:"primaryKey;type:uuid"`
	Number               string `gorm:"uniqueIndex"`
	BuyerID              string `gorm:"index"`
	TotalAmount          int64  `gorm:"not null"`
	Status               domain.OrderStatus `gorm:"index:idx_status_collected"`
	ProviderRef          *string            `gorm:"uniqueIndex:idx_provider_ref"`
	DeliveryMode         string
	PlatformFeeCollected bool      `gorm:"index:idx_status_collected"`
	CreatedAt            time.Time `gorm:"index:idx_created_at"`
	UpdatedAt            time.Time
	Items                []LineItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

type LineItemModel struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	OrderID    string `gorm:"type:uuid;not null;index"`
	ProductID  string
	SellerID   string `gorm:"index"`
	Name       string
	Quantity   int32
	UnitAmount int64
}

func (LineItemModel) TableName() string {
	return "line_items"
}
