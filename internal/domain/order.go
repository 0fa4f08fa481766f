package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

type DeliveryMode string

const (
	DeliveryModePickup   DeliveryMode = "PICKUP"
	DeliveryModeDelivery DeliveryMode = "DELIVERY"
)

// Order is one buyer checkout attempt, the root of the ledger.
// Orders are append-only financial records: corrections are modeled as
// new Refund/Payout rows, never as mutation of historical amounts.
type Order struct {
	ID                   string
	Number               string
	BuyerID              string
	TotalAmount          int64 // minor currency units
	Status               OrderStatus
	ProviderRef          string // provider session reference, "" when absent
	Mode                 Mode   // derived from ProviderRef, never persisted
	DeliveryMode         DeliveryMode
	PlatformFeeCollected bool
	Items                []LineItem
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type LineItem struct {
	ID         string
	OrderID    string
	ProductID  string
	SellerID   string
	Name       string
	Quantity   int32
	UnitAmount int64
}
