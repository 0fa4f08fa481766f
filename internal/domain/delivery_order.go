package domain

import "time"

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusAccepted  DeliveryStatus = "ACCEPTED"
	DeliveryStatusPickedUp  DeliveryStatus = "PICKED_UP"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
)

// DeliveryOrder is the courier-fulfillment leg of an Order.
// FeeCollected mirrors Order.PlatformFeeCollected: it transitions
// false to true exactly once.
type DeliveryOrder struct {
	ID           string
	OrderID      string
	CourierID    string
	Fee          int64
	CourierCut   int64
	PlatformCut  int64
	Status       DeliveryStatus
	FeeCollected bool
	// ProviderRef is the parent order's provider reference, joined in
	// by read queries so money paths can check the payment mode without
	// a second lookup. Never stored on the delivery row itself.
	ProviderRef string
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CourierProfile is the minimal courier record ingest needs for
// assignment. Picking the first active profile is a stub, not a
// scheduler.
type CourierProfile struct {
	ID          string
	DisplayName string
	Active      bool
	CreatedAt   time.Time
}
