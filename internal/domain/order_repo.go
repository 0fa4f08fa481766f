package domain

import "time"

type OrderRepository interface {
	// IngestOrder writes the order, its line items, per-seller
	// transactions, the optional delivery order and the outbox event in
	// one database transaction. The insert is keyed on the unique
	// provider reference: when an order with the same reference already
	// exists nothing is written and created is false.
	IngestOrder(order *Order, txs []*Transaction, delivery *DeliveryOrder, evt *OutboxEvent) (created bool, err error)

	GetOrderByID(orderID string) (*Order, error)
	GetOrderByProviderRef(providerRef string) (*Order, error)
	UpdateOrderStatus(orderID string, newStatus OrderStatus) error

	FindUncollectedPaid(cutoff time.Time) ([]*Order, error)
	// MarkPlatformFeeCollected flips the collected flag with a
	// conditional update and reports whether this call won the flip.
	MarkPlatformFeeCollected(orderID string) (bool, error)
}
