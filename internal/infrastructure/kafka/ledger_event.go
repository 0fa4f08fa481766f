package publisher

// LedgerEvent is the payload relayed from the outbox to downstream
// consumers (notifications, analytics). It never carries authoritative
// state: the ledger tables do.
type LedgerEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	OrderID    string `json:"order_id,omitempty"`
	BuyerID    string `json:"buyer_id,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	Mode       string `json:"mode,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

const (
	EventOrderCompleted = "order.completed"
	EventFeesCollected  = "fees.collected"
	EventPayoutRecorded = "payout.recorded"
	EventRefundRecorded = "refund.recorded"
)
