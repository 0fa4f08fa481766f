package domain

import "errors"

var (
	ErrMalformedPayload         = errors.New("malformed event payload")
	ErrMissingMetadata          = errors.New("required event metadata is missing")
	ErrOrderNotFound            = errors.New("order not found")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrPayoutExceedsTransaction = errors.New("payout sum would exceed transaction amount")
	ErrRefundExceedsAvailable   = errors.New("refund sum would exceed refundable amount")
	ErrModeMismatch             = errors.New("provider reference belongs to the other payment mode")
	ErrCollectionRunning        = errors.New("fee collection run already in progress")
	ErrNoActiveCourier          = errors.New("no active courier available")
	ErrInvalidAmount            = errors.New("amount must be positive")
)
