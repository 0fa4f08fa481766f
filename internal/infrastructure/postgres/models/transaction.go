package models

import (
	"time"

	"github.com/greenbasket/ledger-service/internal/domain"
)

type TransactionModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	OrderID     string `gorm:"type:uuid;not null;index"`
	SellerID    string `gorm:"index"`
	BuyerID     string `gorm:"index"`
	ProviderRef string `gorm:"index"`
	Amount      int64  `gorm:"not null;check:amount >= 0"`
	Status      domain.TransactionStatus
	CreatedAt   time.Time `gorm:"index"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

type PayoutModel struct {
	ID            string    `gorm:"primaryKey;type:uuid"`
	TransactionID string    `gorm:"type:uuid;not null;index"`
	RecipientID   string    `gorm:"index"`
	Amount        int64     `gorm:"not null;check:amount > 0"`
	CreatedAt     time.Time `gorm:"index"`
}

func (PayoutModel) TableName() string {
	return "payouts"
}

type RefundModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	TransactionID string `gorm:"type:uuid;not null;index"`
	ProviderRef   string
	Amount        int64     `gorm:"not null;check:amount > 0"`
	CreatedAt     time.Time `gorm:"index"`
}

func (RefundModel) TableName() string {
	return "refunds"
}
