package postgres

import (
	"log"

	"github.com/greenbasket/ledger-service/internal/config"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.LedgerConfig) *gorm.DB {
	dsn := cfg.LedgerDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.OrderModel{},
		&models.LineItemModel{},
		&models.TransactionModel{},
		&models.PayoutModel{},
		&models.RefundModel{},
		&models.DeliveryOrderModel{},
		&models.CourierProfileModel{},
		&models.CollectionRunModel{},
		&models.OutboxEventModel{},
	)

	return db
}
