package mappers

import (
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:          model.ID,
		OrderID:     model.OrderID,
		SellerID:    model.SellerID,
		BuyerID:     model.BuyerID,
		ProviderRef: model.ProviderRef,
		Mode:        domain.ClassifyMode(model.ProviderRef),
		Amount:      model.Amount,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:          tx.ID,
		OrderID:     tx.OrderID,
		SellerID:    tx.SellerID,
		BuyerID:     tx.BuyerID,
		ProviderRef: tx.ProviderRef,
		Amount:      tx.Amount,
		Status:      tx.Status,
		CreatedAt:   tx.CreatedAt,
	}
}

func ToGORMPayout(payout *domain.Payout) *models.PayoutModel {
	return &models.PayoutModel{
		ID:            payout.ID,
		TransactionID: payout.TransactionID,
		RecipientID:   payout.RecipientID,
		Amount:        payout.Amount,
		CreatedAt:     payout.CreatedAt,
	}
}

func ToDomainRefund(model *models.RefundModel) *domain.Refund {
	return &domain.Refund{
		ID:            model.ID,
		TransactionID: model.TransactionID,
		ProviderRef:   model.ProviderRef,
		Amount:        model.Amount,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMRefund(refund *domain.Refund) *models.RefundModel {
	return &models.RefundModel{
		ID:            refund.ID,
		TransactionID: refund.TransactionID,
		ProviderRef:   refund.ProviderRef,
		Amount:        refund.Amount,
		CreatedAt:     refund.CreatedAt,
	}
}

func ToDomainDeliveryOrder(model *models.DeliveryOrderModel) *domain.DeliveryOrder {
	return &domain.DeliveryOrder{
		ID:           model.ID,
		OrderID:      model.OrderID,
		CourierID:    model.CourierID,
		Fee:          model.Fee,
		CourierCut:   model.CourierCut,
		PlatformCut:  model.PlatformCut,
		Status:       model.Status,
		FeeCollected: model.FeeCollected,
		PickedUpAt:   model.PickedUpAt,
		DeliveredAt:  model.DeliveredAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMDeliveryOrder(d *domain.DeliveryOrder) *models.DeliveryOrderModel {
	return &models.DeliveryOrderModel{
		ID:           d.ID,
		OrderID:      d.OrderID,
		CourierID:    d.CourierID,
		Fee:          d.Fee,
		CourierCut:   d.CourierCut,
		PlatformCut:  d.PlatformCut,
		Status:       d.Status,
		FeeCollected: d.FeeCollected,
		PickedUpAt:   d.PickedUpAt,
		DeliveredAt:  d.DeliveredAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func ToDomainCourier(model *models.CourierProfileModel) *domain.CourierProfile {
	return &domain.CourierProfile{
		ID:          model.ID,
		DisplayName: model.DisplayName,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
	}
}

func ToDomainCollectionRun(model *models.CollectionRunModel) *domain.CollectionRun {
	return &domain.CollectionRun{
		ID:                  model.ID,
		PlatformFees:        model.PlatformFees,
		DeliveryCuts:        model.DeliveryCuts,
		ProcessedOrders:     model.ProcessedOrders,
		ProcessedDeliveries: model.ProcessedDeliveries,
		Cutoff:              model.Cutoff,
		CreatedAt:           model.CreatedAt,
	}
}

func ToGORMCollectionRun(run *domain.CollectionRun) *models.CollectionRunModel {
	return &models.CollectionRunModel{
		ID:                  run.ID,
		PlatformFees:        run.PlatformFees,
		DeliveryCuts:        run.DeliveryCuts,
		ProcessedOrders:     run.ProcessedOrders,
		ProcessedDeliveries: run.ProcessedDeliveries,
		Cutoff:              run.Cutoff,
		CreatedAt:           run.CreatedAt,
	}
}

func ToDomainOutboxEvent(model *models.OutboxEventModel) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:          model.ID,
		Topic:       model.Topic,
		Key:         model.Key,
		Payload:     model.Payload,
		Published:   model.Published,
		CreatedAt:   model.CreatedAt,
		PublishedAt: model.PublishedAt,
	}
}

func ToGORMOutboxEvent(evt *domain.OutboxEvent) *models.OutboxEventModel {
	return &models.OutboxEventModel{
		ID:          evt.ID,
		Topic:       evt.Topic,
		Key:         evt.Key,
		Payload:     evt.Payload,
		Published:   evt.Published,
		CreatedAt:   evt.CreatedAt,
		PublishedAt: evt.PublishedAt,
	}
}
