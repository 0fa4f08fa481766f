package mappers

import (
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	providerRef := ""
	if model.ProviderRef != nil {
		providerRef = *model.ProviderRef
	}

	items := make([]domain.LineItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = domain.LineItem{
			ID:         item.ID,
			OrderID:    item.OrderID,
			ProductID:  item.ProductID,
			SellerID:   item.SellerID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitAmount: item.UnitAmount,
		}
	}

	return &domain.Order{
		ID:                   model.ID,
		Number:               model.Number,
		BuyerID:              model.BuyerID,
		TotalAmount:          model.TotalAmount,
		Status:               model.Status,
		ProviderRef:          providerRef,
		Mode:                 domain.ClassifyMode(providerRef),
		DeliveryMode:         domain.DeliveryMode(model.DeliveryMode),
		PlatformFeeCollected: model.PlatformFeeCollected,
		Items:                items,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	var providerRef *string
	if order.ProviderRef != "" {
		ref := order.ProviderRef
		providerRef = &ref
	}

	items := make([]models.LineItemModel, len(order.Items))
	for i, item := range order.Items {
		items[i] = models.LineItemModel{
			ID:         item.ID,
			OrderID:    order.ID,
			ProductID:  item.ProductID,
			SellerID:   item.SellerID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitAmount: item.UnitAmount,
		}
	}

	return &models.OrderModel{
		ID:                   order.ID,
		Number:               order.Number,
		BuyerID:              order.BuyerID,
		TotalAmount:          order.TotalAmount,
		Status:               order.Status,
		ProviderRef:          providerRef,
		DeliveryMode:         string(order.DeliveryMode),
		PlatformFeeCollected: order.PlatformFeeCollected,
		Items:                items,
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}
