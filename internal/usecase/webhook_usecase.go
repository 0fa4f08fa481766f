package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/fees"
	publisher "github.com/greenbasket/ledger-service/internal/infrastructure/kafka"
	"github.com/greenbasket/ledger-service/internal/infrastructure/metrics"
	ingestdto "github.com/greenbasket/ledger-service/internal/usecase/dto/ingest"
	"github.com/jaevor/go-nanoid"
	"go.uber.org/zap"
)

const eventCheckoutCompleted = "checkout.session.completed"

type WebhookUsecase interface {
	HandleProviderEvent(ctx context.Context, rawPayload []byte) (*ingestdto.Result, error)
}

// providerEvent mirrors the provider's webhook envelope. Everything the
// ledger needs rides in the session metadata map.
type providerEvent struct {
	Type string `json:"type"`
	Data struct {
		Object checkoutSession `json:"object"`
	} `json:"data"`
}

type checkoutSession struct {
	ID          string            `json:"id"`
	Customer    string            `json:"customer"`
	AmountTotal int64             `json:"amount_total"`
	Metadata    map[string]string `json:"metadata"`
}

type metadataItem struct {
	ProductID  string `json:"productId"`
	SellerID   string `json:"sellerId"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	UnitAmount int64  `json:"unitAmount"`
}

type DefaultWebhookUsecase struct {
	OrderRepo   domain.OrderRepository
	CourierRepo domain.CourierRepository
	Mode        domain.Mode
	Topic       string
	logger      *zap.Logger
	newNumber   func() string
}

func NewDefaultWebhookUsecase(
	orderRepo domain.OrderRepository,
	courierRepo domain.CourierRepository,
	mode domain.Mode,
	topic string,
	logger *zap.Logger,
) (*DefaultWebhookUsecase, error) {
	numberGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	return &DefaultWebhookUsecase{
		OrderRepo:   orderRepo,
		CourierRepo: courierRepo,
		Mode:        mode,
		Topic:       topic,
		logger:      logger,
		newNumber:   numberGenerator,
	}, nil
}

// HandleProviderEvent is the single externally-triggered entry point.
// The provider delivers at-least-once, so the whole flow is idempotent
// on the session reference: a retry of an already-ingested event is a
// success-no-op, never a second order.
func (uc *DefaultWebhookUsecase) HandleProviderEvent(ctx context.Context, rawPayload []byte) (*ingestdto.Result, error) {
	var event providerEvent
	if err := json.Unmarshal(rawPayload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if event.Type != eventCheckoutCompleted {
		// unknown event types are acknowledged, not rejected, or the
		// provider would retry them forever
		uc.logger.Debug("ignoring provider event", zap.String("type", event.Type))
		return &ingestdto.Result{Outcome: ingestdto.OutcomeIgnored}, nil
	}

	session := event.Data.Object
	if session.ID == "" {
		return nil, fmt.Errorf("%w: session id", domain.ErrMissingMetadata)
	}

	if !domain.MatchesMode(session.ID, uc.Mode) {
		// the other environment's money; not an error, just not ours
		uc.logger.Warn("session reference belongs to the other payment mode",
			zap.String("provider_ref", session.ID))
		return &ingestdto.Result{Outcome: ingestdto.OutcomeIgnored}, nil
	}

	order, txs, delivery, err := uc.buildOrder(session)
	if err != nil {
		return nil, err
	}

	evt, err := uc.outboxEvent(order)
	if err != nil {
		return nil, err
	}

	created, err := uc.OrderRepo.IngestOrder(order, txs, delivery, evt)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest provider event: %w", err)
	}
	if !created {
		uc.logger.Info("duplicate provider event, nothing written",
			zap.String("provider_ref", session.ID))
		return &ingestdto.Result{Outcome: ingestdto.OutcomeDuplicate}, nil
	}

	metrics.OrdersIngestedTotal.Inc()
	metrics.OrdersIngestedAmountTotal.Add(float64(order.TotalAmount))

	uc.logger.Info("order ingested",
		zap.String("order_id", order.ID),
		zap.String("provider_ref", session.ID),
		zap.Int64("total_amount", order.TotalAmount))

	return &ingestdto.Result{
		Outcome:     ingestdto.OutcomeOrderCreated,
		OrderID:     order.ID,
		OrderNumber: order.Number,
	}, nil
}

func (uc *DefaultWebhookUsecase) buildOrder(session checkoutSession) (*domain.Order, []*domain.Transaction, *domain.DeliveryOrder, error) {
	buyerID := session.Metadata["buyerId"]
	if buyerID == "" {
		buyerID = session.Customer
	}
	if buyerID == "" {
		return nil, nil, nil, fmt.Errorf("%w: buyer id", domain.ErrMissingMetadata)
	}

	itemsJSON := session.Metadata["items"]
	if itemsJSON == "" {
		return nil, nil, nil, fmt.Errorf("%w: items", domain.ErrMissingMetadata)
	}
	var rawItems []metadataItem
	if err := json.Unmarshal([]byte(itemsJSON), &rawItems); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: items: %v", domain.ErrMissingMetadata, err)
	}
	if len(rawItems) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty item list", domain.ErrMissingMetadata)
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	items := make([]domain.LineItem, len(rawItems))
	var itemsTotal int64
	for i, raw := range rawItems {
		items[i] = domain.LineItem{
			ID:         uuid.New().String(),
			OrderID:    orderID,
			ProductID:  raw.ProductID,
			SellerID:   raw.SellerID,
			Name:       raw.Name,
			Quantity:   raw.Quantity,
			UnitAmount: raw.UnitAmount,
		}
		itemsTotal += int64(raw.Quantity) * raw.UnitAmount
	}

	totalAmount := session.AmountTotal
	if totalAmount == 0 {
		totalAmount = itemsTotal
	}
	if totalAmount < 0 {
		return nil, nil, nil, fmt.Errorf("%w: negative amount", domain.ErrMissingMetadata)
	}

	deliveryMode := domain.DeliveryModePickup
	if session.Metadata["deliveryMode"] == "delivery" {
		deliveryMode = domain.DeliveryModeDelivery
	}

	order := &domain.Order{
		ID:           orderID,
		Number:       uc.newNumber(),
		BuyerID:      buyerID,
		TotalAmount:  totalAmount,
		Status:       domain.OrderStatusPaid,
		ProviderRef:  session.ID,
		Mode:         domain.ClassifyMode(session.ID),
		DeliveryMode: deliveryMode,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	txs := uc.buildTransactions(order)

	var delivery *domain.DeliveryOrder
	if deliveryMode == domain.DeliveryModeDelivery {
		var err error
		delivery, err = uc.buildDeliveryOrder(order, session.Metadata)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	return order, txs, delivery, nil
}

// buildTransactions groups line items by seller: each seller gets one
// settled payment leg with OrderID resolved right here, at creation.
func (uc *DefaultWebhookUsecase) buildTransactions(order *domain.Order) []*domain.Transaction {
	bySeller := make(map[string]int64)
	sellerOrder := make([]string, 0)
	for _, item := range order.Items {
		if _, seen := bySeller[item.SellerID]; !seen {
			sellerOrder = append(sellerOrder, item.SellerID)
		}
		bySeller[item.SellerID] += int64(item.Quantity) * item.UnitAmount
	}

	txs := make([]*domain.Transaction, 0, len(sellerOrder))
	for _, sellerID := range sellerOrder {
		txs = append(txs, &domain.Transaction{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			SellerID:    sellerID,
			BuyerID:     order.BuyerID,
			ProviderRef: order.ProviderRef,
			Mode:        order.Mode,
			Amount:      bySeller[sellerID],
			Status:      domain.TransactionStatusSettled,
			CreatedAt:   order.CreatedAt,
		})
	}

	return txs
}

func (uc *DefaultWebhookUsecase) buildDeliveryOrder(order *domain.Order, metadata map[string]string) (*domain.DeliveryOrder, error) {
	deliveryType := fees.DeliveryType(metadata["deliveryType"])
	if deliveryType == "" {
		deliveryType = fees.PlatformCourier
	}

	distanceKm := 0.0
	if raw := metadata["distanceKm"]; raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: distanceKm: %v", domain.ErrMissingMetadata, err)
		}
		distanceKm = parsed
	}

	fee, err := fees.ComputeDeliveryFee(distanceKm, deliveryType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingMetadata, err)
	}

	courierID := ""
	courier, err := uc.CourierRepo.FirstActive()
	switch {
	case err == nil:
		courierID = courier.ID
	case err == domain.ErrNoActiveCourier:
		// leave unassigned rather than failing a paid checkout
		uc.logger.Warn("no active courier for delivery order",
			zap.String("order_id", order.ID))
	default:
		return nil, err
	}

	return &domain.DeliveryOrder{
		ID:          uuid.New().String(),
		OrderID:     order.ID,
		CourierID:   courierID,
		Fee:         fee.Total,
		CourierCut:  fee.CourierCut,
		PlatformCut: fee.PlatformCut,
		Status:      domain.DeliveryStatusPending,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.CreatedAt,
	}, nil
}

func (uc *DefaultWebhookUsecase) outboxEvent(order *domain.Order) (*domain.OutboxEvent, error) {
	payload, err := json.Marshal(publisher.LedgerEvent{
		EventID:    uuid.New().String(),
		Type:       publisher.EventOrderCompleted,
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		Amount:     order.TotalAmount,
		Mode:       string(order.Mode),
		OccurredAt: order.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	return &domain.OutboxEvent{
		ID:        uuid.New().String(),
		Topic:     uc.Topic,
		Key:       order.ID,
		Payload:   payload,
		CreatedAt: order.CreatedAt,
	}, nil
}
