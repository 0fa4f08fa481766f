package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/greenbasket/ledger-service/internal/domain"
	ingestdto "github.com/greenbasket/ledger-service/internal/usecase/dto/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWebhookUsecase(t *testing.T, orderRepo *fakeOrderRepo, courierRepo *fakeCourierRepo, mode domain.Mode) *DefaultWebhookUsecase {
	t.Helper()
	uc, err := NewDefaultWebhookUsecase(orderRepo, courierRepo, mode, "ledger-events", zap.NewNop())
	require.NoError(t, err)
	return uc
}

func checkoutPayload(t *testing.T, sessionID string, metadata map[string]string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":           sessionID,
				"customer":     "cust-fallback",
				"amount_total": 0,
				"metadata":     metadata,
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func defaultMetadata() map[string]string {
	return map[string]string{
		"buyerId": "buyer-1",
		"items": `[
			{"productId":"p1","sellerId":"seller-a","name":"Apples","quantity":2,"unitAmount":500},
			{"productId":"p2","sellerId":"seller-b","name":"Bread","quantity":1,"unitAmount":300},
			{"productId":"p3","sellerId":"seller-a","name":"Milk","quantity":1,"unitAmount":200}
		]`,
	}
}

func TestHandleProviderEvent_CreatesOrderWithSellerTransactions(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeLive)

	result, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_live_001", defaultMetadata()))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeOrderCreated, result.Outcome)
	assert.NotEmpty(t, result.OrderID)
	assert.NotEmpty(t, result.OrderNumber)

	order, err := repo.GetOrderByProviderRef("sess_live_001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, "buyer-1", order.BuyerID)
	assert.Equal(t, int64(1500), order.TotalAmount)
	assert.Len(t, order.Items, 3)

	require.Len(t, repo.txs, 2)
	assert.Equal(t, "seller-a", repo.txs[0].SellerID)
	assert.Equal(t, int64(1200), repo.txs[0].Amount)
	assert.Equal(t, "seller-b", repo.txs[1].SellerID)
	assert.Equal(t, int64(300), repo.txs[1].Amount)
	var txTotal int64
	for _, tx := range repo.txs {
		txTotal += tx.Amount
	}
	assert.Equal(t, order.TotalAmount, txTotal)

	require.Len(t, repo.outbox, 1)
	assert.Equal(t, "ledger-events", repo.outbox[0].Topic)
}

func TestHandleProviderEvent_DuplicateDeliveryIsNoOp(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeLive)
	payload := checkoutPayload(t, "sess_live_dup", defaultMetadata())

	first, err := uc.HandleProviderEvent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeOrderCreated, first.Outcome)

	second, err := uc.HandleProviderEvent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeDuplicate, second.Outcome)

	assert.Len(t, repo.orders, 1)
	assert.Len(t, repo.txs, 2)
	assert.Len(t, repo.outbox, 1)
}

func TestHandleProviderEvent_IgnoresOtherEventTypes(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeLive)

	payload, err := json.Marshal(map[string]any{"type": "invoice.paid"})
	require.NoError(t, err)

	result, err := uc.HandleProviderEvent(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeIgnored, result.Outcome)
	assert.Zero(t, repo.ingests)
}

func TestHandleProviderEvent_IgnoresOtherModeSession(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeLive)

	result, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_test_123", defaultMetadata()))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeIgnored, result.Outcome)
	assert.Zero(t, repo.ingests)
}

func TestHandleProviderEvent_MalformedPayload(t *testing.T) {
	uc := newWebhookUsecase(t, newFakeOrderRepo(), &fakeCourierRepo{}, domain.ModeLive)

	_, err := uc.HandleProviderEvent(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestHandleProviderEvent_MissingMetadata(t *testing.T) {
	uc := newWebhookUsecase(t, newFakeOrderRepo(), &fakeCourierRepo{}, domain.ModeLive)

	tests := []struct {
		name     string
		metadata map[string]string
	}{
		{"no items", map[string]string{"buyerId": "buyer-1"}},
		{"items not json", map[string]string{"buyerId": "buyer-1", "items": "???"}},
		{"empty items", map[string]string{"buyerId": "buyer-1", "items": "[]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_live_meta", tt.metadata))
			assert.ErrorIs(t, err, domain.ErrMissingMetadata)
		})
	}
}

func TestHandleProviderEvent_MissingSessionID(t *testing.T) {
	uc := newWebhookUsecase(t, newFakeOrderRepo(), &fakeCourierRepo{}, domain.ModeLive)

	_, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "", defaultMetadata()))
	assert.ErrorIs(t, err, domain.ErrMissingMetadata)
}

func TestHandleProviderEvent_BuyerFallsBackToCustomer(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeLive)

	metadata := defaultMetadata()
	delete(metadata, "buyerId")

	result, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_live_cust", metadata))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeOrderCreated, result.Outcome)

	order, err := repo.GetOrderByProviderRef("sess_live_cust")
	require.NoError(t, err)
	assert.Equal(t, "cust-fallback", order.BuyerID)
}

func TestHandleProviderEvent_DeliveryOrderWithAssignedCourier(t *testing.T) {
	repo := newFakeOrderRepo()
	courier := &fakeCourierRepo{courier: &domain.CourierProfile{ID: "courier-7", Active: true}}
	uc := newWebhookUsecase(t, repo, courier, domain.ModeLive)

	metadata := defaultMetadata()
	metadata["deliveryMode"] = "delivery"
	metadata["deliveryType"] = "PLATFORM_COURIER"
	metadata["distanceKm"] = "10"

	result, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_live_dlv", metadata))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeOrderCreated, result.Outcome)

	order, err := repo.GetOrderByProviderRef("sess_live_dlv")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryModeDelivery, order.DeliveryMode)

	require.Len(t, repo.deliveries, 1)
	delivery := repo.deliveries[0]
	assert.Equal(t, "courier-7", delivery.CourierID)
	assert.Equal(t, domain.DeliveryStatusPending, delivery.Status)
	// 10 km platform courier: 250 base + 7 chargeable km * 50 = 600
	assert.Equal(t, int64(600), delivery.Fee)
	assert.Equal(t, int64(528), delivery.CourierCut)
	assert.Equal(t, int64(72), delivery.PlatformCut)
	assert.Equal(t, delivery.Fee, delivery.CourierCut+delivery.PlatformCut)
}

func TestHandleProviderEvent_DeliveryWithoutCourierStaysUnassigned(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeLive)

	metadata := defaultMetadata()
	metadata["deliveryMode"] = "delivery"
	metadata["distanceKm"] = "2"

	result, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_live_noc", metadata))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeOrderCreated, result.Outcome)

	require.Len(t, repo.deliveries, 1)
	assert.Empty(t, repo.deliveries[0].CourierID)
}

func TestHandleProviderEvent_TestModeService(t *testing.T) {
	repo := newFakeOrderRepo()
	uc := newWebhookUsecase(t, repo, &fakeCourierRepo{}, domain.ModeTest)

	result, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_test_ok", defaultMetadata()))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeOrderCreated, result.Outcome)

	live, err := uc.HandleProviderEvent(context.Background(), checkoutPayload(t, "sess_live_no", defaultMetadata()))
	require.NoError(t, err)
	assert.Equal(t, ingestdto.OutcomeIgnored, live.Outcome)
}
