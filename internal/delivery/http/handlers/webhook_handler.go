package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/metrics"
	"github.com/greenbasket/ledger-service/internal/usecase"
	ingestdto "github.com/greenbasket/ledger-service/internal/usecase/dto/ingest"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	webhookUC usecase.WebhookUsecase
	logger    *zap.Logger
}

func NewWebhookHandler(webhookUC usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhookUC: webhookUC, logger: logger}
}

// HandlePaymentWebhook receives provider events. Whatever the outcome,
// a 200 tells the provider to stop retrying; only payloads the provider
// itself got wrong come back as 400.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(string(ingestdto.OutcomeRejected)).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := h.webhookUC.HandleProviderEvent(c.Request.Context(), body)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrMissingMetadata):
			metrics.WebhookEventsTotal.WithLabelValues(string(ingestdto.OutcomeRejected)).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			metrics.WebhookEventsTotal.WithLabelValues("failed").Inc()
			h.logger.Error("webhook processing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	metrics.WebhookEventsTotal.WithLabelValues(string(result.Outcome)).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}
