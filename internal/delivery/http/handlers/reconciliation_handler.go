package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/metrics"
	"github.com/greenbasket/ledger-service/internal/usecase"
	"go.uber.org/zap"
)

type ReconciliationHandler struct {
	reconUC usecase.ReconciliationUsecase
	logger  *zap.Logger
}

func NewReconciliationHandler(reconUC usecase.ReconciliationUsecase, logger *zap.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC, logger: logger}
}

// The read endpoints never surface an internal failure to the caller: a
// broken query degrades to an empty page with zeroed aggregates. The
// failure is logged and counted instead.

func (h *ReconciliationHandler) ListTransactions(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.reconUC.ListTransactions(c.Request.Context(), filters)
	if err != nil {
		h.degrade(c, filters, "transactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       page.Items,
		"total":       page.Total,
		"limit":       page.Limit,
		"offset":      page.Offset,
		"totalAmount": page.TotalAmount,
	})
}

func (h *ReconciliationHandler) ListPayouts(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.reconUC.ListPayouts(c.Request.Context(), filters)
	if err != nil {
		h.degrade(c, filters, "payouts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       page.Items,
		"total":       page.Total,
		"limit":       page.Limit,
		"offset":      page.Offset,
		"totalAmount": page.TotalAmount,
	})
}

func (h *ReconciliationHandler) ListRefunds(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.reconUC.ListRefunds(c.Request.Context(), filters)
	if err != nil {
		h.degrade(c, filters, "refunds", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       page.Items,
		"total":       page.Total,
		"limit":       page.Limit,
		"offset":      page.Offset,
		"totalAmount": page.TotalAmount,
	})
}

func (h *ReconciliationHandler) degrade(c *gin.Context, filters domain.LedgerFilters, view string, err error) {
	metrics.ReconciliationDegradedTotal.Inc()
	h.logger.Error("reconciliation read degraded",
		zap.String("view", view), zap.Error(err))

	c.JSON(http.StatusOK, gin.H{
		"items":       []any{},
		"total":       0,
		"limit":       filters.Limit,
		"offset":      filters.Offset,
		"totalAmount": 0,
	})
}

func parseFilters(c *gin.Context) (domain.LedgerFilters, error) {
	filters := domain.LedgerFilters{
		SellerID: c.Query("sellerId"),
		BuyerID:  c.Query("buyerId"),
		Limit:    queryInt(c, "limit", 20),
		Offset:   queryInt(c, "offset", 0),
	}
	// userId is the legacy alias for the buyer filter
	if filters.BuyerID == "" {
		filters.BuyerID = c.Query("userId")
	}

	if raw := c.Query("dateFrom"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, err
		}
		filters.DateFrom = parsed
	}
	if raw := c.Query("dateTo"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, err
		}
		filters.DateTo = parsed
	}

	return filters, nil
}
