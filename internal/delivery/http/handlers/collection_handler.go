package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/usecase"
	"go.uber.org/zap"
)

type CollectionHandler struct {
	collectionUC usecase.CollectionUsecase
	logger       *zap.Logger
}

func NewCollectionHandler(collectionUC usecase.CollectionUsecase, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{collectionUC: collectionUC, logger: logger}
}

func (h *CollectionHandler) CollectFees(c *gin.Context) {
	var cutoff time.Time
	if raw := c.Query("cutoff"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cutoff must be RFC3339"})
			return
		}
		cutoff = parsed
	}

	summary, err := h.collectionUC.CollectFees(c.Request.Context(), cutoff)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "a collection run is already in progress"})
			return
		}
		h.logger.Error("fee collection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *CollectionHandler) CollectionHistory(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	history, err := h.collectionUC.CollectionHistory(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to load collection history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, history)
}

type payoutRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	RecipientID   string `json:"recipientId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
}

func (h *CollectionHandler) RecordPayout(c *gin.Context) {
	var req payoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.collectionUC.RecordPayout(c.Request.Context(), req.TransactionID, req.RecipientID, req.Amount)
	if err != nil {
		h.writeLedgerError(c, err, "payout")
		return
	}

	c.JSON(http.StatusCreated, payout)
}

type refundRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	ProviderRef   string `json:"providerRef"`
}

func (h *CollectionHandler) RecordRefund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refund, err := h.collectionUC.RecordRefund(c.Request.Context(), req.TransactionID, req.Amount, req.ProviderRef)
	if err != nil {
		h.writeLedgerError(c, err, "refund")
		return
	}

	c.JSON(http.StatusCreated, refund)
}

func (h *CollectionHandler) writeLedgerError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
	case errors.Is(err, domain.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	case errors.Is(err, domain.ErrPayoutExceedsTransaction),
		errors.Is(err, domain.ErrRefundExceedsAvailable),
		errors.Is(err, domain.ErrModeMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("ledger write failed", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
