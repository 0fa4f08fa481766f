package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenbasket/ledger-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter wires the HTTP surface: the provider webhook, the
// operator fee endpoints and the reconciliation read views.
func SetupRouter(
	webhook *WebhookHandler,
	collection *CollectionHandler,
	reconciliation *ReconciliationHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/webhooks/payment", webhook.HandlePaymentWebhook)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/fees/collect", collection.CollectFees)
		v1.GET("/fees/collections", collection.CollectionHistory)
		v1.POST("/ledger/payouts", collection.RecordPayout)
		v1.POST("/ledger/refunds", collection.RecordRefund)

		recon := v1.Group("/reconciliation")
		{
			recon.GET("/transactions", reconciliation.ListTransactions)
			recon.GET("/payouts", reconciliation.ListPayouts)
			recon.GET("/refunds", reconciliation.ListRefunds)
		}
	}

	return router
}

func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
