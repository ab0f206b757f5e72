package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"
	"github.com/SscSPs/affiliate_commission_app/internal/dto"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
	"github.com/SscSPs/affiliate_commission_app/internal/monitoring"
)

// transactionHandler handles sale recording and transaction reads.
type transactionHandler struct {
	engine portssvc.CommissionEngineSvcFacade
}

func newTransactionHandler(engine portssvc.CommissionEngineSvcFacade) *transactionHandler {
	return &transactionHandler{engine: engine}
}

// registerTransactionRoutes registers the authenticated transaction routes.
func registerTransactionRoutes(rg *gin.RouterGroup, engine portssvc.CommissionEngineSvcFacade) {
	h := newTransactionHandler(engine)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.recordTransaction)
		txns.GET("/:id", h.getTransaction)
		txns.GET("", h.listTransactions)
	}
}

// registerPublicTransactionRoutes registers the rate-limited public
// recording endpoint used by storefront callbacks.
func registerPublicTransactionRoutes(r *gin.Engine, engine portssvc.CommissionEngineSvcFacade, publicLimiter *limiter.Limiter) {
	h := newTransactionHandler(engine)
	r.POST("/public/transactions", middleware.RateLimit(publicLimiter), h.recordPublicTransaction)
}

// recordTransaction godoc
// @Summary Record a transaction
// @Description Records a sale, resolves referral attribution and creates commission rows atomically
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.engine.RecordTransaction(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record transaction")
		return
	}

	monitoring.TransactionsRecorded.WithLabelValues(string(txn.Type)).Inc()
	logger.Info("Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", txn.Amount.String()),
	)
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// recordPublicTransaction godoc
// @Summary Record a transaction (public)
// @Description Rate-limited unauthenticated recording; returns a reduced response shape
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.PublicTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Router /public/transactions [post]
func (h *transactionHandler) recordPublicTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.engine.RecordTransaction(c.Request.Context(), req, "public")
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record transaction")
		return
	}

	monitoring.TransactionsRecorded.WithLabelValues(string(txn.Type)).Inc()
	c.JSON(http.StatusCreated, dto.ToPublicTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	txn, err := h.engine.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions attributed to the logged-in referrer
// @Tags transactions
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	referrerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txns, err := h.engine.ListTransactionsByReferrer(c.Request.Context(), referrerID, limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns)})
}
