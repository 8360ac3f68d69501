package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests related to transactions and their exceptions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
	exceptionService   portssvc.ExceptionSvc
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade, es portssvc.ExceptionSvc) *transactionHandler {
	return &transactionHandler{transactionService: ts, exceptionService: es}
}

// registerTransactionRoutes registers transaction routes under the v1 group.
func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, es portssvc.ExceptionSvc) {
	h := newTransactionHandler(ts, es)

	teamTxns := rg.Group("/teams/:teamID/transactions")
	{
		teamTxns.POST("", h.createTransaction)
		teamTxns.GET("", h.listTransactions)
	}

	txns := rg.Group("/transactions/:transactionID")
	{
		txns.GET("", h.getTransaction)
		txns.POST("/revalidate", h.revalidateTransaction)
		txns.POST("/resolve", h.resolveException)
	}
}

// createTransaction godoc
// @Summary Record a transaction
// @Description Validates, routes and stores a transaction for a team season.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   teamID path string true "Team ID"
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Transactions not allowed in the current season state"
// @Failure 500 {object} map[string]string "Failed to create transaction"
// @Security BearerAuth
// @Router /teams/{teamID}/transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamID := c.Param("teamID")

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("team_id", teamID))
	tx, route, err := h.transactionService.CreateTransaction(c.Request.Context(), teamID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	resp := dto.ToTransactionResponse(tx)
	if route != nil {
		resp.Route = &dto.RouteResponse{
			Decision:   string(route.Decision),
			Reason:     route.Reason,
			EnvelopeID: route.EnvelopeID,
		}
	}
	logger.Info("Transaction created", slog.String("transaction_id", tx.TransactionID), slog.String("status", string(tx.Status)))
	c.JSON(http.StatusCreated, resp)
}

// listTransactions godoc
// @Summary List team transactions
// @Description Lists transactions of a team, newest first, with token pagination.
// @Tags transactions
// @Produce  json
// @Param   teamID path string true "Team ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token"
// @Param   status query string false "Status filter"
// @Param   seasonLabel query string false "Season filter"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /teams/{teamID}/transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamID := c.Param("teamID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), teamID, userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tx, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// revalidateTransaction godoc
// @Summary Re-run validation on a transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to revalidate transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID}/revalidate [post]
func (h *transactionHandler) revalidateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tx, err := h.transactionService.RevalidateTransaction(c.Request.Context(), transactionID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to revalidate transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(tx))
}

// resolveException godoc
// @Summary Resolve a transaction exception
// @Description Overrides, corrects or revalidates a transaction held in EXCEPTION.
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   resolution body dto.ResolveExceptionRequest true "Resolution"
// @Success 200 {object} dto.ResolveExceptionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not in exception"
// @Failure 500 {object} map[string]string "Failed to resolve exception"
// @Security BearerAuth
// @Router /transactions/{transactionID}/resolve [post]
func (h *transactionHandler) resolveException(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.ResolveExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolveException", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("transaction_id", transactionID))
	res, err := h.exceptionService.Resolve(c.Request.Context(), transactionID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve exception")
		return
	}

	codes := make([]string, len(res.OverriddenCodes))
	for i, code := range res.OverriddenCodes {
		codes[i] = string(code)
	}
	logger.Info("Exception resolved", slog.String("resolution", req.Resolution), slog.Bool("still_in_exception", res.StillInException))
	c.JSON(http.StatusOK, dto.ResolveExceptionResponse{
		Transaction:      dto.ToTransactionResponse(&res.Transaction),
		OverriddenCodes:  codes,
		StillInException: res.StillInException,
	})
}
