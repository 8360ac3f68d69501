package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// feedHandler accepts bank feed batches. It sits outside JWT auth and is guarded by the feed token.
type feedHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func registerFeedRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade) {
	h := &feedHandler{transactionService: ts}
	rg.POST("/teams/:teamID/transactions/import", h.importTransactions)
}

// importTransactions godoc
// @Summary Import bank feed transactions
// @Description Validates and stores a batch of feed transactions. Pending and already imported entries are skipped.
// @Tags feed
// @Accept  json
// @Produce  json
// @Param   teamID path string true "Team ID"
// @Param   batch body dto.ImportTransactionsRequest true "Feed batch"
// @Success 200 {object} dto.ImportTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid feed token"
// @Failure 409 {object} map[string]string "Transactions not allowed in the current season state"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Failed to import transactions"
// @Security FeedToken
// @Router /feed/teams/{teamID}/transactions/import [post]
func (h *feedHandler) importTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamID := c.Param("teamID")

	var req dto.ImportTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("team_id", teamID), slog.Int("batch_size", len(req.Transactions)))
	resp, err := h.transactionService.ImportTransactions(c.Request.Context(), teamID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to import transactions")
		return
	}
	logger.Info("Feed batch imported", slog.Int("imported", resp.Imported), slog.Int("skipped", resp.Skipped))
	c.JSON(http.StatusOK, resp)
}
