package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// envelopeHandler handles pre-authorized spending envelopes.
type envelopeHandler struct {
	envelopeService portssvc.EnvelopeSvcFacade
	now             func() time.Time
}

func newEnvelopeHandler(es portssvc.EnvelopeSvcFacade) *envelopeHandler {
	return &envelopeHandler{envelopeService: es, now: time.Now}
}

// registerEnvelopeRoutes registers envelope routes under the v1 group.
func registerEnvelopeRoutes(rg *gin.RouterGroup, es portssvc.EnvelopeSvcFacade) {
	h := newEnvelopeHandler(es)

	budgetEnvelopes := rg.Group("/budgets/:budgetID/envelopes")
	{
		budgetEnvelopes.POST("", h.createEnvelope)
		budgetEnvelopes.GET("", h.listEnvelopes)
		budgetEnvelopes.GET("/export", h.exportEnvelopes)
	}

	envelopes := rg.Group("/envelopes/:envelopeID")
	{
		envelopes.DELETE("", h.deactivateEnvelope)
		envelopes.GET("/summary", h.spendingSummary)
	}
}

// asOfParam reads the optional asOf=YYYY-MM-DD query parameter, defaulting to today.
func (h *envelopeHandler) asOfParam(c *gin.Context) (time.Time, error) {
	raw := c.Query("asOf")
	if raw == "" {
		return h.now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("asOf must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// createEnvelope godoc
// @Summary Create an envelope
// @Description Creates a pre-authorized spending envelope for a budget category.
// @Tags envelopes
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   envelope body dto.CreateEnvelopeRequest true "Envelope details"
// @Success 201 {object} dto.EnvelopeResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to create envelope"
// @Security BearerAuth
// @Router /budgets/{budgetID}/envelopes [post]
func (h *envelopeHandler) createEnvelope(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.CreateEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEnvelope", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	env, err := h.envelopeService.CreateEnvelope(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create envelope")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEnvelopeResponse(env))
}

// listEnvelopes godoc
// @Summary List envelopes of a budget
// @Tags envelopes
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.ListEnvelopesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to list envelopes"
// @Security BearerAuth
// @Router /budgets/{budgetID}/envelopes [get]
func (h *envelopeHandler) listEnvelopes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	envelopes, err := h.envelopeService.ListEnvelopes(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list envelopes")
		return
	}
	c.JSON(http.StatusOK, dto.ToListEnvelopesResponse(envelopes))
}

// deactivateEnvelope godoc
// @Summary Deactivate an envelope
// @Tags envelopes
// @Param   envelopeID path string true "Envelope ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Envelope not found"
// @Failure 500 {object} map[string]string "Failed to deactivate envelope"
// @Security BearerAuth
// @Router /envelopes/{envelopeID} [delete]
func (h *envelopeHandler) deactivateEnvelope(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	envelopeID := c.Param("envelopeID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.envelopeService.DeactivateEnvelope(c.Request.Context(), envelopeID, userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate envelope")
		return
	}
	logger.Info("Envelope deactivated", slog.String("envelope_id", envelopeID))
	c.Status(http.StatusNoContent)
}

// spendingSummary godoc
// @Summary Envelope spending summary
// @Description Reports cap, spent and remaining for the envelope period containing asOf.
// @Tags envelopes
// @Produce  json
// @Param   envelopeID path string true "Envelope ID"
// @Param   asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} domain.EnvelopeSpendingSummary
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Envelope not found"
// @Failure 500 {object} map[string]string "Failed to summarize envelope"
// @Security BearerAuth
// @Router /envelopes/{envelopeID}/summary [get]
func (h *envelopeHandler) spendingSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	envelopeID := c.Param("envelopeID")

	asOf, err := h.asOfParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.envelopeService.SpendingSummary(c.Request.Context(), envelopeID, asOf, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to summarize envelope")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// exportEnvelopes godoc
// @Summary Export envelope spending
// @Description Downloads an xlsx workbook with the spending summary of every active envelope.
// @Tags envelopes
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   budgetID path string true "Budget ID"
// @Param   asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to export envelopes"
// @Security BearerAuth
// @Router /budgets/{budgetID}/envelopes/export [get]
func (h *envelopeHandler) exportEnvelopes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	asOf, err := h.asOfParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.envelopeService.ExportSpendingSummary(c.Request.Context(), budgetID, asOf, userID, &buf); err != nil {
		respondError(c, logger, err, "Failed to export envelopes")
		return
	}

	filename := fmt.Sprintf("envelopes-%s-%s.xlsx", budgetID, asOf.Format(time.DateOnly))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
