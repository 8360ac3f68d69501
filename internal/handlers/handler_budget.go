package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles budgets, their versions, the lock quorum and family approvals.
type budgetHandler struct {
	budgetService      portssvc.BudgetSvcFacade
	associationService portssvc.AssociationApprovalSvc
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade, as portssvc.AssociationApprovalSvc) *budgetHandler {
	return &budgetHandler{budgetService: bs, associationService: as}
}

// registerBudgetRoutes registers budget and association approval routes.
func registerBudgetRoutes(rg *gin.RouterGroup, bs portssvc.BudgetSvcFacade, as portssvc.AssociationApprovalSvc) {
	h := newBudgetHandler(bs, as)

	rg.POST("/teams/:teamID/budgets", h.createBudget)

	budgets := rg.Group("/budgets/:budgetID")
	{
		budgets.GET("", h.getBudget)
		budgets.POST("/versions", h.createVersion)
		budgets.PUT("/threshold", h.upsertThreshold)
		budgets.GET("/approval-progress", h.approvalProgress)
		budgets.POST("/versions/:versionID/approvals", h.recordApproval)

		association := budgets.Group("/association")
		{
			association.POST("/approve", h.associationApprove)
			association.POST("/request-changes", h.associationRequestChanges)
		}
	}
}

// createBudget godoc
// @Summary Create a budget
// @Description Opens a budget for a season along with its team season lifecycle.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   teamID path string true "Team ID"
// @Param   budget body dto.CreateBudgetRequest true "Season details"
// @Success 201 {object} dto.BudgetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Budget already exists for season"
// @Failure 500 {object} map[string]string "Failed to create budget"
// @Security BearerAuth
// @Router /teams/{teamID}/budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamID := c.Param("teamID")

	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
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
	budget, err := h.budgetService.CreateBudget(c.Request.Context(), teamID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create budget")
		return
	}
	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID), slog.String("season_label", budget.SeasonLabel))
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

// getBudget godoc
// @Summary Get a budget
// @Description Returns the budget together with its current version.
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.BudgetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to retrieve budget"
// @Security BearerAuth
// @Router /budgets/{budgetID} [get]
func (h *budgetHandler) getBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	budget, version, err := h.budgetService.GetBudget(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve budget")
		return
	}
	resp := dto.ToBudgetResponse(budget)
	if version != nil {
		v := dto.ToBudgetVersionResponse(version)
		resp.CurrentVersion = &v
	}
	c.JSON(http.StatusOK, resp)
}

// createVersion godoc
// @Summary Create a budget version
// @Description Adds a new version with category allocations. Only allowed while the budget is being drafted or reviewed.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   version body dto.CreateBudgetVersionRequest true "Version details"
// @Success 201 {object} dto.BudgetVersionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Budget can no longer be edited"
// @Failure 500 {object} map[string]string "Failed to create budget version"
// @Security BearerAuth
// @Router /budgets/{budgetID}/versions [post]
func (h *budgetHandler) createVersion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.CreateBudgetVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateVersion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("budget_id", budgetID))
	version, err := h.budgetService.CreateVersion(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create budget version")
		return
	}
	logger.Info("Budget version created", slog.String("version_id", version.VersionID), slog.Int("version_number", version.VersionNumber))
	c.JSON(http.StatusCreated, dto.ToBudgetVersionResponse(version))
}

// upsertThreshold godoc
// @Summary Set the lock threshold
// @Description Creates or replaces the family approval quorum required to lock the budget.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   threshold body dto.UpsertThresholdRequest true "Threshold"
// @Success 200 {object} dto.ThresholdConfigResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to save threshold"
// @Security BearerAuth
// @Router /budgets/{budgetID}/threshold [put]
func (h *budgetHandler) upsertThreshold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.UpsertThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertThreshold", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cfg, err := h.budgetService.UpsertThresholdConfig(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to save threshold")
		return
	}
	c.JSON(http.StatusOK, dto.ToThresholdConfigResponse(cfg))
}

// approvalProgress godoc
// @Summary Family approval progress
// @Tags budgets
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Success 200 {object} dto.ApprovalProgressResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 500 {object} map[string]string "Failed to compute approval progress"
// @Security BearerAuth
// @Router /budgets/{budgetID}/approval-progress [get]
func (h *budgetHandler) approvalProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	progress, err := h.budgetService.ApprovalProgress(c.Request.Context(), budgetID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute approval progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}

// recordApproval godoc
// @Summary Record a family approval
// @Description Records one family's acknowledgement of the presented version and locks the budget once the quorum is met.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   versionID path string true "Version ID"
// @Param   approval body dto.RecordApprovalRequest false "Family"
// @Success 201 {object} dto.RecordApprovalResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget or version not found"
// @Failure 409 {object} map[string]string "Already approved or version not presented"
// @Failure 500 {object} map[string]string "Failed to record approval"
// @Security BearerAuth
// @Router /budgets/{budgetID}/versions/{versionID}/approvals [post]
func (h *budgetHandler) recordApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")
	versionID := c.Param("versionID")

	// The body is optional; without it the family is the caller's own.
	var req dto.RecordApprovalRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RecordApproval", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("version_id", versionID))
	resp, err := h.budgetService.RecordParentApproval(c.Request.Context(), budgetID, versionID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record approval")
		return
	}
	logger.Info("Family approval recorded", slog.Int("approved", resp.ApprovedCount), slog.Bool("locked", resp.Locked))
	c.JSON(http.StatusCreated, resp)
}

// associationApprove godoc
// @Summary Association approves a budget
// @Description Approves the reviewed version on behalf of the association, moving the season to presentation.
// @Tags association
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   decision body dto.AssociationDecisionRequest true "Decision"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Association approval not required or wrong state"
// @Failure 500 {object} map[string]string "Failed to approve budget"
// @Security BearerAuth
// @Router /budgets/{budgetID}/association/approve [post]
func (h *budgetHandler) associationApprove(c *gin.Context) {
	h.associationDecision(c, h.associationService.ApproveBudget, "Failed to approve budget")
}

// associationRequestChanges godoc
// @Summary Association requests budget changes
// @Description Sends the reviewed version back to draft with the association's notes.
// @Tags association
// @Accept  json
// @Produce  json
// @Param   budgetID path string true "Budget ID"
// @Param   decision body dto.AssociationDecisionRequest true "Decision"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Budget not found"
// @Failure 409 {object} map[string]string "Association approval not required or wrong state"
// @Failure 500 {object} map[string]string "Failed to request changes"
// @Security BearerAuth
// @Router /budgets/{budgetID}/association/request-changes [post]
func (h *budgetHandler) associationRequestChanges(c *gin.Context) {
	h.associationDecision(c, h.associationService.RequestChanges, "Failed to request changes")
}

type associationDecisionFunc func(ctx context.Context, budgetID, versionID, userID string, notes *string) (*domain.TransitionResult, error)

func (h *budgetHandler) associationDecision(c *gin.Context, decide associationDecisionFunc, failure string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("budgetID")

	var req dto.AssociationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for association decision", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("budget_id", budgetID))
	res, err := decide(c.Request.Context(), budgetID, req.VersionID, userID, req.Notes)
	if err != nil {
		respondError(c, logger, err, failure)
		return
	}
	logger.Info("Association decision applied", slog.String("action", string(res.StateChange.Action)))
	c.JSON(http.StatusOK, toTransitionResponse(res))
}
