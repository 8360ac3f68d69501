package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// teamSeasonHandler exposes the team season lifecycle.
type teamSeasonHandler struct {
	teamSeasonService portssvc.TeamSeasonSvcFacade
}

func registerTeamSeasonRoutes(rg *gin.RouterGroup, tss portssvc.TeamSeasonSvcFacade) {
	h := &teamSeasonHandler{teamSeasonService: tss}

	seasons := rg.Group("/team-seasons/:teamSeasonID")
	{
		seasons.GET("", h.getTeamSeason)
		seasons.GET("/history", h.listStateChanges)
		seasons.GET("/actions", h.availableActions)
		seasons.POST("/transitions", h.transition)
	}
}

func toTransitionResponse(res *domain.TransitionResult) dto.TransitionResponse {
	return dto.TransitionResponse{
		FromState:  string(res.StateChange.FromState),
		ToState:    string(res.StateChange.ToState),
		Action:     string(res.StateChange.Action),
		TeamSeason: dto.ToTeamSeasonResponse(&res.TeamSeason),
	}
}

// getTeamSeason godoc
// @Summary Get a team season
// @Tags team-seasons
// @Produce  json
// @Param   teamSeasonID path string true "Team season ID"
// @Success 200 {object} dto.TeamSeasonResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Team season not found"
// @Failure 500 {object} map[string]string "Failed to retrieve team season"
// @Security BearerAuth
// @Router /team-seasons/{teamSeasonID} [get]
func (h *teamSeasonHandler) getTeamSeason(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamSeasonID := c.Param("teamSeasonID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ts, err := h.teamSeasonService.GetTeamSeason(c.Request.Context(), teamSeasonID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve team season")
		return
	}
	c.JSON(http.StatusOK, dto.ToTeamSeasonResponse(ts))
}

// listStateChanges godoc
// @Summary Team season history
// @Description Lists every lifecycle transition, oldest first.
// @Tags team-seasons
// @Produce  json
// @Param   teamSeasonID path string true "Team season ID"
// @Success 200 {array} dto.StateChangeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Team season not found"
// @Failure 500 {object} map[string]string "Failed to list history"
// @Security BearerAuth
// @Router /team-seasons/{teamSeasonID}/history [get]
func (h *teamSeasonHandler) listStateChanges(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamSeasonID := c.Param("teamSeasonID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	changes, err := h.teamSeasonService.ListStateChanges(c.Request.Context(), teamSeasonID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, dto.ToStateChangeResponses(changes))
}

// availableActions godoc
// @Summary Actions available to the caller
// @Tags team-seasons
// @Produce  json
// @Param   teamSeasonID path string true "Team season ID"
// @Success 200 {object} dto.AvailableActionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Team season not found"
// @Failure 500 {object} map[string]string "Failed to list actions"
// @Security BearerAuth
// @Router /team-seasons/{teamSeasonID}/actions [get]
func (h *teamSeasonHandler) availableActions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamSeasonID := c.Param("teamSeasonID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ts, role, actions, err := h.teamSeasonService.AvailableActions(c.Request.Context(), teamSeasonID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list actions")
		return
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	c.JSON(http.StatusOK, dto.AvailableActionsResponse{State: string(ts.State), Role: string(role), Actions: names})
}

// transition godoc
// @Summary Fire a lifecycle action
// @Description Applies a named action to the team season when the caller's role allows it.
// @Tags team-seasons
// @Accept  json
// @Produce  json
// @Param   teamSeasonID path string true "Team season ID"
// @Param   transition body dto.TransitionRequest true "Action"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Team season not found"
// @Failure 409 {object} map[string]string "Action not allowed from the current state"
// @Failure 500 {object} map[string]string "Failed to apply transition"
// @Security BearerAuth
// @Router /team-seasons/{teamSeasonID}/transitions [post]
func (h *teamSeasonHandler) transition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	teamSeasonID := c.Param("teamSeasonID")

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("team_season_id", teamSeasonID), slog.String("action", req.Action))
	res, err := h.teamSeasonService.TransitionAsUser(c.Request.Context(), teamSeasonID, domain.TeamSeasonAction(req.Action), userID, domain.TransitionInput{
		VersionID:     req.VersionID,
		ChangeSummary: req.ChangeSummary,
		Notes:         req.Notes,
		Metadata:      req.Metadata,
	})
	if err != nil {
		respondError(c, logger, err, "Failed to apply transition")
		return
	}
	logger.Info("Team season transitioned", slog.String("to_state", string(res.StateChange.ToState)))
	c.JSON(http.StatusOK, toTransitionResponse(res))
}
