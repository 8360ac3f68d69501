package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetDeps groups the collaborators of the budget service.
type BudgetDeps struct {
	BudgetRepo     portsrepo.BudgetRepositoryFacade
	TeamSeasonRepo portsrepo.TeamSeasonRepositoryFacade
	TeamRepo       portsrepo.TeamReader
	AuditRepo      portsrepo.AuditRepository
	Team           portssvc.TeamSvcFacade
	Lifecycle      portssvc.TeamSeasonTransitionSvc
	Threshold      portssvc.ThresholdSvc
	Dispatcher     portssvc.AutoTransitionDispatcher
}

// budgetService implements the BudgetSvcFacade interface
type budgetService struct {
	BaseService
	deps  BudgetDeps
	audit *auditLogger
}

// NewBudgetService creates the budget service.
func NewBudgetService(deps BudgetDeps, opts ...Option) portssvc.BudgetSvcFacade {
	svc := &budgetService{deps: deps, audit: newAuditLogger(deps.AuditRepo)}
	svc.TeamAuthorizer = deps.Team
	svc.apply(opts)
	svc.audit.Clock = svc.Clock
	return svc
}

// Ensure budgetService implements the BudgetSvcFacade interface
var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

func (s *budgetService) findBudget(ctx context.Context, budgetID string) (*domain.Budget, error) {
	budget, err := s.deps.BudgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("budget " + budgetID)
		}
		s.LogError(ctx, err, "Failed to find budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) CreateBudget(ctx context.Context, teamID string, req dto.CreateBudgetRequest, userID string) (*domain.Budget, error) {
	member, err := s.AuthorizeTeam(ctx, userID, teamID, domain.RoleTreasurer, domain.RoleAssistantTreasurer)
	if err != nil {
		return nil, err
	}
	label := strings.TrimSpace(req.SeasonLabel)

	if _, err := s.deps.BudgetRepo.FindBudgetByTeamSeason(ctx, teamID, label); err == nil {
		return nil, fmt.Errorf("%w: team already has a budget for season %s", apperrors.ErrDuplicate, label)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up budget", slog.String("team_id", teamID))
		return nil, err
	}

	now := s.Now()
	ts, err := s.deps.TeamSeasonRepo.FindTeamSeasonByTeamAndLabel(ctx, teamID, label)
	if errors.Is(err, apperrors.ErrNotFound) {
		ts, err = s.openTeamSeason(ctx, teamID, label, req, userID)
	}
	if err != nil {
		return nil, err
	}

	budget := domain.Budget{
		BudgetID:    uuid.NewString(),
		TeamID:      teamID,
		SeasonLabel: label,
		Status:      domain.BudgetStatusFor(ts.State),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.deps.BudgetRepo.SaveBudget(ctx, budget); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save budget", slog.String("team_id", teamID))
		}
		return nil, err
	}

	if ts.State == domain.StateSetup {
		res, err := s.deps.Lifecycle.Transition(ctx, ts.TeamSeasonID, domain.ActionStartBudget,
			domain.UserActor(userID, member.Role), domain.TransitionInput{
				Metadata: map[string]any{"budgetId": budget.BudgetID},
			})
		if err != nil {
			return nil, err
		}
		budget.Status = domain.BudgetStatusFor(res.TeamSeason.State)
	}

	s.LogInfo(ctx, "Budget created",
		slog.String("budget_id", budget.BudgetID),
		slog.String("team_id", teamID),
		slog.String("season_label", label))
	return &budget, nil
}

func (s *budgetService) openTeamSeason(ctx context.Context, teamID, label string, req dto.CreateBudgetRequest, userID string) (*domain.TeamSeason, error) {
	team, err := s.deps.Team.FindTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("team " + teamID)
		}
		return nil, err
	}
	eligible, err := s.deps.TeamRepo.CountEligibleFamilies(ctx, teamID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count eligible families", slog.String("team_id", teamID))
		return nil, err
	}

	now := s.Now()
	ts := domain.TeamSeason{
		TeamSeasonID:          uuid.NewString(),
		TeamID:                teamID,
		AssociationID:         team.AssociationID,
		SeasonLabel:           label,
		SeasonStart:           domain.DayOf(req.SeasonStart),
		SeasonEnd:             domain.DayOf(req.SeasonEnd),
		State:                 domain.StateSetup,
		StateUpdatedAt:        now,
		EligibleFamiliesCount: eligible,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.deps.TeamSeasonRepo.SaveTeamSeason(ctx, ts); err != nil {
		s.LogError(ctx, err, "Failed to save team season", slog.String("team_id", teamID))
		return nil, err
	}
	return &ts, nil
}

func (s *budgetService) GetBudget(ctx context.Context, budgetID, userID string) (*domain.Budget, *domain.BudgetVersion, error) {
	budget, err := s.findBudget(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, budget.TeamID); err != nil {
		return nil, nil, err
	}
	if budget.CurrentVersionID == nil {
		return budget, nil, nil
	}
	version, err := s.deps.BudgetRepo.FindVersionByID(ctx, *budget.CurrentVersionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return budget, nil, nil
		}
		s.LogError(ctx, err, "Failed to load current version", slog.String("budget_id", budgetID))
		return nil, nil, err
	}
	return budget, version, nil
}

func (s *budgetService) CreateVersion(ctx context.Context, budgetID string, req dto.CreateBudgetVersionRequest, userID string) (*domain.BudgetVersion, error) {
	budget, err := s.findBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, budget.TeamID, domain.RoleTreasurer, domain.RoleAssistantTreasurer); err != nil {
		return nil, err
	}
	if budget.Status != domain.BudgetDraft && budget.Status != domain.BudgetReview {
		return nil, fmt.Errorf("%w: versions can only be added while drafting or reviewing (current: %s)", apperrors.ErrInvalidState, budget.Status)
	}

	latest, err := s.deps.BudgetRepo.LatestVersionNumber(ctx, budgetID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read latest version number", slog.String("budget_id", budgetID))
		return nil, err
	}

	allocations := make([]domain.Allocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = domain.Allocation{CategoryID: a.CategoryID, Allocated: a.Allocated}
	}
	version := domain.BudgetVersion{
		VersionID:     uuid.NewString(),
		BudgetID:      budgetID,
		VersionNumber: latest + 1,
		TotalBudget:   req.TotalBudget,
		Allocations:   allocations,
		ChangeSummary: req.ChangeSummary,
		CreatedAt:     s.Now(),
		CreatedBy:     userID,
	}
	if err := version.ValidateAllocations(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.deps.BudgetRepo.SaveVersion(ctx, version); err != nil {
		s.LogError(ctx, err, "Failed to save budget version", slog.String("budget_id", budgetID))
		return nil, err
	}
	s.LogInfo(ctx, "Budget version created",
		slog.String("budget_id", budgetID),
		slog.Int("version_number", version.VersionNumber))
	return &version, nil
}

func (s *budgetService) UpsertThresholdConfig(ctx context.Context, budgetID string, req dto.UpsertThresholdRequest, userID string) (*domain.BudgetThresholdConfig, error) {
	budget, err := s.findBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, budget.TeamID, domain.RoleTreasurer, domain.RoleAssistantTreasurer); err != nil {
		return nil, err
	}

	eligible := 0
	if req.EligibleFamilyCount != nil {
		eligible = *req.EligibleFamilyCount
	} else {
		eligible, err = s.deps.TeamRepo.CountEligibleFamilies(ctx, budget.TeamID)
		if err != nil {
			s.LogError(ctx, err, "Failed to count eligible families", slog.String("team_id", budget.TeamID))
			return nil, err
		}
	}

	now := s.Now()
	cfg := domain.BudgetThresholdConfig{
		BudgetID:            budgetID,
		Mode:                domain.ThresholdMode(req.Mode),
		CountThreshold:      req.CountThreshold,
		PercentThreshold:    req.PercentThreshold,
		EligibleFamilyCount: eligible,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.deps.BudgetRepo.UpsertThresholdConfig(ctx, cfg); err != nil {
		s.LogError(ctx, err, "Failed to store threshold config", slog.String("budget_id", budgetID))
		return nil, err
	}
	return &cfg, nil
}

// seasonFor loads the team season a budget belongs to.
func (s *budgetService) seasonFor(ctx context.Context, budget *domain.Budget) (*domain.TeamSeason, error) {
	ts, err := s.deps.TeamSeasonRepo.FindTeamSeasonByTeamAndLabel(ctx, budget.TeamID, budget.SeasonLabel)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("team season for budget " + budget.BudgetID)
		}
		s.LogError(ctx, err, "Failed to load team season", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}
	return ts, nil
}

func (s *budgetService) ApprovalProgress(ctx context.Context, budgetID, userID string) (*dto.ApprovalProgressResponse, error) {
	budget, err := s.findBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, budget.TeamID); err != nil {
		return nil, err
	}
	ts, err := s.seasonFor(ctx, budget)
	if err != nil {
		return nil, err
	}
	return s.progress(ctx, budgetID, ts)
}

func (s *budgetService) progress(ctx context.Context, budgetID string, ts *domain.TeamSeason) (*dto.ApprovalProgressResponse, error) {
	cfg, err := s.deps.BudgetRepo.FindThresholdConfig(ctx, budgetID)
	if errors.Is(err, apperrors.ErrNotFound) {
		gov, gerr := s.deps.Team.Governance(ctx, ts.AssociationID)
		if gerr != nil {
			return nil, gerr
		}
		def := gov.DefaultThresholdConfig(budgetID, ts.EligibleFamiliesCount)
		cfg, err = &def, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load threshold config", slog.String("budget_id", budgetID))
		return nil, err
	}

	resp := &dto.ApprovalProgressResponse{
		BudgetID:           budgetID,
		PresentedVersionID: ts.PresentedVersionID,
		Mode:               string(cfg.Mode),
		EligibleCount:      cfg.EligibleCount(ts.EligibleFamiliesCount),
		Percent:            decimal.Zero,
	}
	if ts.PresentedVersionID == nil {
		return resp, nil
	}

	approved, err := s.deps.BudgetRepo.CountApprovals(ctx, *ts.PresentedVersionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count approvals", slog.String("budget_id", budgetID))
		return nil, err
	}
	resp.ApprovedCount = approved
	resp.Percent = domain.ApprovalPercent(approved, resp.EligibleCount).Round(2)
	resp.ThresholdMet = cfg.IsMet(approved, resp.EligibleCount)
	return resp, nil
}

// RecordParentApproval stores the caller's family acknowledgement. A family is
// a PARENT member of the team, so only parents may acknowledge and only for
// themselves.
func (s *budgetService) RecordParentApproval(ctx context.Context, budgetID, versionID string, req dto.RecordApprovalRequest, userID string) (*dto.RecordApprovalResponse, error) {
	budget, err := s.findBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	member, err := s.AuthorizeTeam(ctx, userID, budget.TeamID, domain.RoleParent)
	if err != nil {
		return nil, err
	}
	if member.Role != domain.RoleParent {
		err := fmt.Errorf("%w: only parents can acknowledge a budget", apperrors.ErrForbidden)
		s.LogWarn(ctx, err, "Acknowledgement rejected", slog.String("role", string(member.Role)))
		return nil, err
	}
	familyID := userID
	if req.FamilyID != "" && req.FamilyID != familyID {
		err := fmt.Errorf("%w: acknowledgements can only be recorded for your own family", apperrors.ErrForbidden)
		s.LogWarn(ctx, err, "Acknowledgement rejected", slog.String("family_id", req.FamilyID))
		return nil, err
	}

	ts, err := s.seasonFor(ctx, budget)
	if err != nil {
		return nil, err
	}
	if ts.State != domain.StatePresented {
		return nil, fmt.Errorf("%w: budget is not presented for approval (current: %s)", apperrors.ErrInvalidState, ts.State)
	}
	if ts.PresentedVersionID == nil || *ts.PresentedVersionID != versionID {
		return nil, fmt.Errorf("%w: only the presented version can be approved", apperrors.ErrPreconditionFailed)
	}

	approval := domain.BudgetVersionApproval{
		ApprovalID: uuid.NewString(),
		VersionID:  versionID,
		FamilyID:   familyID,
		ApprovedBy: userID,
		ApprovedAt: s.Now(),
	}
	if err := s.deps.BudgetRepo.SaveApproval(ctx, approval); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: family %s already approved this version", apperrors.ErrDuplicate, familyID)
		}
		s.LogError(ctx, err, "Failed to save approval", slog.String("version_id", versionID))
		return nil, err
	}

	s.audit.record(ctx, domain.AuditEntry{
		TeamID:     budget.TeamID,
		Actor:      domain.UserActor(userID, member.Role),
		Action:     domain.AuditParentApproval,
		EntityType: "BudgetVersion",
		EntityID:   versionID,
		NewValues:  map[string]any{"familyId": familyID},
		Metadata:   map[string]any{"budgetId": budgetID},
	})

	if _, err := s.deps.Threshold.RefreshRollup(ctx, ts.TeamSeasonID); err != nil {
		s.LogError(ctx, err, "Failed to refresh team season rollup", slog.String("team_season_id", ts.TeamSeasonID))
	}

	resp := &dto.RecordApprovalResponse{ApprovalID: approval.ApprovalID}
	if err := s.deps.Dispatcher.Dispatch(ctx, domain.ParentApprovalRecorded(ts.TeamSeasonID, versionID)); err != nil {
		// the acknowledgement is stored; the lock is retried on the next one
		s.LogError(ctx, err, "Auto-lock check failed", slog.String("team_season_id", ts.TeamSeasonID))
	}

	current, err := s.deps.TeamSeasonRepo.FindTeamSeasonByID(ctx, ts.TeamSeasonID)
	if err != nil {
		s.LogError(ctx, err, "Failed to reload team season", slog.String("team_season_id", ts.TeamSeasonID))
		return resp, nil
	}
	resp.Locked = current.State == domain.StateLocked
	progress, err := s.progress(ctx, budgetID, current)
	if err != nil {
		return resp, nil
	}
	resp.ApprovedCount = progress.ApprovedCount
	resp.EligibleCount = progress.EligibleCount
	resp.ThresholdMet = progress.ThresholdMet || resp.Locked
	return resp, nil
}
