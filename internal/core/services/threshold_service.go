package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
)

// thresholdService fires the automatic LOCK_BUDGET and START_SEASON transitions.
type thresholdService struct {
	BaseService
	teamSeasonRepo portsrepo.TeamSeasonRepositoryFacade
	budgetRepo     portsrepo.BudgetRepositoryFacade
	txReader       portsrepo.TransactionReader
	teamRepo       portsrepo.TeamReader
	team           portssvc.TeamReaderSvc
	lifecycle      portssvc.TeamSeasonTransitionSvc
}

// NewThresholdService creates the auto-transition calculator.
func NewThresholdService(
	teamSeasonRepo portsrepo.TeamSeasonRepositoryFacade,
	budgetRepo portsrepo.BudgetRepositoryFacade,
	txReader portsrepo.TransactionReader,
	teamRepo portsrepo.TeamReader,
	team portssvc.TeamReaderSvc,
	lifecycle portssvc.TeamSeasonTransitionSvc,
	opts ...Option,
) portssvc.ThresholdSvc {
	svc := &thresholdService{
		teamSeasonRepo: teamSeasonRepo,
		budgetRepo:     budgetRepo,
		txReader:       txReader,
		teamRepo:       teamRepo,
		team:           team,
		lifecycle:      lifecycle,
	}
	svc.apply(opts)
	return svc
}

var _ portssvc.ThresholdSvc = (*thresholdService)(nil)

// thresholdConfig loads the stored quorum or derives one from governance.
func (s *thresholdService) thresholdConfig(ctx context.Context, ts *domain.TeamSeason) (*domain.BudgetThresholdConfig, error) {
	budget, err := s.budgetRepo.FindBudgetByTeamSeason(ctx, ts.TeamID, ts.SeasonLabel)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: Budget not found", apperrors.ErrNotFound)
		}
		return nil, err
	}
	cfg, err := s.budgetRepo.FindThresholdConfig(ctx, budget.BudgetID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to load threshold config", slog.String("budget_id", budget.BudgetID))
		return nil, err
	}
	gov, err := s.team.Governance(ctx, ts.AssociationID)
	if err != nil {
		return nil, err
	}
	def := gov.DefaultThresholdConfig(budget.BudgetID, ts.EligibleFamiliesCount)
	return &def, nil
}

func (s *thresholdService) CheckAndLockBudget(ctx context.Context, teamSeasonID, versionID string) (*domain.LockCheckResult, error) {
	ts, err := s.teamSeasonRepo.FindTeamSeasonByID(ctx, teamSeasonID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("team season " + teamSeasonID)
		}
		s.LogError(ctx, err, "Failed to load team season for lock check", slog.String("team_season_id", teamSeasonID))
		return nil, err
	}

	if ts.State != domain.StatePresented {
		return &domain.LockCheckResult{
			Reason: fmt.Sprintf("Team season must be PRESENTED to lock (current: %s)", ts.State),
		}, nil
	}
	if ts.PresentedVersionID == nil || *ts.PresentedVersionID != versionID {
		return &domain.LockCheckResult{Reason: "Approval is not for the presented version"}, nil
	}

	cfg, err := s.thresholdConfig(ctx, ts)
	if err != nil {
		return nil, err
	}

	approved, err := s.budgetRepo.CountApprovals(ctx, versionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count approvals", slog.String("version_id", versionID))
		return nil, err
	}
	eligible := cfg.EligibleCount(ts.EligibleFamiliesCount)

	res := &domain.LockCheckResult{
		ThresholdMet:  cfg.IsMet(approved, eligible),
		ApprovedCount: approved,
		EligibleCount: eligible,
		Percent:       domain.ApprovalPercent(approved, eligible).Round(2),
	}
	if !res.ThresholdMet {
		res.Reason = "Approval threshold not met"
		s.LogDebug(ctx, "Approval threshold not met",
			slog.String("team_season_id", teamSeasonID),
			slog.Int("approved", approved),
			slog.Int("eligible", eligible))
		return res, nil
	}

	_, err = s.lifecycle.Transition(ctx, teamSeasonID, domain.ActionLockBudget, domain.SystemActor(), domain.TransitionInput{
		VersionID: &versionID,
		Metadata: map[string]any{
			"lockedVersionId": versionID,
			"approvedCount":   approved,
			"eligibleCount":   eligible,
			"autoLocked":      true,
		},
	})
	if errors.Is(err, apperrors.ErrInvalidState) {
		// another acknowledgement locked it first
		res.Reason = "Budget is already locked"
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	res.Locked = true
	s.LogInfo(ctx, "Budget auto-locked",
		slog.String("team_season_id", teamSeasonID),
		slog.String("version_id", versionID))
	return res, nil
}

func (s *thresholdService) AutoActivateOnFirstTransaction(ctx context.Context, teamID, seasonLabel string) (bool, error) {
	ts, err := s.teamSeasonRepo.FindTeamSeasonByTeamAndLabel(ctx, teamID, seasonLabel)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to load team season for activation",
			slog.String("team_id", teamID),
			slog.String("season_label", seasonLabel))
		return false, err
	}
	if ts.State != domain.StateLocked {
		return false, nil
	}

	// Only the first transaction of the season activates it. This must run
	// right after that transaction is stored, not in a later batch.
	count, err := s.txReader.CountTransactionsInWindow(ctx, teamID, ts.SeasonStart, ts.SeasonEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to count season transactions", slog.String("team_id", teamID))
		return false, err
	}
	if count > 1 {
		return false, nil
	}

	_, err = s.lifecycle.Transition(ctx, ts.TeamSeasonID, domain.ActionStartSeason, domain.SystemActor(), domain.TransitionInput{
		Metadata: map[string]any{
			"autoActivated":           true,
			"firstTransactionCreated": true,
		},
	})
	if errors.Is(err, apperrors.ErrInvalidState) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *thresholdService) RefreshRollup(ctx context.Context, teamSeasonID string) (*domain.TeamSeason, error) {
	ts, err := s.teamSeasonRepo.FindTeamSeasonByID(ctx, teamSeasonID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("team season " + teamSeasonID)
		}
		return nil, err
	}

	eligible, err := s.teamRepo.CountEligibleFamilies(ctx, ts.TeamID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count eligible families", slog.String("team_id", ts.TeamID))
		return nil, err
	}

	approvals := 0
	if ts.PresentedVersionID != nil {
		approvals, err = s.budgetRepo.CountApprovals(ctx, *ts.PresentedVersionID)
		if err != nil {
			return nil, err
		}
	}

	latestTx, err := s.txReader.LatestTransactionDate(ctx, ts.TeamID, ts.SeasonStart, ts.SeasonEnd)
	if err != nil {
		return nil, err
	}
	latestChange, err := s.teamSeasonRepo.LatestStateChangeAt(ctx, ts.TeamSeasonID)
	if err != nil {
		return nil, err
	}
	lastActivity := latest(latestTx, latestChange)

	if err := s.teamSeasonRepo.UpdateRollup(ctx, ts.TeamSeasonID, eligible, approvals, lastActivity); err != nil {
		s.LogError(ctx, err, "Failed to update rollup", slog.String("team_season_id", ts.TeamSeasonID))
		return nil, err
	}

	ts.EligibleFamiliesCount = eligible
	ts.ApprovalsCountForPresentedVersion = approvals
	ts.LastActivityAt = lastActivity
	return ts, nil
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	}
	return a
}

// autoTransitionDispatcher is the single place external events turn into
// automatic lifecycle transitions.
type autoTransitionDispatcher struct {
	BaseService
	threshold portssvc.ThresholdSvc
}

// NewAutoTransitionDispatcher creates the event dispatcher.
func NewAutoTransitionDispatcher(threshold portssvc.ThresholdSvc, opts ...Option) portssvc.AutoTransitionDispatcher {
	d := &autoTransitionDispatcher{threshold: threshold}
	d.apply(opts)
	return d
}

var _ portssvc.AutoTransitionDispatcher = (*autoTransitionDispatcher)(nil)

func (d *autoTransitionDispatcher) Dispatch(ctx context.Context, ev domain.Event) error {
	action, ok := domain.CandidateTransition(ev.Kind)
	if !ok {
		return fmt.Errorf("%w: unknown event kind %s", apperrors.ErrValidation, ev.Kind)
	}
	d.LogDebug(ctx, "Dispatching event",
		slog.String("event", string(ev.Kind)),
		slog.String("candidate_action", string(action)))

	switch ev.Kind {
	case domain.EventParentApprovalRecorded:
		_, err := d.threshold.CheckAndLockBudget(ctx, ev.TeamSeasonID, ev.VersionID)
		return err
	case domain.EventTransactionCreated:
		_, err := d.threshold.AutoActivateOnFirstTransaction(ctx, ev.TeamID, ev.SeasonLabel)
		return err
	}
	return nil
}
