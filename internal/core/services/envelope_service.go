package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const envelopeSheet = "Envelopes"

// envelopeService implements the EnvelopeSvcFacade interface
type envelopeService struct {
	BaseService
	budgetRepo   portsrepo.BudgetReader
	envelopeRepo portsrepo.EnvelopeRepositoryFacade
	spendRepo    portsrepo.SpendReader
}

// NewEnvelopeService creates the envelope service.
func NewEnvelopeService(
	budgetRepo portsrepo.BudgetReader,
	envelopeRepo portsrepo.EnvelopeRepositoryFacade,
	spendRepo portsrepo.SpendReader,
	team portssvc.TeamAuthorizerSvc,
	opts ...Option,
) portssvc.EnvelopeSvcFacade {
	svc := &envelopeService{budgetRepo: budgetRepo, envelopeRepo: envelopeRepo, spendRepo: spendRepo}
	svc.TeamAuthorizer = team
	svc.apply(opts)
	return svc
}

var _ portssvc.EnvelopeSvcFacade = (*envelopeService)(nil)

func (s *envelopeService) budgetForUser(ctx context.Context, budgetID, userID string, roles ...domain.Role) (*domain.Budget, error) {
	budget, err := s.budgetRepo.FindBudgetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("budget " + budgetID)
		}
		s.LogError(ctx, err, "Failed to find budget", slog.String("budget_id", budgetID))
		return nil, err
	}
	if _, err := s.AuthorizeTeam(ctx, userID, budget.TeamID, roles...); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *envelopeService) envelopeForUser(ctx context.Context, envelopeID, userID string, roles ...domain.Role) (*domain.Envelope, error) {
	env, err := s.envelopeRepo.FindEnvelopeByID(ctx, envelopeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("envelope " + envelopeID)
		}
		s.LogError(ctx, err, "Failed to find envelope", slog.String("envelope_id", envelopeID))
		return nil, err
	}
	if _, err := s.budgetForUser(ctx, env.BudgetID, userID, roles...); err != nil {
		return nil, err
	}
	return env, nil
}

func (s *envelopeService) CreateEnvelope(ctx context.Context, budgetID string, req dto.CreateEnvelopeRequest, userID string) (*domain.Envelope, error) {
	if _, err := s.budgetForUser(ctx, budgetID, userID, domain.RoleTreasurer, domain.RoleAssistantTreasurer); err != nil {
		return nil, err
	}

	now := s.Now()
	env := domain.Envelope{
		EnvelopeID:           uuid.NewString(),
		BudgetID:             budgetID,
		CategoryID:           req.CategoryID,
		Name:                 strings.TrimSpace(req.Name),
		CapAmount:            req.CapAmount,
		PeriodType:           domain.PeriodType(req.PeriodType),
		VendorMatchType:      domain.VendorMatchType(req.VendorMatchType),
		VendorMatch:          req.VendorMatch,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		MaxSingleTransaction: req.MaxSingleTransaction,
		IsActive:             true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.envelopeRepo.SaveEnvelope(ctx, env); err != nil {
		s.LogError(ctx, err, "Failed to save envelope", slog.String("budget_id", budgetID))
		return nil, err
	}
	s.LogInfo(ctx, "Envelope created",
		slog.String("envelope_id", env.EnvelopeID),
		slog.String("category_id", env.CategoryID))
	return &env, nil
}

func (s *envelopeService) ListEnvelopes(ctx context.Context, budgetID, userID string) ([]domain.Envelope, error) {
	if _, err := s.budgetForUser(ctx, budgetID, userID); err != nil {
		return nil, err
	}
	envelopes, err := s.envelopeRepo.ListEnvelopesByBudget(ctx, budgetID, false)
	if err != nil {
		s.LogError(ctx, err, "Failed to list envelopes", slog.String("budget_id", budgetID))
		return nil, err
	}
	if envelopes == nil {
		envelopes = []domain.Envelope{}
	}
	return envelopes, nil
}

func (s *envelopeService) DeactivateEnvelope(ctx context.Context, envelopeID, userID string) error {
	env, err := s.envelopeForUser(ctx, envelopeID, userID, domain.RoleTreasurer, domain.RoleAssistantTreasurer)
	if err != nil {
		return err
	}
	if !env.IsActive {
		return nil
	}
	if err := s.envelopeRepo.DeactivateEnvelope(ctx, envelopeID, userID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate envelope", slog.String("envelope_id", envelopeID))
		return err
	}
	return nil
}

func (s *envelopeService) summarize(ctx context.Context, env domain.Envelope, asOf time.Time) (domain.EnvelopeSpendingSummary, error) {
	from, to := env.PeriodWindow(asOf)
	spent, count, err := s.spendRepo.SumEnvelopeSpend(ctx, env.EnvelopeID, from, to, "")
	if err != nil {
		s.LogError(ctx, err, "Failed to sum envelope spend", slog.String("envelope_id", env.EnvelopeID))
		return domain.EnvelopeSpendingSummary{}, err
	}
	return domain.NewEnvelopeSpendingSummary(env, spent, count), nil
}

func (s *envelopeService) SpendingSummary(ctx context.Context, envelopeID string, asOf time.Time, userID string) (*domain.EnvelopeSpendingSummary, error) {
	env, err := s.envelopeForUser(ctx, envelopeID, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, *env, asOf)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *envelopeService) ExportSpendingSummary(ctx context.Context, budgetID string, asOf time.Time, userID string, w io.Writer) error {
	if _, err := s.budgetForUser(ctx, budgetID, userID); err != nil {
		return err
	}
	envelopes, err := s.envelopeRepo.ListEnvelopesByBudget(ctx, budgetID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to list envelopes", slog.String("budget_id", budgetID))
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", envelopeSheet); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	headers := []string{"Envelope", "Category", "Period", "Cap", "Spent", "Remaining", "% Used", "Transactions"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(envelopeSheet, cell, h)
	}
	f.SetCellStyle(envelopeSheet, "A1", "H1", headerStyle)
	f.SetColWidth(envelopeSheet, "A", "A", 30)
	f.SetColWidth(envelopeSheet, "B", "C", 16)

	for i, env := range envelopes {
		summary, err := s.summarize(ctx, env, asOf)
		if err != nil {
			return err
		}
		row := i + 2
		f.SetCellValue(envelopeSheet, fmt.Sprintf("A%d", row), summary.Name)
		f.SetCellValue(envelopeSheet, fmt.Sprintf("B%d", row), summary.CategoryID)
		f.SetCellValue(envelopeSheet, fmt.Sprintf("C%d", row), env.PeriodLabel())
		f.SetCellValue(envelopeSheet, fmt.Sprintf("D%d", row), summary.Cap.InexactFloat64())
		f.SetCellValue(envelopeSheet, fmt.Sprintf("E%d", row), summary.Spent.InexactFloat64())
		f.SetCellValue(envelopeSheet, fmt.Sprintf("F%d", row), summary.Remaining.InexactFloat64())
		f.SetCellValue(envelopeSheet, fmt.Sprintf("G%d", row), summary.PercentUsed.InexactFloat64())
		f.SetCellValue(envelopeSheet, fmt.Sprintf("H%d", row), summary.TransactionCount)
	}

	if err := f.Write(w); err != nil {
		s.LogError(ctx, err, "Failed to write envelope export", slog.String("budget_id", budgetID))
		return err
	}
	return nil
}
