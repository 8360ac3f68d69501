package services

import (
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/team_finance_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/platform/config"
)

// Integrations are the optional outbound collaborators of the services.
type Integrations struct {
	Analytics portssvc.AnalyticsSink

	// Notifier builds the notifier once the team service exists. Nil disables notifications.
	Notifier func(team portssvc.TeamReaderSvc) portssvc.Notifier
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, integrations Integrations) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	shared := []Option{WithAnalytics(integrations.Analytics)}

	// Initialize team service first since every other service authorizes through it
	container.Team = NewTeamService(repos.TeamRepo, domain.TeamSettings{
		ReceiptThreshold:          cfg.DefaultReceiptThreshold,
		LargeTransactionThreshold: cfg.DefaultLargeTransactionThreshold,
		ApprovalThreshold:         cfg.DefaultApprovalThreshold,
	}, shared...)

	if integrations.Notifier != nil {
		if n := integrations.Notifier(container.Team); n != nil {
			shared = append(shared, WithNotifier(n))
		}
	}

	container.Matcher = NewEnvelopeMatcher(repos.BudgetRepo, repos.EnvelopeRepo, repos.TransactionRepo, shared...)
	container.Router = NewTransactionRouter(container.Matcher, shared...)

	container.TeamSeason = NewTeamSeasonService(repos.TeamSeasonRepo, repos.BudgetRepo, repos.AuditRepo, container.Team, shared...)
	container.Threshold = NewThresholdService(
		repos.TeamSeasonRepo,
		repos.BudgetRepo,
		repos.TransactionRepo,
		repos.TeamRepo,
		container.Team,
		container.TeamSeason,
		shared...,
	)
	container.Dispatcher = NewAutoTransitionDispatcher(container.Threshold, shared...)
	container.Association = NewAssociationApprovalService(repos.BudgetRepo, repos.TeamSeasonRepo, container.Team, container.TeamSeason, shared...)

	txDeps := TransactionDeps{
		TransactionRepo: repos.TransactionRepo,
		BudgetRepo:      repos.BudgetRepo,
		EnvelopeRepo:    repos.EnvelopeRepo,
		TeamSeasonRepo:  repos.TeamSeasonRepo,
		AuditRepo:       repos.AuditRepo,
		Team:            container.Team,
		Router:          container.Router,
		Dispatcher:      container.Dispatcher,
	}
	rules := TransactionRules{
		MaxAmount:               cfg.MaxTransactionAmount,
		DuplicateWindowDays:     cfg.DuplicateWindowDays,
		SuggestionMinConfidence: cfg.SuggestionMinConfidence,
		MinJustificationLength:  cfg.MinJustificationLength,
	}
	container.Transaction = NewTransactionService(txDeps, rules, shared...)
	container.Exception = NewExceptionService(txDeps, rules, shared...)

	container.Budget = NewBudgetService(BudgetDeps{
		BudgetRepo:     repos.BudgetRepo,
		TeamSeasonRepo: repos.TeamSeasonRepo,
		TeamRepo:       repos.TeamRepo,
		AuditRepo:      repos.AuditRepo,
		Team:           container.Team,
		Lifecycle:      container.TeamSeason,
		Threshold:      container.Threshold,
		Dispatcher:     container.Dispatcher,
	}, shared...)
	container.Envelope = NewEnvelopeService(repos.BudgetRepo, repos.EnvelopeRepo, repos.TransactionRepo, container.Team, shared...)

	return container
}
