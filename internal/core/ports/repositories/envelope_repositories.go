package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// EnvelopeReader defines read operations for envelope data
type EnvelopeReader interface {
	FindEnvelopeByID(ctx context.Context, envelopeID string) (*domain.Envelope, error)

	// ListEnvelopesByBudget lists a budget's envelopes, oldest first.
	ListEnvelopesByBudget(ctx context.Context, budgetID string, activeOnly bool) ([]domain.Envelope, error)

	// ListActiveEnvelopesForCategory lists active envelopes of (budget, category), oldest first.
	ListActiveEnvelopesForCategory(ctx context.Context, budgetID, categoryID string) ([]domain.Envelope, error)
}

// EnvelopeWriter defines write operations for envelope data
type EnvelopeWriter interface {
	SaveEnvelope(ctx context.Context, envelope domain.Envelope) error
	DeactivateEnvelope(ctx context.Context, envelopeID, userID string, at time.Time) error
}

// EnvelopeRepositoryFacade combines all envelope-related repository interfaces
type EnvelopeRepositoryFacade interface {
	EnvelopeReader
	EnvelopeWriter
}
