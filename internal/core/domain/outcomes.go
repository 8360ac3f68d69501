package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchOutcome is the result kind of envelope matching.
type MatchOutcome string

const (
	MatchMatched                MatchOutcome = "MATCHED"
	MatchNotExpense             MatchOutcome = "NOT_EXPENSE"
	MatchNoLockedBudget         MatchOutcome = "NO_LOCKED_BUDGET"
	MatchNoEnvelope             MatchOutcome = "NO_ENVELOPE"
	MatchNoMatchingEnvelope     MatchOutcome = "NO_MATCHING_ENVELOPE"
	MatchSingleTransactionLimit MatchOutcome = "SINGLE_TRANSACTION_LIMIT"
	MatchCapExceeded            MatchOutcome = "CAP_EXCEEDED"
)

// MatchResult is the decision of the envelope matcher for one transaction.
type MatchResult struct {
	Outcome    MatchOutcome     `json:"outcome"`
	EnvelopeID *string          `json:"envelopeID,omitempty"`
	Spent      *decimal.Decimal `json:"spent,omitempty"`
	Remaining  *decimal.Decimal `json:"remaining,omitempty"`
	Reason     string           `json:"reason"`
}

// AutoApproved reports whether the transaction fits a pre-authorized envelope.
func (r MatchResult) AutoApproved() bool {
	return r.Outcome == MatchMatched
}

// RouteDecision is how a new transaction is routed.
type RouteDecision string

const (
	RouteApprovedAutomatic RouteDecision = "APPROVED_AUTOMATIC"
	RoutePending           RouteDecision = "PENDING"
)

// RouteResult is the output of the transaction router.
type RouteResult struct {
	Decision   RouteDecision `json:"decision"`
	Reason     string        `json:"reason"`
	EnvelopeID *string       `json:"envelopeID,omitempty"`
	Match      *MatchResult  `json:"match,omitempty"`
}

// LockCheckResult reports an auto-lock evaluation.
type LockCheckResult struct {
	ThresholdMet  bool            `json:"thresholdMet"`
	Locked        bool            `json:"locked"`
	ApprovedCount int             `json:"approvedCount"`
	EligibleCount int             `json:"eligibleCount"`
	Percent       decimal.Decimal `json:"percent"`
	Reason        string          `json:"reason,omitempty"`
}

// TransitionInput carries the optional data some actions need.
type TransitionInput struct {
	VersionID     *string
	ChangeSummary *string
	Notes         *string
	Metadata      map[string]any
}

// TransitionResult reports an applied lifecycle transition.
type TransitionResult struct {
	TeamSeason  TeamSeason  `json:"teamSeason"`
	StateChange StateChange `json:"stateChange"`
}

// ResolutionType is how an exception is resolved.
type ResolutionType string

const (
	ResolutionOverride   ResolutionType = "OVERRIDE"
	ResolutionCorrect    ResolutionType = "CORRECT"
	ResolutionRevalidate ResolutionType = "REVALIDATE"
)

// ResolutionResult reports an exception resolution.
type ResolutionResult struct {
	Transaction      Transaction     `json:"transaction"`
	OverriddenCodes  []ViolationCode `json:"overriddenCodes,omitempty"`
	StillInException bool            `json:"stillInException"`
	ResolvedAt       time.Time       `json:"resolvedAt"`
}
