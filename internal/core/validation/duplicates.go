package validation

import (
	"fmt"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
)

// DefaultDuplicateWindowDays is used when the context does not set a window.
const DefaultDuplicateWindowDays = 3

// FindDuplicate returns the first candidate that looks like the same real-world
// transaction: same external id, or same amount and vendor within windowDays.
func FindDuplicate(tx domain.Transaction, candidates []domain.Transaction, windowDays int) *domain.Transaction {
	if windowDays <= 0 {
		windowDays = DefaultDuplicateWindowDays
	}
	window := time.Duration(windowDays) * 24 * time.Hour
	vendor := tx.NormalizedVendor()
	day := domain.DayOf(tx.TransactionDate)

	for i := range candidates {
		cand := candidates[i]
		if cand.TransactionID == tx.TransactionID || cand.IsDeleted() {
			continue
		}
		if tx.ExternalID != nil && cand.ExternalID != nil && *tx.ExternalID == *cand.ExternalID {
			return &candidates[i]
		}
		if !cand.Amount.Equal(tx.Amount) || cand.NormalizedVendor() != vendor || vendor == "" {
			continue
		}
		diff := domain.DayOf(cand.TransactionDate).Sub(day)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			return &candidates[i]
		}
	}
	return nil
}

func checkDuplicates(c Context, res *domain.ValidationResult) {
	if c.DuplicateCandidates == nil {
		return
	}
	res.ChecksRun.Duplicates = true
	dup := FindDuplicate(c.Transaction, c.DuplicateCandidates, c.DuplicateWindowDays)
	if dup == nil {
		return
	}
	res.Violations = append(res.Violations, domain.Violation{
		Code:     domain.CodePotentialDuplicate,
		Severity: domain.SeverityWarning,
		Message:  fmt.Sprintf("Possible duplicate of transaction %s", dup.TransactionID),
		Metadata: domain.ViolationMetadata{
			Amount:        dec(dup.Amount),
			Vendor:        str(dup.Vendor),
			DuplicateOfID: str(dup.TransactionID),
		},
	})
}
