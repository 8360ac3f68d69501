package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle status of a transaction.
type TransactionStatus string

const (
	StatusImported  TransactionStatus = "IMPORTED"
	StatusValidated TransactionStatus = "VALIDATED"
	StatusException TransactionStatus = "EXCEPTION"
	StatusResolved  TransactionStatus = "RESOLVED"
	StatusLocked    TransactionStatus = "LOCKED"
)

// Legacy statuses still found in older rows and API clients.
const (
	LegacyStatusDraft             TransactionStatus = "DRAFT"
	LegacyStatusPending           TransactionStatus = "PENDING"
	LegacyStatusApproved          TransactionStatus = "APPROVED"
	LegacyStatusApprovedAutomatic TransactionStatus = "APPROVED_AUTOMATIC"
	LegacyStatusRejected          TransactionStatus = "REJECTED"
)

var legacyStatusMap = map[TransactionStatus]TransactionStatus{
	LegacyStatusDraft:             StatusImported,
	LegacyStatusPending:           StatusException,
	LegacyStatusApproved:          StatusResolved,
	LegacyStatusApprovedAutomatic: StatusValidated,
	LegacyStatusRejected:          StatusException,
}

// NormalizeStatus maps a legacy or mixed-case status onto the canonical set.
// Unknown values are returned upper-cased and unchanged.
func NormalizeStatus(s TransactionStatus) TransactionStatus {
	up := TransactionStatus(strings.ToUpper(strings.TrimSpace(string(s))))
	if mapped, ok := legacyStatusMap[up]; ok {
		return mapped
	}
	return up
}

// StoredForms returns s together with every legacy status that normalizes to it.
func (s TransactionStatus) StoredForms() []string {
	forms := []string{string(s)}
	for legacy, canonical := range legacyStatusMap {
		if canonical == s {
			forms = append(forms, string(legacy))
		}
	}
	sort.Strings(forms[1:])
	return forms
}

// IsCanonical reports whether s is one of the five canonical statuses.
func (s TransactionStatus) IsCanonical() bool {
	switch s {
	case StatusImported, StatusValidated, StatusException, StatusResolved, StatusLocked:
		return true
	}
	return false
}

var statusTransitions = map[TransactionStatus][]TransactionStatus{
	StatusImported:  {StatusValidated, StatusException},
	StatusValidated: {StatusException, StatusLocked},
	StatusException: {StatusResolved, StatusValidated},
	StatusResolved:  {StatusLocked, StatusException},
	StatusLocked:    {},
}

// CanTransitionStatus reports whether a transaction may move from one status to another.
func CanTransitionStatus(from, to TransactionStatus) bool {
	for _, allowed := range statusTransitions[NormalizeStatus(from)] {
		if allowed == NormalizeStatus(to) {
			return true
		}
	}
	return false
}

// IsEditable reports whether transaction fields may still be changed in this status.
func IsEditable(s TransactionStatus) bool {
	switch NormalizeStatus(s) {
	case StatusImported, StatusException:
		return true
	}
	return false
}

// CountsTowardSpend reports whether a transaction in this status consumes envelope cap.
// These are the canonical forms of APPROVED and APPROVED_AUTOMATIC.
func CountsTowardSpend(s TransactionStatus) bool {
	switch NormalizeStatus(s) {
	case StatusValidated, StatusResolved, StatusLocked:
		return true
	}
	return false
}

// ExceptionSeverity ranks how urgently an exception needs attention.
type ExceptionSeverity string

const (
	ExceptionLow      ExceptionSeverity = "LOW"
	ExceptionMedium   ExceptionSeverity = "MEDIUM"
	ExceptionHigh     ExceptionSeverity = "HIGH"
	ExceptionCritical ExceptionSeverity = "CRITICAL"
)

var highValueException = decimal.NewFromInt(500)

// ExceptionSeverityFor ranks a non-compliant validation result.
func ExceptionSeverityFor(result ValidationResult, amount decimal.Decimal) ExceptionSeverity {
	var critical, errs int
	for _, v := range result.Violations {
		switch v.Severity {
		case SeverityCritical:
			critical++
		case SeverityError:
			errs++
		}
	}
	switch {
	case critical > 0:
		return ExceptionCritical
	case errs > 2:
		return ExceptionHigh
	case errs > 0 && amount.GreaterThanOrEqual(highValueException):
		return ExceptionHigh
	case errs > 0:
		return ExceptionMedium
	}
	return ExceptionLow
}

// IsHigh reports whether the severity is HIGH or CRITICAL.
func (s ExceptionSeverity) IsHigh() bool {
	return s == ExceptionHigh || s == ExceptionCritical
}
