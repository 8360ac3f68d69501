package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table.
type Transaction struct {
	TransactionID     string          `json:"transactionID"`
	TeamID            string          `json:"teamID"`
	SeasonLabel       string          `json:"seasonLabel"`
	TransactionType   string          `json:"transactionType"` // INCOME or EXPENSE
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	CategoryID        *string         `json:"categoryID"`
	SystemCategoryID  *string         `json:"systemCategoryID"`
	Vendor            string          `json:"vendor"`
	Description       string          `json:"description"`
	TransactionDate   time.Time       `json:"transactionDate"`
	ReceiptURL        *string         `json:"receiptURL"`
	ExternalID        *string         `json:"externalID"`
	Pending           bool            `json:"pending"`
	Validation        []byte          `json:"validation"` // jsonb, nil when never validated
	ExceptionSeverity *string         `json:"exceptionSeverity"`
	ExceptionReason   *string         `json:"exceptionReason"`
	EnvelopeID        *string         `json:"envelopeID"`
	ApprovalReason    *string         `json:"approvalReason"`
	ResolvedAt        *time.Time      `json:"resolvedAt"`
	ResolvedBy        *string         `json:"resolvedBy"`
	DeletedAt         *time.Time      `json:"deletedAt"`
	AuditFields
}
