package domain_test

import (
	"testing"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func stringPtr(s string) *string { return &s }

func TestBudgetThresholdConfig_IsMet(t *testing.T) {
	percent75 := domain.BudgetThresholdConfig{Mode: domain.ThresholdPercent, PercentThreshold: decimalPtr(decimal.NewFromInt(75))}
	count3 := domain.BudgetThresholdConfig{Mode: domain.ThresholdCount, CountThreshold: intPtr(3)}

	tests := []struct {
		name     string
		cfg      domain.BudgetThresholdConfig
		approved int
		eligible int
		want     bool
	}{
		{"percent exactly at threshold", percent75, 6, 8, true},
		{"percent below threshold", percent75, 5, 8, false},
		{"percent with no eligible families", percent75, 3, 0, false},
		{"count reached", count3, 3, 10, true},
		{"count not reached", count3, 2, 10, false},
		{"count ignores eligible", count3, 3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.IsMet(tt.approved, tt.eligible))
		})
	}
}

func TestApprovalPercent(t *testing.T) {
	assert.True(t, domain.ApprovalPercent(6, 8).Equal(decimal.NewFromInt(75)))
	assert.True(t, domain.ApprovalPercent(5, 8).Equal(decimal.RequireFromString("62.5")))
	assert.True(t, domain.ApprovalPercent(1, 0).IsZero())
}

func TestBudgetThresholdConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.BudgetThresholdConfig
		wantErr bool
	}{
		{"valid count", domain.BudgetThresholdConfig{Mode: domain.ThresholdCount, CountThreshold: intPtr(5)}, false},
		{"valid percent", domain.BudgetThresholdConfig{Mode: domain.ThresholdPercent, PercentThreshold: decimalPtr(decimal.NewFromInt(80))}, false},
		{"count missing", domain.BudgetThresholdConfig{Mode: domain.ThresholdCount}, true},
		{"both set in count mode", domain.BudgetThresholdConfig{Mode: domain.ThresholdCount, CountThreshold: intPtr(5), PercentThreshold: decimalPtr(decimal.NewFromInt(80))}, true},
		{"percent above 100", domain.BudgetThresholdConfig{Mode: domain.ThresholdPercent, PercentThreshold: decimalPtr(decimal.NewFromInt(120))}, true},
		{"unknown mode", domain.BudgetThresholdConfig{Mode: "MAJORITY"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultGovernance(t *testing.T) {
	g := domain.DefaultGovernance("assoc-1")
	assert.False(t, g.RequiresAssociationBudgetApproval)
	cfg := g.DefaultThresholdConfig("budget-1", 12)
	assert.Equal(t, domain.ThresholdPercent, cfg.Mode)
	assert.True(t, cfg.PercentThreshold.Equal(decimal.NewFromInt(80)))
	assert.NoError(t, cfg.Validate())
}
