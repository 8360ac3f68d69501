package mapping

import (
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/models"
)

// ToDomainTeam converts a model Team to a domain Team
func ToDomainTeam(m models.Team) domain.Team {
	return domain.Team{
		TeamID:        m.TeamID,
		Name:          m.Name,
		AssociationID: m.AssociationID,
		IsActive:      m.IsActive,
	}
}

// ToDomainTeamMember converts a model TeamMember to a domain TeamMember
func ToDomainTeamMember(m models.TeamMember) domain.TeamMember {
	return domain.TeamMember{
		UserID:   m.UserID,
		TeamID:   m.TeamID,
		Role:     domain.Role(m.Role),
		Email:    m.Email,
		JoinedAt: m.JoinedAt,
	}
}

// ToDomainAssociationMember converts a model AssociationMember to a domain AssociationMember
func ToDomainAssociationMember(m models.AssociationMember) domain.AssociationMember {
	return domain.AssociationMember{
		UserID:        m.UserID,
		AssociationID: m.AssociationID,
		Role:          domain.Role(m.Role),
	}
}

// ToDomainTeamSettings converts a model TeamSettings to a domain TeamSettings
func ToDomainTeamSettings(m models.TeamSettings) domain.TeamSettings {
	return domain.TeamSettings{
		TeamID:                    m.TeamID,
		ReceiptThreshold:          m.ReceiptThreshold,
		LargeTransactionThreshold: m.LargeTransactionThreshold,
		ApprovalThreshold:         m.ApprovalThreshold,
	}
}

// ToDomainGovernance converts a model AssociationGovernance to a domain AssociationGovernance
func ToDomainGovernance(m models.AssociationGovernance) domain.AssociationGovernance {
	rules := m.Rules
	if rules == nil {
		rules = []string{}
	}
	return domain.AssociationGovernance{
		AssociationID:                     m.AssociationID,
		RequiresAssociationBudgetApproval: m.RequiresAssociationBudgetApproval,
		DefaultThresholdMode:              domain.ThresholdMode(m.DefaultThresholdMode),
		DefaultPercentThreshold:           m.DefaultPercentThreshold,
		Rules:                             rules,
	}
}
