package mapping

import (
	"fmt"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/models"
)

// ToModelTeamSeason converts a domain TeamSeason to a model TeamSeason
func ToModelTeamSeason(d domain.TeamSeason) models.TeamSeason {
	return models.TeamSeason{
		TeamSeasonID:                      d.TeamSeasonID,
		TeamID:                            d.TeamID,
		AssociationID:                     d.AssociationID,
		SeasonLabel:                       d.SeasonLabel,
		SeasonStart:                       d.SeasonStart,
		SeasonEnd:                         d.SeasonEnd,
		State:                             string(d.State),
		StateUpdatedAt:                    d.StateUpdatedAt,
		PresentedVersionID:                d.PresentedVersionID,
		LockedVersionID:                   d.LockedVersionID,
		ActiveAt:                          d.ActiveAt,
		ClosedAt:                          d.ClosedAt,
		ArchivedAt:                        d.ArchivedAt,
		EligibleFamiliesCount:             d.EligibleFamiliesCount,
		ApprovalsCountForPresentedVersion: d.ApprovalsCountForPresentedVersion,
		LastActivityAt:                    d.LastActivityAt,
		AuditFields:                       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTeamSeason converts a model TeamSeason to a domain TeamSeason
func ToDomainTeamSeason(m models.TeamSeason) domain.TeamSeason {
	return domain.TeamSeason{
		TeamSeasonID:                      m.TeamSeasonID,
		TeamID:                            m.TeamID,
		AssociationID:                     m.AssociationID,
		SeasonLabel:                       m.SeasonLabel,
		SeasonStart:                       m.SeasonStart,
		SeasonEnd:                         m.SeasonEnd,
		State:                             domain.TeamSeasonState(m.State),
		StateUpdatedAt:                    m.StateUpdatedAt,
		PresentedVersionID:                m.PresentedVersionID,
		LockedVersionID:                   m.LockedVersionID,
		ActiveAt:                          m.ActiveAt,
		ClosedAt:                          m.ClosedAt,
		ArchivedAt:                        m.ArchivedAt,
		EligibleFamiliesCount:             m.EligibleFamiliesCount,
		ApprovalsCountForPresentedVersion: m.ApprovalsCountForPresentedVersion,
		LastActivityAt:                    m.LastActivityAt,
		AuditFields:                       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStateChange converts a domain StateChange to a model StateChange
func ToModelStateChange(d domain.StateChange) (models.StateChange, error) {
	metadata, err := marshalMap(d.Metadata)
	if err != nil {
		return models.StateChange{}, fmt.Errorf("failed to encode metadata of state change %s: %w", d.StateChangeID, err)
	}
	return models.StateChange{
		StateChangeID: d.StateChangeID,
		TeamSeasonID:  d.TeamSeasonID,
		FromState:     string(d.FromState),
		ToState:       string(d.ToState),
		Action:        string(d.Action),
		ActorUserID:   d.ActorUserID,
		ActorType:     string(d.ActorType),
		Metadata:      metadata,
		CreatedAt:     d.CreatedAt,
	}, nil
}

// ToDomainStateChange converts a model StateChange to a domain StateChange
func ToDomainStateChange(m models.StateChange) (domain.StateChange, error) {
	metadata, err := unmarshalMap(m.Metadata)
	if err != nil {
		return domain.StateChange{}, fmt.Errorf("failed to decode metadata of state change %s: %w", m.StateChangeID, err)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return domain.StateChange{
		StateChangeID: m.StateChangeID,
		TeamSeasonID:  m.TeamSeasonID,
		FromState:     domain.TeamSeasonState(m.FromState),
		ToState:       domain.TeamSeasonState(m.ToState),
		Action:        domain.TeamSeasonAction(m.Action),
		ActorUserID:   m.ActorUserID,
		ActorType:     domain.ActorType(m.ActorType),
		Metadata:      metadata,
		CreatedAt:     m.CreatedAt,
	}, nil
}
