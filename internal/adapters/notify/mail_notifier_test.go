package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	"github.com/SscSPs/team_finance_engine/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type mockTeamReader struct {
	mock.Mock
}

func (m *mockTeamReader) FindTeamByID(ctx context.Context, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *mockTeamReader) Settings(ctx context.Context, teamID string) (domain.TeamSettings, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).(domain.TeamSettings), args.Error(1)
}

func (m *mockTeamReader) Governance(ctx context.Context, associationID *string) (domain.AssociationGovernance, error) {
	args := m.Called(ctx, associationID)
	return args.Get(0).(domain.AssociationGovernance), args.Error(1)
}

func (m *mockTeamReader) ContactEmails(ctx context.Context, teamID string, roles ...domain.Role) ([]string, error) {
	args := m.Called(ctx, teamID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return r.err
}

func newTestNotifier(enabled bool, team *mockTeamReader, sender *recordingSender) *MailNotifier {
	cfg := config.SMTPConfig{Enabled: enabled, Host: "smtp.test", Port: 587, From: "noreply@example.com"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMailNotifier(cfg, team, logger).WithSender(sender)
}

func TestMailNotifier_DisabledSendsNothing(t *testing.T) {
	team := new(mockTeamReader)
	sender := &recordingSender{}
	n := newTestNotifier(false, team, sender)

	n.BudgetLocked(context.Background(), domain.TeamSeason{TeamID: "team-1", SeasonLabel: "2025"}, "v1")

	assert.Empty(t, sender.sent)
	team.AssertNotCalled(t, "ContactEmails", mock.Anything, mock.Anything, mock.Anything)
}

func TestMailNotifier_BudgetLocked(t *testing.T) {
	team := new(mockTeamReader)
	sender := &recordingSender{}
	n := newTestNotifier(true, team, sender)

	team.On("ContactEmails", mock.Anything, "team-1",
		[]domain.Role{domain.RoleTreasurer, domain.RoleAssistantTreasurer, domain.RolePresident}).
		Return([]string{"treasurer@example.com", "president@example.com"}, nil).Once()

	n.BudgetLocked(context.Background(), domain.TeamSeason{TeamID: "team-1", SeasonLabel: "2025"}, "v1")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"Budget locked for 2025"}, sender.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{"treasurer@example.com", "president@example.com"}, sender.sent[0].GetHeader("To"))
	team.AssertExpectations(t)
}

func TestMailNotifier_ExceptionRaisedWithoutRecipients(t *testing.T) {
	team := new(mockTeamReader)
	sender := &recordingSender{}
	n := newTestNotifier(true, team, sender)

	team.On("ContactEmails", mock.Anything, "team-1", mock.Anything).Return([]string{}, nil).Once()

	sev := domain.ExceptionHigh
	n.ExceptionRaised(context.Background(), domain.Transaction{
		TeamID:            "team-1",
		Amount:            decimal.NewFromInt(900),
		Vendor:            "Sports Depot",
		ExceptionSeverity: &sev,
	})

	assert.Empty(t, sender.sent)
	team.AssertExpectations(t)
}

func TestMailNotifier_SendFailureIsSwallowed(t *testing.T) {
	team := new(mockTeamReader)
	sender := &recordingSender{err: errors.New("connection refused")}
	n := newTestNotifier(true, team, sender)

	team.On("ContactEmails", mock.Anything, "team-1", mock.Anything).Return([]string{"t@example.com"}, nil).Once()

	assert.NotPanics(t, func() {
		n.AssociationChangesRequested(context.Background(), domain.TeamSeason{TeamID: "team-1", SeasonLabel: "2025"}, "Trim travel")
	})
	assert.Len(t, sender.sent, 1)
}
