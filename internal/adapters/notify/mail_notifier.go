package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/platform/config"
	"gopkg.in/gomail.v2"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier emails team officers about lifecycle events. Delivery runs in
// the background and failures are only logged.
type MailNotifier struct {
	cfg    config.SMTPConfig
	team   portssvc.TeamReaderSvc
	sender Sender
	logger *slog.Logger
	wait   func(func())
}

var _ portssvc.Notifier = (*MailNotifier)(nil)

// NewMailNotifier creates a notifier. When SMTP is disabled every call is a no-op.
func NewMailNotifier(cfg config.SMTPConfig, team portssvc.TeamReaderSvc, logger *slog.Logger) *MailNotifier {
	return &MailNotifier{
		cfg:    cfg,
		team:   team,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
		wait:   func(f func()) { go f() },
	}
}

// WithSender replaces the SMTP dialer and runs deliveries synchronously. Used by tests.
func (n *MailNotifier) WithSender(s Sender) *MailNotifier {
	n.sender = s
	n.wait = func(f func()) { f() }
	return n
}

func (n *MailNotifier) BudgetLocked(ctx context.Context, ts domain.TeamSeason, versionID string) {
	subject := fmt.Sprintf("Budget locked for %s", ts.SeasonLabel)
	body := fmt.Sprintf(`<p>The budget for season <strong>%s</strong> reached its approval threshold and is now locked.</p>
<p>Locked version: %s</p>
<p>Transactions can now be recorded against it.</p>`, ts.SeasonLabel, versionID)
	n.send(ctx, ts.TeamID, subject, body, domain.RoleTreasurer, domain.RoleAssistantTreasurer, domain.RolePresident)
}

func (n *MailNotifier) AssociationChangesRequested(ctx context.Context, ts domain.TeamSeason, notes string) {
	subject := fmt.Sprintf("Association requested budget changes for %s", ts.SeasonLabel)
	body := fmt.Sprintf(`<p>The association reviewed the budget for season <strong>%s</strong> and asked for changes.</p>
<p>Notes:</p>
<blockquote>%s</blockquote>`, ts.SeasonLabel, notes)
	n.send(ctx, ts.TeamID, subject, body, domain.RoleTreasurer, domain.RoleAssistantTreasurer)
}

func (n *MailNotifier) ExceptionRaised(ctx context.Context, tx domain.Transaction) {
	severity := "UNKNOWN"
	if tx.ExceptionSeverity != nil {
		severity = string(*tx.ExceptionSeverity)
	}
	reason := ""
	if tx.ExceptionReason != nil {
		reason = *tx.ExceptionReason
	}
	subject := fmt.Sprintf("%s exception: $%s at %s", severity, tx.Amount.StringFixed(2), tx.Vendor)
	body := fmt.Sprintf(`<p>A transaction needs review.</p>
<ul>
<li>Vendor: %s</li>
<li>Amount: $%s</li>
<li>Date: %s</li>
<li>Reason: %s</li>
</ul>`, tx.Vendor, tx.Amount.StringFixed(2), tx.TransactionDate.Format("2006-01-02"), reason)
	n.send(ctx, tx.TeamID, subject, body, domain.RoleTreasurer, domain.RoleAssistantTreasurer)
}

func (n *MailNotifier) send(ctx context.Context, teamID, subject, body string, roles ...domain.Role) {
	if !n.cfg.Enabled {
		return
	}
	ctx = context.WithoutCancel(ctx)
	n.wait(func() {
		to, err := n.team.ContactEmails(ctx, teamID, roles...)
		if err != nil {
			n.logger.Error("Failed to resolve notification recipients",
				slog.String("team_id", teamID),
				slog.String("error", err.Error()))
			return
		}
		if len(to) == 0 {
			n.logger.Debug("No notification recipients", slog.String("team_id", teamID))
			return
		}

		m := gomail.NewMessage()
		m.SetHeader("From", m.FormatAddress(n.cfg.From, "Team Finance"))
		m.SetHeader("To", to...)
		m.SetHeader("Subject", subject)
		m.SetBody("text/html", body)

		if err := n.sender.DialAndSend(m); err != nil {
			n.logger.Error("Failed to send notification",
				slog.String("team_id", teamID),
				slog.String("subject", subject),
				slog.String("error", err.Error()))
			return
		}
		n.logger.Info("Notification sent",
			slog.String("team_id", teamID),
			slog.Int("recipients", len(to)))
	})
}
