package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/team_finance_engine/internal/apperrors"
	"github.com/SscSPs/team_finance_engine/internal/core/domain"
	portssvc "github.com/SscSPs/team_finance_engine/internal/core/ports/services"
	"github.com/SscSPs/team_finance_engine/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	TeamAuthorizer portssvc.TeamAuthorizerSvc
	Clock          func() time.Time
	Notifier       portssvc.Notifier
	Analytics      portssvc.AnalyticsSink
}

// Option configures the shared parts of a service.
type Option func(*BaseService)

// WithClock overrides the time source, used by tests.
func WithClock(clock func() time.Time) Option {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

// WithTeamAuthorizer adds the team authorizer dependency
func WithTeamAuthorizer(authorizer portssvc.TeamAuthorizerSvc) Option {
	return func(s *BaseService) {
		s.TeamAuthorizer = authorizer
	}
}

// WithNotifier adds notification dispatch.
func WithNotifier(n portssvc.Notifier) Option {
	return func(s *BaseService) {
		s.Notifier = n
	}
}

// WithAnalytics adds the analytics sink.
func WithAnalytics(a portssvc.AnalyticsSink) Option {
	return func(s *BaseService) {
		s.Analytics = a
	}
}

func (s *BaseService) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// Now returns the current time in UTC.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// Track records an analytics event when a sink is configured.
func (s *BaseService) Track(ctx context.Context, distinctID, event string, props map[string]any) {
	if s.Analytics == nil {
		return
	}
	s.Analytics.Track(ctx, distinctID, event, props)
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a rejected request, such as a failed guard.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("reason", err.Error()))
	args = append(args, keyvals...)
	logger.Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeTeam checks that a user belongs to a team with one of roles.
// Without an authorizer every request is denied.
func (s *BaseService) AuthorizeTeam(ctx context.Context, userID, teamID string, roles ...domain.Role) (*domain.TeamMember, error) {
	if s.TeamAuthorizer == nil {
		err := fmt.Errorf("%w: no team authorizer configured", apperrors.ErrForbidden)
		s.LogError(ctx, err, "Team authorization unavailable",
			slog.String("user_id", userID),
			slog.String("team_id", teamID))
		return nil, err
	}
	member, err := s.TeamAuthorizer.AuthorizeTeamAction(ctx, userID, teamID, roles...)
	if err != nil {
		s.LogWarn(ctx, err, "User not authorized for team action",
			slog.String("user_id", userID),
			slog.String("team_id", teamID))
		return nil, err
	}
	return member, nil
}
