package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/familylog/internal/domain/logbook"
	apperrors "github.com/yanqian/familylog/pkg/errors"
	"github.com/yanqian/familylog/pkg/metrics"
)

// Service runs reminder ticks against the repository and the notification sink.
type Service interface {
	Tick(ctx context.Context) (metrics.TickStats, error)
	Cancel(ctx context.Context, entry logbook.Entry) error
}

type service struct {
	evaluator *Evaluator
	repo      logbook.Repository
	sessions  SessionSource
	sink      Sink
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the tick. sessions may be nil when every tick should run.
func NewService(cfg Config, repo logbook.Repository, sessions SessionSource, sink Sink, logger *slog.Logger) Service {
	return &service{
		evaluator: NewEvaluator(cfg),
		repo:      repo,
		sessions:  sessions,
		sink:      sink,
		logger:    logger.With("component", "reminder.service"),
		now:       time.Now,
	}
}

// Tick evaluates one snapshot. A missing session skips the tick without an error;
// a repository or sink failure aborts it and is returned.
func (s *service) Tick(ctx context.Context) (stats metrics.TickStats, err error) {
	now := s.now()
	stats.StartedAt = now
	started := time.Now()
	defer func() {
		stats.DurationMs = time.Since(started).Milliseconds()
	}()

	if reason, ok := s.checkSession(ctx, now); !ok {
		stats.Skipped = true
		stats.SkipReason = reason
		s.logger.Info("reminder tick skipped", "reason", reason)
		return stats, nil
	}

	entries, err := s.repo.AllEntries(ctx)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.CodeStorage, "failed to load entries", err)
	}
	persons, err := s.repo.AllPersons(ctx)
	if err != nil {
		return stats, apperrors.Wrap(apperrors.CodeStorage, "failed to load persons", err)
	}
	stats.Entries = len(entries)
	stats.Persons = len(persons)

	due := s.evaluator.Evaluate(now, entries, persons)
	stats.Candidates = len(due)

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		shown, err := s.sink.ShowReminder(ctx, r)
		if err != nil {
			stats.Failed++
			return stats, apperrors.Wrap(apperrors.CodeReminderFailure, "failed to deliver reminder", err)
		}
		if !shown {
			stats.Suppressed++
			continue
		}
		stats.Delivered++
		s.logger.Debug("reminder delivered", "kind", r.Kind, "key", r.Key)
	}

	s.logger.Info("reminder tick completed",
		"entries", stats.Entries,
		"persons", stats.Persons,
		"candidates", stats.Candidates,
		"delivered", stats.Delivered,
		"suppressed", stats.Suppressed,
	)
	return stats, nil
}

func (s *service) checkSession(ctx context.Context, now time.Time) (string, bool) {
	if s.sessions == nil {
		return "", true
	}
	session, ok, err := s.sessions.ActiveSession(ctx)
	if err != nil {
		s.logger.Warn("session lookup failed", "error", err)
		return "session_unavailable", false
	}
	if !ok {
		return "no_session", false
	}
	if !session.ExpiresAt.IsZero() && !now.Before(session.ExpiresAt) {
		return "session_expired", false
	}
	return "", true
}

// Cancel withdraws every reminder key the entry may have produced.
func (s *service) Cancel(ctx context.Context, entry logbook.Entry) error {
	for _, key := range KeysForEntry(entry) {
		if err := s.sink.Cancel(ctx, key); err != nil {
			return apperrors.Wrap(apperrors.CodeReminderFailure, "failed to cancel reminder", err)
		}
	}
	return nil
}
