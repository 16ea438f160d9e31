package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sensus-health/sensus-api/internal/domain/entity"
	"github.com/sensus-health/sensus-api/internal/domain/repository"
	"github.com/sensus-health/sensus-api/pkg/helpers"
	"github.com/sensus-health/sensus-api/pkg/mailer"
)

// Processor consumes domain events: it recomputes per-user counters and
// streaks, evaluates achievement thresholds, and enqueues notification
// emails for new unlocks.
type Processor struct {
	Stats  repository.StatsRepository
	Users  repository.UserRepository
	Logger *logrus.Logger
	// EmailPub enqueues mailer.EmailJob payloads; nil disables notifications.
	EmailPub *helpers.RabbitPublisher
}

// ErrUnknownEvent marks a message that can never be handled. Consumers must
// drop it instead of requeueing, or it loops forever.
var ErrUnknownEvent = errors.New("unknown event type")

// Handle processes one event. Counter updates are not deduplicated: a
// redelivered event increments again.
func (p *Processor) Handle(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventDiaryEntryCreated:
		return p.handleDiaryEntry(ctx, ev)
	case EventEvaluationCompleted:
		return p.handleEvaluation(ctx, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func (p *Processor) handleDiaryEntry(ctx context.Context, ev Event) error {
	stats, err := p.loadStats(ctx, ev.UserID)
	if err != nil {
		return err
	}
	entryDate, err := time.Parse("2006-01-02", ev.EntryDate)
	if err != nil {
		entryDate = ev.OccurredAt
	}

	stats.DiaryEntries++
	stats.CurrentStreak = NextStreak(stats.CurrentStreak, stats.LastEntryDate, entryDate)
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.LastEntryDate = &entryDate

	if err := p.Stats.Upsert(ctx, stats); err != nil {
		return err
	}
	p.checkAchievements(ctx, stats)
	return nil
}

func (p *Processor) handleEvaluation(ctx context.Context, ev Event) error {
	stats, err := p.loadStats(ctx, ev.UserID)
	if err != nil {
		return err
	}
	stats.Evaluations++
	if err := p.Stats.Upsert(ctx, stats); err != nil {
		return err
	}
	p.checkAchievements(ctx, stats)
	return nil
}

func (p *Processor) loadStats(ctx context.Context, userID string) (*entity.UserStats, error) {
	stats, err := p.Stats.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &entity.UserStats{UserID: userID}, nil
	}
	return stats, err
}

func (p *Processor) checkAchievements(ctx context.Context, stats *entity.UserStats) {
	for _, rule := range achievementRules {
		if !rule.Unlocked(stats.DiaryEntries, stats.Evaluations, stats.CurrentStreak) {
			continue
		}
		a := &entity.Achievement{UserID: stats.UserID, Code: rule.Code, Name: rule.Name}
		created, err := p.Stats.UnlockAchievement(ctx, a)
		if err != nil {
			if p.Logger != nil {
				p.Logger.WithError(err).WithField("code", rule.Code).Warn("achievement unlock failed")
			}
			continue
		}
		if created {
			if p.Logger != nil {
				p.Logger.WithFields(logrus.Fields{"user_id": stats.UserID, "code": rule.Code}).Info("achievement unlocked")
			}
			p.notify(ctx, stats.UserID, a)
		}
	}
}

func (p *Processor) notify(ctx context.Context, userID string, a *entity.Achievement) {
	if p.EmailPub == nil || p.Users == nil {
		return
	}
	u, err := p.Users.GetByID(ctx, userID)
	if err != nil || u == nil || !u.Preferences.Notifications {
		return
	}
	job := mailer.EmailJob{
		To:      u.Email,
		Subject: "¡Logro desbloqueado: " + a.Name + "!",
		Text:    "Hola " + u.FirstName + ", has desbloqueado el logro \"" + a.Name + "\". Sigue así.",
	}
	if err := p.EmailPub.PublishJSON(ctx, job); err != nil && p.Logger != nil {
		p.Logger.WithError(err).WithField("user_id", userID).Warn("notification enqueue failed")
	}
}
