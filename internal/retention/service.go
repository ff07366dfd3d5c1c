package retention

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
	"github.com/sechenov-plus/quiz-lambda/internal/event"
)

type Trigger string

const (
	TriggerMigration Trigger = "migration"
	TriggerCron      Trigger = "cron"
	TriggerSchedule  Trigger = "schedule"
)

// Purger deletes attempts, and their answers first, started before cutoff.
type Purger interface {
	DeleteAttemptsStartedBefore(ctx context.Context, cutoff time.Time) (attempts, answers int64, err error)
}

type Report struct {
	DeletedAttempts int64     `json:"deletedAttempts"`
	DeletedAnswers  int64     `json:"deletedAnswers"`
	Cutoff          time.Time `json:"cutoff"`
	RetentionDays   int       `json:"retentionDays"`
}

type Service interface {
	Run(ctx context.Context, trigger Trigger) (*Report, error)
}

type service struct {
	purger    Purger
	window    time.Duration
	publisher event.Publisher
	now       func() time.Time
}

// NewService purges attempts older than window. A non-positive window falls
// back to DefaultRetentionDays.
func NewService(purger Purger, window time.Duration, publisher event.Publisher, now func() time.Time) Service {
	if window <= 0 {
		window = config.Settings{RetentionDays: config.DefaultRetentionDays}.RetentionWindow()
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &service{purger: purger, window: window, publisher: publisher, now: now}
}

func (s *service) Run(ctx context.Context, trigger Trigger) (*Report, error) {
	log := config.WithContext(ctx).WithField("trigger", trigger)
	cutoff := s.now().Add(-s.window)

	attempts, answers, err := s.purger.DeleteAttemptsStartedBefore(ctx, cutoff)
	if err != nil {
		log.WithError(err).WithField("cutoff", cutoff).Error("Failed to delete old quiz attempts")
		return nil, err
	}

	report := &Report{
		DeletedAttempts: attempts,
		DeletedAnswers:  answers,
		Cutoff:          cutoff,
		RetentionDays:   int(s.window / (24 * time.Hour)),
	}
	log.WithFields(logrus.Fields{
		"deleted_attempts": attempts,
		"deleted_answers":  answers,
		"cutoff":           cutoff,
	}).Info("Old quiz attempts cleaned up")

	ev := event.RetentionCompleted{
		Trigger:         string(trigger),
		DeletedAttempts: attempts,
		DeletedAnswers:  answers,
		Cutoff:          cutoff,
	}
	if err := s.publisher.Publish(ctx, event.RetentionCompletedKey, ev); err != nil {
		log.WithError(err).Warn("Failed to publish retention event")
	}
	return report, nil
}
