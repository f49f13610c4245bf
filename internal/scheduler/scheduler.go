// Package scheduler provides cron-based job scheduling for EpicChat,
// primarily the daily quest rotation at local midnight.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/EpicTechAI/EpicChat/internal/quests"
)

// QuestRotationSpec fires at local midnight, when the quest storage key's
// date component rolls over.
const QuestRotationSpec = "0 0 * * *"

// Scheduler wraps a started cron runner.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler using the standard
// 5-field expression format, with panic recovery around jobs.
func NewScheduler() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task using the provided cron expression. It returns
// an error if the expression is invalid.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// ScheduleQuestRotation rolls a fresh daily quest set each local
// midnight.
func (s *Scheduler) ScheduleQuestRotation(m *quests.Manager) error {
	return s.AddJob(QuestRotationSpec, func() {
		now := time.Now()
		if err := m.Rotate(now); err != nil {
			slog.Error("Scheduler: quest rotation failed", "date", quests.DateKey(now), "error", err)
			return
		}
		slog.Info("Scheduler: quest rotation ran", "date", quests.DateKey(now))
	})
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
