package services

import (
	"github.com/promptdir/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// recountSchedule recomputes category prompt counts every 10 minutes.
const recountSchedule = "*/10 * * * *"

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron       *cron.Cron
	categories *CategoryService
}

func NewScheduler(db *gorm.DB) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		categories: NewCategoryService(db),
	}
}

// Start registers the jobs and begins the schedule. The recount runs once
// immediately so counts are correct right after boot.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(recountSchedule, s.runRecount); err != nil {
		return err
	}

	s.cron.Start()
	logger.Infof("[Scheduler] Started, category recount every 10 minutes")

	go s.runRecount()
	return nil
}

// Stop halts the schedule. Running jobs finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) runRecount() {
	if err := s.categories.RecountPromptCounts(); err != nil {
		logger.Errorf("[Scheduler] Category recount failed: %v", err)
	}
}
