package scheduler

import (
	"context"
	"fmt"
	"log"

	"IbexFeed/internal/runner"

	"github.com/robfig/cron/v3"
)

// Scheduler runs directory sweeps on a cron schedule. The runner (and its
// parser) lives across sweeps, so the timestamp ledger suppresses records a
// previous sweep already emitted; every pass over a growing directory of
// snapshots contributes only what changed since the last one.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *runner.Runner
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r *runner.Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: r,
		Ctx:    ctx,
	}
}

// Register registers the sweep task with the given cron spec.
func (s *Scheduler) Register(sweepCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a sweep immediately (for one-shot mode / manual trigger).
func (s *Scheduler) RunNow() error {
	return s.Runner.Sweep()
}

func (s *Scheduler) sweepTask() {
	if err := s.Ctx.Err(); err != nil {
		return
	}
	log.Println("[INFO] running scheduled sweep")
	if err := s.Runner.Sweep(); err != nil {
		log.Printf("[ERROR] sweep: %v", err)
	}
}
