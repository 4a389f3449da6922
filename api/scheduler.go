/*
scheduler.go - Periodic availability generation

PURPOSE:
  Once a week, fills the next ISO work week (Mon-Fri) with availabilities for
  every employment contract user that has working hours configured.

DESIGN:
  - robfig/cron drives the schedule (default: Fridays at 02:00)
  - Each user is generated in its own transaction; a failing user is logged
    and skipped, the rest of the run continues
  - Overlapping runs are skipped, and a panic in one run does not kill the
    scheduler
  - The last run is kept in memory for GET /api/admin/scheduler

USAGE:
  sched, err := api.NewAvailabilityScheduler(svc, api.SchedulerConfig{Spec: "0 2 * * 5"})
  sched.Start()
  defer sched.Stop()

SEE ALSO:
  - service/availability.go: GenerateForEmploymentContracts
  - handlers.go: TriggerGeneration (manual run)
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/workforce-engine/schedule"
	"github.com/warp/workforce-engine/service"
)

// DefaultGenerationSpec runs every Friday at 02:00.
const DefaultGenerationSpec = "0 2 * * 5"

type SchedulerConfig struct {
	Spec     string
	Location *time.Location
	Clock    schedule.Clock
	Logger   logrus.FieldLogger
}

// AvailabilityScheduler generates next week's availabilities on a cron schedule.
type AvailabilityScheduler struct {
	svc   *service.Service
	spec  string
	loc   *time.Location
	clock schedule.Clock
	log   logrus.FieldLogger

	cron  *cron.Cron
	entry cron.EntryID

	runMu   sync.Mutex
	mu      sync.Mutex
	lastRun *GenerationRun
}

// GenerationRun is the outcome of one generator run.
type GenerationRun struct {
	Start  time.Time
	End    time.Time
	RanAt  time.Time
	Report service.GenerationReport
}

func (r GenerationRun) DTO() GenerationRunDTO {
	failed := make(map[string]string, len(r.Report.Failed))
	for userID, err := range r.Report.Failed {
		failed[userID] = err.Error()
	}
	return GenerationRunDTO{
		StartDate: schedule.FormatDate(r.Start),
		EndDate:   schedule.FormatDate(r.End.AddDate(0, 0, -1)),
		Users:     r.Report.Users,
		Generated: r.Report.Generated,
		Failed:    failed,
		RanAt:     r.RanAt.Format(time.RFC3339),
	}
}

// NewAvailabilityScheduler validates the cron spec and registers the job.
// Nothing runs until Start.
func NewAvailabilityScheduler(svc *service.Service, cfg SchedulerConfig) (*AvailabilityScheduler, error) {
	s := &AvailabilityScheduler{
		svc:   svc,
		spec:  cfg.Spec,
		loc:   cfg.Location,
		clock: cfg.Clock,
		log:   cfg.Logger,
	}
	if s.spec == "" {
		s.spec = DefaultGenerationSpec
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.clock == nil {
		s.clock = schedule.SystemClock{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}

	logger := cron.PrintfLogger(s.log)
	s.cron = cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	entry, err := s.cron.AddFunc(s.spec, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler spec %q: %w", s.spec, err)
	}
	s.entry = entry
	return s, nil
}

// Start begins the scheduler.
func (s *AvailabilityScheduler) Start() {
	s.cron.Start()
	s.log.WithField("spec", s.spec).Info("availability scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *AvailabilityScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("availability scheduler stopped")
}

func (s *AvailabilityScheduler) runScheduled() {
	if _, err := s.RunNow(context.Background()); err != nil {
		s.log.WithError(err).Error("availability generation run failed")
	}
}

// RunNow generates the work week after the current one. Concurrent calls
// run one after the other.
func (s *AvailabilityScheduler) RunNow(ctx context.Context) (GenerationRun, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	now := s.clock.Now().In(s.loc)
	start, end := service.NextWorkWeek(now)

	s.log.WithFields(logrus.Fields{
		"start": schedule.FormatDate(start),
		"end":   schedule.FormatDate(end),
	}).Info("generating availabilities")

	report, err := s.svc.GenerateForEmploymentContracts(ctx, start, end)
	if err != nil {
		return GenerationRun{}, err
	}

	run := GenerationRun{Start: start, End: end, RanAt: now, Report: report}
	s.mu.Lock()
	s.lastRun = &run
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"users":     report.Users,
		"generated": report.Generated,
		"failed":    len(report.Failed),
	}).Info("availability generation completed")
	return run, nil
}

// NextRun returns when the job fires next; zero before Start.
func (s *AvailabilityScheduler) NextRun() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *AvailabilityScheduler) Status() SchedulerStatusDTO {
	dto := SchedulerStatusDTO{Enabled: true, Spec: s.spec}
	if next := s.NextRun(); !next.IsZero() {
		dto.NextRun = next.Format(time.RFC3339)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun != nil {
		last := s.lastRun.DTO()
		dto.LastRun = &last
	}
	return dto
}
