package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/eventory/internal/clock"
	invoicedomain "github.com/smallbiznis/eventory/internal/invoice/domain"
	"github.com/smallbiznis/eventory/internal/jobmetrics"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/eventory/internal/observability/metrics"
	"github.com/smallbiznis/eventory/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobMarkOverdue        = "invoices.mark_overdue"
	JobRetryNotifications = "notifications.retry"

	lockPrefix = "eventory:job:"
)

type Params struct {
	fx.In

	Log             *zap.Logger
	Config          Config
	Clock           clock.Clock
	GenID           *snowflake.Node
	InvoiceSvc      invoicedomain.Service
	NotificationSvc notificationdomain.Service
	Locker          *ratelimit.Locker      `optional:"true"`
	JobMetrics      *obsmetrics.JobMetrics `optional:"true"`
	Pusher          jobmetrics.Pusher      `optional:"true"`
}

type Scheduler struct {
	log             *zap.Logger
	cfg             Config
	clock           clock.Clock
	genID           *snowflake.Node
	invoiceSvc      invoicedomain.Service
	notificationSvc notificationdomain.Service
	locker          *ratelimit.Locker
	jobMetrics      *obsmetrics.JobMetrics
	pusher          jobmetrics.Pusher

	mu   sync.Mutex
	cron *cron.Cron
}

type job struct {
	name      string
	spec      string
	batchSize int
	fn        func(ctx context.Context) error
}

func New(p Params) (*Scheduler, error) {
	if p.GenID == nil {
		return nil, errors.New("scheduler: id generator is required")
	}
	if p.InvoiceSvc == nil || p.NotificationSvc == nil {
		return nil, errors.New("scheduler: invoice and notification services are required")
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		log:             p.Log.Named("scheduler"),
		cfg:             p.Config.withDefaults(),
		clock:           clk,
		genID:           p.GenID,
		invoiceSvc:      p.InvoiceSvc,
		notificationSvc: p.NotificationSvc,
		locker:          p.Locker,
		jobMetrics:      p.JobMetrics,
		pusher:          p.Pusher,
	}, nil
}

func (s *Scheduler) jobs() []job {
	return []job{
		{name: JobMarkOverdue, spec: s.cfg.OverdueSpec, fn: s.MarkOverdueJob},
		{name: JobRetryNotifications, spec: s.cfg.RetrySpec, batchSize: s.cfg.RetryBatch, fn: s.RetryNotificationsJob},
	}
}

// Start registers every job with cron. Calling Start twice is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	for _, j := range s.jobs() {
		j := j
		if _, err := c.AddFunc(j.spec, func() {
			if err := s.runJob(context.Background(), j.name, j.batchSize, s.cfg.JobTimeout, j.fn); err != nil {
				s.log.Warn("scheduled job failed", zap.String("job", j.name), zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
		s.log.Info("job scheduled", zap.String("job", j.name), zap.String("spec", j.spec))
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop waits for running jobs or until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	done := c.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce runs every job immediately, one after another.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	for _, j := range s.jobs() {
		err = errors.Join(err, s.runJob(parent, j.name, j.batchSize, s.cfg.JobTimeout, j.fn))
	}
	return err
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)

	err := s.locker.WithLock(ctx, lockPrefix+name, s.cfg.LockTTL, fn)
	if errors.Is(err, ratelimit.ErrLockHeld) {
		log.Debug("job skipped, lock held elsewhere")
		return nil
	}

	s.jobMetrics.ObserveRun(name, s.clock.Now().Sub(start), err)
	s.pushMetrics(ctx)
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	// a deadline is a soft timeout, the next tick picks up the rest
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) pushMetrics(ctx context.Context) {
	if s.pusher == nil || s.jobMetrics == nil {
		return
	}
	if err := s.pusher.Push(context.WithoutCancel(ctx), s.jobMetrics.Registry()); err != nil {
		s.logger(ctx).Warn("failed to push job metrics", zap.Error(err))
	}
}

func (s *Scheduler) MarkOverdueJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	count, err := s.invoiceSvc.MarkOverdue(ctx, s.clock.Now())
	run.AddProcessed(count)
	s.jobMetrics.AddProcessed(JobMarkOverdue, "invoice", count)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger(ctx).Info("invoices marked overdue", zap.Int("count", count))
	}
	return nil
}

func (s *Scheduler) RetryNotificationsJob(ctx context.Context) error {
	run := jobRunFromContext(ctx)
	count, err := s.notificationSvc.RetryFailed(ctx, s.cfg.RetryBatch)
	run.AddProcessed(count)
	s.jobMetrics.AddProcessed(JobRetryNotifications, "notification", count)
	return err
}
