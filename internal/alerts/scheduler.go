package alerts

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner performs one sweep.
type Runner interface {
	Run(ctx context.Context) (*Report, error)
}

// Scheduler triggers sweeps on a cron schedule. Runs never overlap.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewScheduler(spec string, runner Runner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		runner: runner,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the sweep and starts the cron loop. With runNow the first
// sweep begins immediately instead of waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	id, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	entry := s.cron.Entry(id)
	s.cron.Start()
	s.logger.Info("cron started", zap.String("spec", s.spec))

	if runNow {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			entry.WrappedJob.Run()
		}()
	}

	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("cron stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if _, err := s.runner.Run(ctx); err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
	}
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
