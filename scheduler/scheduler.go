package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sysagent/collector"
)

// Collector produces one snapshot per invocation. Satisfied by
// *collector.Sampler.
type Collector interface {
	Collect(ctx context.Context) *collector.Snapshot
}

// Sink receives one snapshot per tick. Satisfied by *publisher.Publisher.
type Sink interface {
	Send(ctx context.Context, snap *collector.Snapshot) error
}

// Scheduler drives the sample-then-publish cycle at a fixed interval.
// At most one cycle is ever in flight: the interval sleep starts after
// the tick's work completes, so a slow tick shifts the schedule instead
// of overlapping the next one. Missed ticks are not retried.
type Scheduler struct {
	sampler  Collector
	sink     Sink
	interval time.Duration
	log      *zap.Logger
}

// New returns a scheduler over the given sampler and sink.
func New(sampler Collector, sink Sink, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		sampler:  sampler,
		sink:     sink,
		interval: interval,
		log:      log,
	}
}

// Run executes the cycle until ctx is cancelled, which is the only stop
// condition. A failed publish is logged and the tick abandoned; the next
// tick runs at its normal time with a fresh snapshot.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))

	for {
		snap := s.sampler.Collect(ctx)
		if err := s.sink.Send(ctx, snap); err != nil {
			s.log.Error("publish failed, dropping tick", zap.Error(err))
		}

		if !sleepWithContext(ctx, s.interval) {
			s.log.Info("scheduler stopped")
			return nil
		}
	}
}

// sleepWithContext waits for d and reports whether the full duration
// elapsed before ctx was cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
