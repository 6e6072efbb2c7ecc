package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sampler queries every registered source once per tick and assembles a
// single snapshot. A failing source never fails the snapshot - its fields
// are substituted with the sentinel here, at exactly one point, so source
// implementations stay free of sentinel literals.
type Sampler struct {
	sources []Source
	log     *zap.Logger
}

// NewSampler returns a sampler over the given sources.
func NewSampler(sources []Source, log *zap.Logger) *Sampler {
	return &Sampler{sources: sources, log: log}
}

// Collect samples all sources concurrently and returns one snapshot.
// It always succeeds: every numeric field declared by every source is
// present, carrying either the sampled value or the sentinel. The call
// returns only after every source has reported (or failed) - partial
// snapshots are never produced.
func (s *Sampler) Collect(ctx context.Context) *Snapshot {
	snap := NewSnapshot(time.Now())

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, src := range s.sources {
		src := src
		g.Go(func() error {
			vals, err := src.Sample(gctx)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if errors.Is(err, ErrSourceDisabled) {
					s.log.Debug("source disabled", zap.String("source", src.Name()))
				} else {
					s.log.Warn("source failed, substituting sentinel",
						zap.String("source", src.Name()), zap.Error(err))
				}
				for _, f := range src.FieldNames() {
					snap.Fields[f] = Sentinel
				}
				return nil
			}

			for name, val := range vals.Fields {
				snap.Fields[name] = val
			}
			for name, val := range vals.Labels {
				snap.Labels[name] = val
			}
			return nil
		})
	}

	// Sources return nil even on failure, so Wait cannot error.
	_ = g.Wait()
	return snap
}
