package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	name   string
	fields []string
	vals   Values
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Name() string         { return f.name }
func (f *fakeSource) FieldNames() []string { return f.fields }

func (f *fakeSource) Sample(context.Context) (Values, error) {
	f.calls.Add(1)
	return f.vals, f.err
}

func TestCollectMergesAllSources(t *testing.T) {
	cpu := &fakeSource{
		name:   "cpu",
		fields: []string{"cpu_usage"},
		vals: Values{
			Fields: map[string]float64{"cpu_usage": 42.5},
			Labels: map[string]string{"heaviest_process": "postgres"},
		},
	}
	mem := &fakeSource{
		name:   "memory",
		fields: []string{"memory_used_mb", "memory_total_mb"},
		vals: Values{
			Fields: map[string]float64{"memory_used_mb": 2048, "memory_total_mb": 16384},
		},
	}

	s := NewSampler([]Source{cpu, mem}, zap.NewNop())
	snap := s.Collect(context.Background())

	require.NotNil(t, snap)
	assert.False(t, snap.Timestamp.IsZero())
	assert.Equal(t, 42.5, snap.Fields["cpu_usage"])
	assert.Equal(t, 2048.0, snap.Fields["memory_used_mb"])
	assert.Equal(t, 16384.0, snap.Fields["memory_total_mb"])
	assert.Equal(t, "postgres", snap.Labels["heaviest_process"])
}

func TestCollectIsolatesSourceFailure(t *testing.T) {
	ok := &fakeSource{
		name:   "cpu",
		fields: []string{"cpu_usage"},
		vals:   Values{Fields: map[string]float64{"cpu_usage": 13.7}},
	}
	broken := &fakeSource{
		name:   "network",
		fields: []string{"network_sent", "network_received"},
		err:    errors.New("netstat exploded"),
	}

	s := NewSampler([]Source{ok, broken}, zap.NewNop())
	snap := s.Collect(context.Background())

	// The failing source contributes sentinels for exactly its own
	// fields; the healthy source is untouched.
	assert.Equal(t, Sentinel, snap.Fields["network_sent"])
	assert.Equal(t, Sentinel, snap.Fields["network_received"])
	assert.Equal(t, 13.7, snap.Fields["cpu_usage"])
	assert.Len(t, snap.Fields, 3)
}

func TestCollectDisabledSourceNeverSampled(t *testing.T) {
	gpu := &fakeSource{name: "gpu", fields: GPUFieldNames}
	disabled := Disabled(gpu.Name(), gpu.FieldNames())

	s := NewSampler([]Source{disabled}, zap.NewNop())

	for i := 0; i < 3; i++ {
		snap := s.Collect(context.Background())
		for _, f := range GPUFieldNames {
			assert.Equal(t, Sentinel, snap.Fields[f])
		}
	}
	assert.Zero(t, gpu.calls.Load(), "the real GPU source must never be invoked")
}

func TestCollectAlwaysCarriesFullFieldSet(t *testing.T) {
	srcs := []Source{
		&fakeSource{name: "a", fields: []string{"a1"}, err: errors.New("down")},
		&fakeSource{name: "b", fields: []string{"b1", "b2"}, vals: Values{Fields: map[string]float64{"b1": 1, "b2": 2}}},
		Disabled("c", []string{"c1"}),
	}

	snap := NewSampler(srcs, zap.NewNop()).Collect(context.Background())

	for _, f := range []string{"a1", "b1", "b2", "c1"} {
		_, ok := snap.Fields[f]
		assert.True(t, ok, "field %s missing from snapshot", f)
	}
}
