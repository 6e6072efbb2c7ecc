package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/process"
)

const (
	FieldCPUUsage        = "cpu_usage"
	LabelHeaviestProcess = "heaviest_process"
)

// CPUSource reports host CPU utilization as a percentage over the window
// since the previous tick (gopsutil keeps the reference counters between
// calls; the very first sample reports the window since process start).
// It also annotates the snapshot with the name of the process currently
// using the most CPU.
type CPUSource struct{}

// NewCPUSource returns a ready-to-use CPU source.
func NewCPUSource() *CPUSource {
	return &CPUSource{}
}

func (c *CPUSource) Name() string { return "cpu" }

func (c *CPUSource) FieldNames() []string {
	return []string{FieldCPUUsage}
}

func (c *CPUSource) Sample(ctx context.Context) (Values, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Values{}, fmt.Errorf("query cpu utilization: %w", err)
	}
	if len(percents) == 0 {
		return Values{}, fmt.Errorf("query cpu utilization: empty result")
	}

	vals := Values{
		Fields: map[string]float64{FieldCPUUsage: percents[0]},
		Labels: map[string]string{},
	}

	// The process scan is best effort: it should never fail the whole
	// source, the label is simply absent when it cannot be determined.
	if name, ok := heaviestProcess(ctx); ok {
		vals.Labels[LabelHeaviestProcess] = name
	}
	return vals, nil
}

func heaviestProcess(ctx context.Context) (string, bool) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return "", false
	}

	var (
		maxUsage float64
		heaviest string
	)
	for _, p := range procs {
		usage, err := p.CPUPercentWithContext(ctx)
		if err != nil || usage <= maxUsage {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		maxUsage = usage
		heaviest = name
	}
	return heaviest, heaviest != ""
}
