package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

const (
	FieldMemoryUsedMB  = "memory_used_mb"
	FieldMemoryTotalMB = "memory_total_mb"

	bytesPerMB = 1024 * 1024
)

// MemorySource reports used and total host memory in megabytes.
type MemorySource struct{}

// NewMemorySource returns a ready-to-use memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

func (m *MemorySource) Name() string { return "memory" }

func (m *MemorySource) FieldNames() []string {
	return []string{FieldMemoryUsedMB, FieldMemoryTotalMB}
}

func (m *MemorySource) Sample(ctx context.Context) (Values, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Values{}, fmt.Errorf("query virtual memory: %w", err)
	}
	return Values{
		Fields: map[string]float64{
			FieldMemoryUsedMB:  float64(vm.Used) / bytesPerMB,
			FieldMemoryTotalMB: float64(vm.Total) / bytesPerMB,
		},
	}, nil
}
