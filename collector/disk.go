package collector

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

const (
	FieldDiskUsedMB  = "disk_used_mb"
	FieldDiskTotalMB = "disk_total_mb"
)

// DiskSource reports used and total space, in megabytes, of the
// filesystem holding the configured mount path.
type DiskSource struct {
	path string
}

// NewDiskSource returns a disk source for the given mount path.
func NewDiskSource(path string) *DiskSource {
	return &DiskSource{path: path}
}

func (d *DiskSource) Name() string { return "disk" }

func (d *DiskSource) FieldNames() []string {
	return []string{FieldDiskUsedMB, FieldDiskTotalMB}
}

func (d *DiskSource) Sample(ctx context.Context) (Values, error) {
	usage, err := disk.UsageWithContext(ctx, d.path)
	if err != nil {
		return Values{}, fmt.Errorf("query disk usage for %s: %w", d.path, err)
	}
	return Values{
		Fields: map[string]float64{
			FieldDiskUsedMB:  float64(usage.Used) / bytesPerMB,
			FieldDiskTotalMB: float64(usage.Total) / bytesPerMB,
		},
	}, nil
}
