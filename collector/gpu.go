package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	FieldGPUUtilization = "gpu_utilization"
	FieldGPUTemperature = "gpu_temperature"
	FieldGPUPower       = "gpu_power"

	gpuQueryBinary = "nvidia-smi"
)

// GPUFieldNames lists the numeric fields of the GPU category. Exposed so
// an excluded GPU can still be registered as a Disabled source carrying
// the same field set.
var GPUFieldNames = []string{FieldGPUUtilization, FieldGPUTemperature, FieldGPUPower}

// GPUSource queries utilization, temperature and power draw of the first
// GPU via the vendor's query tool.
type GPUSource struct {
	binary  string
	timeout time.Duration
}

// NewGPUSource locates the GPU query tool and returns a source bound to
// it. A missing tool is a construction error: when GPU collection is not
// excluded, the agent must refuse to start rather than publish sentinels
// forever.
func NewGPUSource(timeout time.Duration) (*GPUSource, error) {
	path, err := exec.LookPath(gpuQueryBinary)
	if err != nil {
		return nil, fmt.Errorf("gpu query tool unavailable: %w", err)
	}
	return &GPUSource{binary: path, timeout: timeout}, nil
}

func (g *GPUSource) Name() string { return "gpu" }

func (g *GPUSource) FieldNames() []string {
	return GPUFieldNames
}

func (g *GPUSource) Sample(ctx context.Context) (Values, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := exec.CommandContext(cctx, g.binary,
		"--query-gpu=utilization.gpu,temperature.gpu,power.draw",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return Values{}, fmt.Errorf("run %s: %w", gpuQueryBinary, err)
	}

	util, temp, power, err := parseGPUQueryRow(string(out))
	if err != nil {
		return Values{}, fmt.Errorf("parse %s output: %w", gpuQueryBinary, err)
	}
	return Values{
		Fields: map[string]float64{
			FieldGPUUtilization: util,
			FieldGPUTemperature: temp,
			FieldGPUPower:       power,
		},
	}, nil
}

// parseGPUQueryRow reads the first CSV row of the query output. A value
// the driver cannot report (e.g. "[N/A]") degrades to the sentinel for
// that field only; a row that does not parse at all is an error.
func parseGPUQueryRow(out string) (util, temp, power float64, err error) {
	reader := csv.NewReader(strings.NewReader(out))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, 0, 0, err
	}
	if len(rows) == 0 || len(rows[0]) < 3 {
		return 0, 0, 0, fmt.Errorf("unexpected query output %q", strings.TrimSpace(out))
	}
	row := rows[0]
	return gpuValue(row[0]), gpuValue(row[1]), gpuValue(row[2]), nil
}

func gpuValue(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Sentinel
	}
	return v
}
