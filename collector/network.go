package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	FieldNetworkSent     = "network_sent"
	FieldNetworkReceived = "network_received"
)

// NetworkSource derives send/receive rates in bytes per second from the
// cumulative interface counters printed by an external netstat-equivalent
// tool. The previous tick's counters are kept so each sample reports the
// rate over the elapsed window; the very first sample (and any counter
// reset) reports zero.
//
// A failed or unparseable invocation surfaces as an error, which the
// sampler turns into sentinels. The retained counters survive such
// failures, so the source re-synchronizes on the next successful run.
type NetworkSource struct {
	command []string
	timeout time.Duration

	mu           sync.Mutex
	prevReceived uint64
	prevSent     uint64
	prevAt       time.Time

	now func() time.Time
}

// NewNetworkSource returns a network source that shells out to the given
// command (program plus arguments, e.g. ["netstat", "-e"]) on every tick.
func NewNetworkSource(command []string, timeout time.Duration) (*NetworkSource, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("network statistics command must not be empty")
	}
	return &NetworkSource{
		command: command,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

func (n *NetworkSource) Name() string { return "network" }

func (n *NetworkSource) FieldNames() []string {
	return []string{FieldNetworkSent, FieldNetworkReceived}
}

func (n *NetworkSource) Sample(ctx context.Context) (Values, error) {
	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	out, err := exec.CommandContext(cctx, n.command[0], n.command[1:]...).Output()
	if err != nil {
		return Values{}, fmt.Errorf("run %s: %w", n.command[0], err)
	}

	received, sent, err := parseByteTotals(string(out))
	if err != nil {
		return Values{}, fmt.Errorf("parse %s output: %w", n.command[0], err)
	}

	downRate, upRate := n.rates(received, sent)
	return Values{
		Fields: map[string]float64{
			FieldNetworkSent:     upRate,
			FieldNetworkReceived: downRate,
		},
	}, nil
}

// parseByteTotals extracts the cumulative received/sent byte counters
// from the tool's interface-statistics table, i.e. the row
//
//	Bytes    <received>    <sent>
func parseByteTotals(out string) (received, sent uint64, err error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "Bytes" {
			continue
		}
		received, err = strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("received counter %q: %w", fields[1], err)
		}
		sent, err = strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("sent counter %q: %w", fields[2], err)
		}
		return received, sent, nil
	}
	return 0, 0, fmt.Errorf("no byte-totals row found")
}

// rates converts the cumulative counters into bytes/sec relative to the
// previously retained counters, then retains the new ones.
func (n *NetworkSource) rates(received, sent uint64) (downRate, upRate float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	elapsed := now.Sub(n.prevAt).Seconds()

	// Counter wrap or reboot resets the baseline.
	if !n.prevAt.IsZero() && elapsed > 0 && received >= n.prevReceived && sent >= n.prevSent {
		downRate = float64(received-n.prevReceived) / elapsed
		upRate = float64(sent-n.prevSent) / elapsed
	}

	n.prevReceived = received
	n.prevSent = sent
	n.prevAt = now
	return downRate, upRate
}
