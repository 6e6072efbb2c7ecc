package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netstatOutput = `Interface Statistics

                           Received            Sent

Bytes                    1442935422        97616958
Unicast packets             1872544          924408
Non-unicast packets           26062            7786
Discards                          0               0
Errors                            0               0
Unknown protocols                 0
`

func TestParseByteTotals(t *testing.T) {
	tests := []struct {
		name         string
		out          string
		wantReceived uint64
		wantSent     uint64
		wantErr      bool
	}{
		{
			name:         "interface statistics table",
			out:          netstatOutput,
			wantReceived: 1442935422,
			wantSent:     97616958,
		},
		{
			name:         "minimal row",
			out:          "Bytes 100 200\n",
			wantReceived: 100,
			wantSent:     200,
		},
		{
			name:    "missing totals row",
			out:     "Unicast packets 1 2\n",
			wantErr: true,
		},
		{
			name:    "non-numeric counter",
			out:     "Bytes abc 200\n",
			wantErr: true,
		},
		{
			name:    "empty output",
			out:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received, sent, err := parseByteTotals(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReceived, received)
			assert.Equal(t, tt.wantSent, sent)
		})
	}
}

func TestNetworkRates(t *testing.T) {
	src, err := NewNetworkSource([]string{"netstat", "-e"}, time.Second)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return clock }

	// First observation only establishes the baseline.
	down, up := src.rates(1000, 500)
	assert.Zero(t, down)
	assert.Zero(t, up)

	clock = clock.Add(10 * time.Second)
	down, up = src.rates(2000, 1000)
	assert.Equal(t, 100.0, down)
	assert.Equal(t, 50.0, up)

	// A counter reset resets the baseline instead of going negative.
	clock = clock.Add(10 * time.Second)
	down, up = src.rates(100, 50)
	assert.Zero(t, down)
	assert.Zero(t, up)

	clock = clock.Add(5 * time.Second)
	down, up = src.rates(600, 300)
	assert.Equal(t, 100.0, down)
	assert.Equal(t, 50.0, up)
}

func TestNewNetworkSourceRejectsEmptyCommand(t *testing.T) {
	_, err := NewNetworkSource(nil, time.Second)
	assert.Error(t, err)
}
