package publisher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sysagent/collector"
	"sysagent/config"
)

// Publisher encodes one snapshot per tick into InfluxDB line protocol and
// performs exactly one write request against the v2 write endpoint. There
// is no queueing and no retry: a failed write is a failed tick.
type Publisher struct {
	WriteURL    string       // fully formed .../api/v2/write?org=...&bucket=...
	Token       string       // InfluxDB API token
	Measurement string       // measurement name for every point
	Host        string       // value of the "host" tag
	HTTP        *http.Client // injected for testability
	Log         *zap.Logger
}

// New returns a publisher wired to the configured InfluxDB instance.
func New(cfg *config.Config, log *zap.Logger) *Publisher {
	q := url.Values{}
	q.Set("org", cfg.InfluxDBOrg)
	q.Set("bucket", cfg.InfluxDBBucket)

	return &Publisher{
		WriteURL:    strings.TrimRight(cfg.InfluxDBURL, "/") + "/api/v2/write?" + q.Encode(),
		Token:       cfg.InfluxDBToken,
		Measurement: cfg.Measurement,
		Host:        cfg.Hostname,
		HTTP:        &http.Client{Timeout: cfg.HTTPTimeout},
		Log:         log,
	}
}

// Send writes the snapshot as a single point. Any transport, HTTP or auth
// failure is returned to the caller; the snapshot is not replayed.
func (p *Publisher) Send(ctx context.Context, snap *collector.Snapshot) error {
	body := Encode(p.Measurement, p.Host, snap)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.WriteURL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("build write request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.Token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("influxdb write request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("influxdb returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	p.Log.Debug("snapshot published",
		zap.Int("status", resp.StatusCode),
		zap.Int("fields", len(snap.Fields)))
	return nil
}

// Encode renders a snapshot as one line-protocol line with a nanosecond
// timestamp. Field keys are emitted in sorted order (numeric fields first,
// then string fields), so encoding the same snapshot twice produces
// byte-identical output. Sentinel values are written verbatim.
func Encode(measurement, host string, snap *collector.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(escapeMeasurement(measurement))
	sb.WriteString(",host=")
	sb.WriteString(escapeTag(host))
	sb.WriteByte(' ')

	parts := make([]string, 0, len(snap.Fields)+len(snap.Labels))
	for _, k := range sortedKeys(snap.Fields) {
		parts = append(parts, escapeTag(k)+"="+strconv.FormatFloat(snap.Fields[k], 'f', -1, 64))
	}
	for _, k := range sortedKeys(snap.Labels) {
		parts = append(parts, escapeTag(k)+`="`+escapeString(snap.Labels[k])+`"`)
	}
	sb.WriteString(strings.Join(parts, ","))

	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatInt(snap.Timestamp.UnixNano(), 10))
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Line-protocol escaping: measurements escape commas and spaces; tag and
// field keys additionally escape equals signs; string field values escape
// backslashes and double quotes.

var (
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
	tagEscaper         = strings.NewReplacer(",", `\,`, " ", `\ `, "=", `\=`)
	stringEscaper      = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

func escapeMeasurement(s string) string { return measurementEscaper.Replace(s) }
func escapeTag(s string) string         { return tagEscaper.Replace(s) }
func escapeString(s string) string      { return stringEscaper.Replace(s) }
