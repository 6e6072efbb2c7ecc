package collector

import (
	"context"
	"errors"
)

// ErrSourceDisabled marks a source that was switched off by configuration.
// The sampler still fills the source's fields with the sentinel, but logs
// the condition at debug level instead of warning every tick.
var ErrSourceDisabled = errors.New("source disabled by configuration")

// Source is the contract every metric provider must satisfy, whether it is
// backed by an OS query or an external subprocess.
type Source interface {
	// Name identifies the source in logs, e.g. "cpu" or "gpu".
	Name() string

	// FieldNames lists every numeric field this source contributes to a
	// snapshot. The sampler uses it to substitute the sentinel when
	// Sample fails, so a snapshot always carries the full field set.
	FieldNames() []string

	// Sample queries the source once. The context bounds any blocking
	// OS or subprocess call.
	Sample(ctx context.Context) (Values, error)
}

// Disabled returns a Source that declares the given fields but never
// samples anything; every call yields ErrSourceDisabled. Used for metric
// categories excluded by configuration, which by convention publish the
// same sentinel as a failed source.
func Disabled(name string, fields []string) Source {
	return &disabledSource{name: name, fields: fields}
}

type disabledSource struct {
	name   string
	fields []string
}

func (d *disabledSource) Name() string         { return d.name }
func (d *disabledSource) FieldNames() []string { return d.fields }

func (d *disabledSource) Sample(context.Context) (Values, error) {
	return Values{}, ErrSourceDisabled
}
