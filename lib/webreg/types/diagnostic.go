package types

import "fmt"

// Diagnostic describes one row or field the normalizer could not fully
// represent. Diagnostics are warnings: the surrounding batch still
// succeeds, minus the affected value.
type Diagnostic struct {
	// Stage names the normalization pass, e.g. "course" or "schedule".
	Stage string
	// Key identifies the offending row, usually a section code or id.
	Key string
	// Field is the wire field that failed, when one is identifiable.
	Field string
	// Reason is a short human-readable explanation.
	Reason string
}

func (d Diagnostic) String() string {
	if d.Field == "" {
		return fmt.Sprintf("%s %q: %s", d.Stage, d.Key, d.Reason)
	}
	return fmt.Sprintf("%s %q field %s: %s", d.Stage, d.Key, d.Field, d.Reason)
}
