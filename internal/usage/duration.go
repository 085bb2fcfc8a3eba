package usage

import (
	"math"
	"time"
)

// FormatDuration renders seconds as compact h/m/s text ("2m10s", "1h2m10s").
// Fractions are truncated to whole seconds; negative or NaN input renders as
// "0s" so malformed source rows stay printable.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "0s"
	}
	d := time.Duration(int64(seconds)) * time.Second
	return d.String()
}
