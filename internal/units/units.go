// Package units converts speeds from the pipeline's native meters per
// second into display units.
package units

import "fmt"

// Supported unit names.
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
)

const (
	mpsToMph  = 2.2369362920544
	mpsToKmph = 3.6
)

// IsValid reports whether unit names a supported speed unit.
func IsValid(unit string) bool {
	switch unit {
	case MPS, MPH, KMPH:
		return true
	}
	return false
}

// ConvertSpeed converts a speed in m/s to the target unit. Stored and
// computed speeds are always m/s; conversion happens only at display.
func ConvertSpeed(speedMps float64, unit string) (float64, error) {
	switch unit {
	case MPS:
		return speedMps, nil
	case MPH:
		return speedMps * mpsToMph, nil
	case KMPH:
		return speedMps * mpsToKmph, nil
	}
	return 0, fmt.Errorf("unsupported speed unit %q (expected mps, mph, or kmph)", unit)
}

// ConvertSpeeds converts a slice of m/s speeds to the target unit.
func ConvertSpeeds(speedsMps []float64, unit string) ([]float64, error) {
	out := make([]float64, len(speedsMps))
	for i, s := range speedsMps {
		v, err := ConvertSpeed(s, unit)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
