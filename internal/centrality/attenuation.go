package centrality

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoAttenuations is returned when no attenuation coefficient is configured.
var ErrNoAttenuations = errors.New("centrality: no attenuation coefficients")

// ErrInvalidAttenuation is returned for a coefficient outside (0, 1].
var ErrInvalidAttenuation = errors.New("centrality: attenuation must be in (0, 1]")

// ErrDuplicateAttenuation is returned when two coefficients map to the same
// column name.
var ErrDuplicateAttenuation = errors.New("centrality: duplicate attenuation column")

// Attenuations is the ordered set of decay coefficients. The order fixes the
// order of the neighborhood columns in the output.
type Attenuations []float64

// DefaultAttenuations returns 0.05, 0.15, ..., 0.95.
func DefaultAttenuations() Attenuations {
	out := make(Attenuations, 0, 10)
	for pct := 5; pct <= 95; pct += 10 {
		out = append(out, float64(pct)/100)
	}
	return out
}

// NeighborhoodColumn returns the output column name for alpha, e.g.
// "neighborhood_35" for 0.35.
func NeighborhoodColumn(alpha float64) string {
	return fmt.Sprintf("neighborhood_%d", int(math.Round(alpha*100)))
}

// Columns returns the neighborhood column names in order.
func (a Attenuations) Columns() []string {
	names := make([]string, len(a))
	for i, alpha := range a {
		names[i] = NeighborhoodColumn(alpha)
	}
	return names
}

// Validate checks that every coefficient is in (0, 1] and that column names
// are unique.
func (a Attenuations) Validate() error {
	if len(a) == 0 {
		return ErrNoAttenuations
	}
	seen := make(map[string]float64, len(a))
	for _, alpha := range a {
		if !(alpha > 0 && alpha <= 1) {
			return fmt.Errorf("%w: %v", ErrInvalidAttenuation, alpha)
		}
		name := NeighborhoodColumn(alpha)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %v and %v both map to %s", ErrDuplicateAttenuation, prev, alpha, name)
		}
		seen[name] = alpha
	}
	return nil
}
