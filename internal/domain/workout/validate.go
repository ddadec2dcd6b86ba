package workout

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Policy selects how strictly inputs are checked.
//
// The zero value keeps the lenient rule where cycling elevation only has to be
// finite. StrictElevation additionally requires it to be positive.
type Policy struct {
	StrictElevation bool
}

// AllFinite reports whether no value is NaN or infinite.
func AllFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AllPositive reports whether every value is strictly greater than zero.
func AllPositive(vals ...float64) bool {
	for _, v := range vals {
		if !(v > 0) {
			return false
		}
	}
	return true
}

type input struct {
	name     string
	value    float64
	positive bool
}

// ValidateRunning requires distance, duration and cadence to be finite and positive.
func ValidateRunning(distance, duration, cadence float64) error {
	if AllFinite(distance, duration, cadence) && AllPositive(distance, duration, cadence) {
		return nil
	}
	return firstInvalid(KindRunning,
		input{"distance", distance, true},
		input{"duration", duration, true},
		input{"cadence", cadence, true},
	)
}

// ValidateCycling requires all three inputs to be finite but only distance and
// duration to be positive, unless the policy asks for strict elevation.
func ValidateCycling(distance, duration, elevation float64, p Policy) error {
	ok := AllFinite(distance, duration, elevation) && AllPositive(distance, duration)
	if ok && p.StrictElevation {
		ok = AllPositive(elevation)
	}
	if ok {
		return nil
	}
	return firstInvalid(KindCycling,
		input{"distance", distance, true},
		input{"duration", duration, true},
		input{"elevationGain", elevation, p.StrictElevation},
	)
}

func validateCoords(kind Kind, c Coords) error {
	if c.Valid() {
		return nil
	}
	v := c[0]
	if AllFinite(v) {
		v = c[1]
	}
	return &ValidationError{Kind: kind, Field: "coords", Value: v}
}

// firstInvalid reports finiteness failures before positivity failures.
func firstInvalid(kind Kind, inputs ...input) error {
	for _, in := range inputs {
		if !AllFinite(in.value) {
			return &ValidationError{Kind: kind, Field: in.name, Value: in.value}
		}
	}
	for _, in := range inputs {
		if in.positive && !AllPositive(in.value) {
			return &ValidationError{Kind: kind, Field: in.name, Value: in.value}
		}
	}
	return &ValidationError{Kind: kind, Field: "unknown", Value: math.NaN()}
}

// ParseNumber converts a raw form value the way a browser number coercion does:
// blank is 0, unparsable text is NaN and overflow saturates to ±Inf.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") ||
		strings.Contains(lower, "x") || strings.Contains(lower, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}
