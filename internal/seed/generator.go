package seed

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/mapty/internal/domain/workout"
)

// Generator produces random workouts around a center.
type Generator struct {
	rng      *rand.Rand
	center   workout.Coords
	radiusKm float64
	invalid  int
}

// NewGenerator creates a generator. The same seed yields the same entries.
func NewGenerator(seed uint64, center workout.Coords, radiusKm float64, invalidPct int) *Generator {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	invalidPct = min(max(invalidPct, 0), percent)
	return &Generator{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		center:   center,
		radiusKm: radiusKm,
		invalid:  invalidPct,
	}
}

// Generate returns n entries.
func (g *Generator) Generate(n int) []Entry {
	out := make([]Entry, 0, n)
	for range n {
		out = append(out, g.next())
	}
	return out
}

func (g *Generator) next() Entry {
	e := Entry{At: g.position(), Valid: true}
	if g.rng.IntN(2) == 0 {
		e.Form = g.running()
	} else {
		e.Form = g.cycling()
	}
	if g.invalid > 0 && g.rng.IntN(percent) < g.invalid {
		g.spoil(&e.Form)
		e.Valid = false
	}
	return e
}

// position picks a uniformly distributed point within the radius.
func (g *Generator) position() workout.Coords {
	r := g.radiusKm * math.Sqrt(g.rng.Float64())
	theta := 2 * math.Pi * g.rng.Float64()
	dLat := r * math.Cos(theta) / kmPerDegreeLat
	dLng := r * math.Sin(theta) / (kmPerDegreeLat * math.Max(math.Cos(g.center.Lat()*math.Pi/180), 0.01))
	lat := math.Max(-90, math.Min(90, g.center.Lat()+dLat))
	lng := math.Mod(g.center.Lng()+dLng+540, 360) - 180
	return workout.Coords{round(lat, 6), round(lng, 6)}
}

func (g *Generator) running() Form {
	distance := round(g.between(runDistanceMin, runDistanceMax), 1)
	duration := math.Round(distance * g.between(runPaceMin, runPaceMax))
	return Form{
		Type:     string(workout.KindRunning),
		Distance: format(distance),
		Duration: format(duration),
		Cadence:  strconv.Itoa(runCadenceMin + g.rng.IntN(runCadenceMax-runCadenceMin+1)),
	}
}

func (g *Generator) cycling() Form {
	distance := round(g.between(rideDistanceMin, rideDistanceMax), 1)
	duration := math.Round(distance / g.between(rideSpeedMin, rideSpeedMax) * 60)
	return Form{
		Type:          string(workout.KindCycling),
		Distance:      format(distance),
		Duration:      format(duration),
		ElevationGain: strconv.Itoa(rideElevationMin + g.rng.IntN(rideElevationMax-rideElevationMin+1)),
	}
}

// spoil breaks one required field so the server rejects the form.
func (g *Generator) spoil(f *Form) {
	bad := []string{"-" + f.Distance, "0", "abc", ""}[g.rng.IntN(4)]
	if g.rng.IntN(2) == 0 {
		f.Distance = bad
	} else {
		f.Duration = bad
	}
}

func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func format(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
