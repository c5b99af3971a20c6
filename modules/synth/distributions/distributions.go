// Package distributions draws the statistical shapes used by the generators.
// Every function takes the run's shared *rand.Rand.
package distributions

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"

	"github.com/nicolasimarinw/hr-ontology/modules/synth/profile"
)

var ErrInvalidWeights = errors.New("invalid weights")

// WeightedChoice picks one option; weights are normalized.
func WeightedChoice(r *rand.Rand, options []string, weights []float64) (string, error) {
	if len(options) == 0 || len(options) != len(weights) {
		return "", errors.Wrapf(ErrInvalidWeights, "%d options, %d weights", len(options), len(weights))
	}
	var total float64
	for _, w := range weights {
		if w < 0 {
			return "", errors.Wrapf(ErrInvalidWeights, "negative weight %v", w)
		}
		total += w
	}
	if total <= 0 {
		return "", errors.Wrap(ErrInvalidWeights, "weights sum to zero")
	}
	x := r.Float64() * total
	var acc float64
	for i, w := range weights {
		acc += w
		if x < acc {
			return options[i], nil
		}
	}
	return options[len(options)-1], nil
}

// Pick draws from a profile distribution. Profile weights are validated on
// load, so a failure here is a programming error.
func Pick(r *rand.Rand, dist []profile.Weighted) string {
	options := make([]string, len(dist))
	weights := make([]float64, len(dist))
	for i, w := range dist {
		options[i] = w.Value
		weights[i] = w.Weight
	}
	v, err := WeightedChoice(r, options, weights)
	if err != nil {
		panic(err)
	}
	return v
}

func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntBetween returns an integer in [lo, hi].
func IntBetween(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

func Normal(r *rand.Rand, mean, std float64) float64 {
	return mean + std*r.NormFloat64()
}

func ClippedNormal(r *rand.Rand, mean, std, lo, hi float64) float64 {
	return Clip(Normal(r, mean, std), lo, hi)
}

func Clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Age draws an age at hire: N(35, 9) clipped to [22, 65].
func Age(r *rand.Rand) float64 {
	return ClippedNormal(r, 35, 9, 22, 65)
}

// BirthDate derives a birth date from an age drawn at the reference date.
func BirthDate(r *rand.Rand, reference time.Time) time.Time {
	days := int(Age(r) * 365.25)
	return reference.AddDate(0, 0, -days)
}

// LogNormalSalary draws around median with log-space spread sigma.
func LogNormalSalary(r *rand.Rand, median, sigma float64) float64 {
	return math.Exp(math.Log(median) + sigma*r.NormFloat64())
}

// Gamma draws Gamma(shape, 1) with the Marsaglia-Tsang method.
func Gamma(r *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := r.Float64()
		return Gamma(r, shape+1) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := r.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := r.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

func Beta(r *rand.Rand, a, b float64) float64 {
	x := Gamma(r, a)
	y := Gamma(r, b)
	return x / (x + y)
}

// BetaRating is Beta(5,2) rescaled to [1,5]; most ratings cluster high.
func BetaRating(r *rand.Rand) float64 {
	return Beta(r, 5, 2)*4 + 1
}

// Tenure draws years of service from an exponential with the given scale,
// clipped to [0.1, maxYears].
func Tenure(r *rand.Rand, scale, maxYears float64) float64 {
	return Clip(r.ExpFloat64()*scale, 0.1, maxYears)
}

// Poisson draws a count with Knuth's method.
func Poisson(r *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= r.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

var (
	genderGap = map[string]float64{
		"Female":     -0.06,
		"Non-binary": -0.04,
	}
	ethnicityGap = map[string]float64{
		"Black/African American": -0.05,
		"Hispanic/Latino":        -0.04,
		"Two or More Races":      -0.02,
		"Other":                  -0.02,
	}
)

// PayGapFactor is the multiplicative adjustment applied to pay: a demographic
// gap plus N(0, 0.02) noise.
func PayGapFactor(r *rand.Rand, gender, ethnicity string) float64 {
	return 1 + genderGap[gender] + ethnicityGap[ethnicity] + Normal(r, 0, 0.02)
}

// ApplyPayGap scales amount by PayGapFactor.
func ApplyPayGap(r *rand.Rand, amount float64, gender, ethnicity string) float64 {
	return amount * PayGapFactor(r, gender, ethnicity)
}

var (
	genderRatingBias = map[string]float64{
		"Female":     -0.15,
		"Non-binary": -0.10,
	}
	ethnicityRatingBias = map[string]float64{
		"Asian":                  0.05,
		"Black/African American": -0.15,
		"Hispanic/Latino":        -0.10,
		"Two or More Races":      -0.05,
		"Other":                  -0.05,
	}
)

// RatingAdjustment is the demographic bias embedded in review ratings.
func RatingAdjustment(gender, ethnicity string) float64 {
	return genderRatingBias[gender] + ethnicityRatingBias[ethnicity]
}

// RandomDate returns a day in [start, end).
func RandomDate(r *rand.Rand, start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, r.IntN(days))
}

func RoundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
