package distributions

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func TestWeightedChoice_ConvergesToWeights(t *testing.T) {
	r := newRand()
	options := []string{"Male", "Female", "Non-binary"}
	weights := []float64{58, 38, 4}

	const n = 100000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		v, err := WeightedChoice(r, options, weights)
		require.NoError(t, err)
		counts[v]++
	}
	assert.InDelta(t, 0.58, float64(counts["Male"])/n, 0.01)
	assert.InDelta(t, 0.38, float64(counts["Female"])/n, 0.01)
	assert.InDelta(t, 0.04, float64(counts["Non-binary"])/n, 0.005)
}

func TestWeightedChoice_InvalidInput(t *testing.T) {
	r := newRand()
	_, err := WeightedChoice(r, []string{"a"}, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrInvalidWeights))
	_, err = WeightedChoice(r, []string{"a", "b"}, []float64{0, 0})
	assert.True(t, errors.Is(err, ErrInvalidWeights))
	_, err = WeightedChoice(r, []string{"a", "b"}, []float64{1, -1})
	assert.True(t, errors.Is(err, ErrInvalidWeights))
}

func TestBoundedDraws(t *testing.T) {
	r := newRand()
	for i := 0; i < 5000; i++ {
		age := Age(r)
		assert.GreaterOrEqual(t, age, 22.0)
		assert.LessOrEqual(t, age, 65.0)

		rating := BetaRating(r)
		assert.GreaterOrEqual(t, rating, 1.0)
		assert.LessOrEqual(t, rating, 5.0)

		tenure := Tenure(r, 3.3, 12)
		assert.GreaterOrEqual(t, tenure, 0.1)
		assert.LessOrEqual(t, tenure, 12.0)

		n := IntBetween(r, 2, 5)
		assert.GreaterOrEqual(t, n, 2)
		assert.LessOrEqual(t, n, 5)
	}
}

func TestBetaRating_SkewsHigh(t *testing.T) {
	r := newRand()
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += BetaRating(r)
	}
	// mean of Beta(5,2) is 5/7, scaled to [1,5]
	assert.InDelta(t, 1+4*5.0/7.0, sum/n, 0.03)
}

func TestLogNormalSalary_MedianCentered(t *testing.T) {
	r := newRand()
	const n = 20001
	var below int
	for i := 0; i < n; i++ {
		if LogNormalSalary(r, 100000, 0.1) < 100000 {
			below++
		}
	}
	assert.InDelta(t, 0.5, float64(below)/n, 0.02)
}

func TestPoisson_Mean(t *testing.T) {
	r := newRand()
	const n = 20000
	var sum int
	for i := 0; i < n; i++ {
		sum += Poisson(r, 2.5)
	}
	assert.InDelta(t, 2.5, float64(sum)/n, 0.05)
	assert.Equal(t, 0, Poisson(r, 0))
}

func TestPayGapFactor(t *testing.T) {
	r := newRand()
	const n = 20000
	var male, female float64
	for i := 0; i < n; i++ {
		male += PayGapFactor(r, "Male", "White")
		female += PayGapFactor(r, "Female", "Black/African American")
	}
	assert.InDelta(t, 1.0, male/n, 0.002)
	assert.InDelta(t, 0.89, female/n, 0.002)
}

func TestBirthDate(t *testing.T) {
	r := newRand()
	hire := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		b := BirthDate(r, hire)
		years := hire.Sub(b).Hours() / 24 / 365.25
		assert.GreaterOrEqual(t, math.Ceil(years), 22.0)
		assert.LessOrEqual(t, years, 65.0)
	}
}

func TestRandomDate(t *testing.T) {
	r := newRand()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)
	for i := 0; i < 200; i++ {
		d := RandomDate(r, start, end)
		assert.False(t, d.Before(start))
		assert.True(t, d.Before(end))
	}
	assert.Equal(t, start, RandomDate(r, start, start))
}
