package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/eccentricity-posteriors/common"
)

func TestNewSampleSetDropsNonFinite(t *testing.T) {
	input := []float64{0.1, math.NaN(), 0.2, math.Inf(1), math.Inf(-1), 0.3}
	s := NewSampleSet(input)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Dropped())
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, s.Values())

	// the set does not alias its input or its outputs
	input[0] = 9
	values := s.Values()
	values[1] = 9
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, s.Values())
}

func TestSampleSetDegenerate(t *testing.T) {
	assert.True(t, NewSampleSet([]float64{0.05, 0.05, 0.05}).IsDegenerate())
	assert.True(t, NewSampleSet([]float64{0.05}).IsDegenerate())
	assert.False(t, NewSampleSet([]float64{0.05, 0.06}).IsDegenerate())
	assert.False(t, NewSampleSet(nil).IsDegenerate())
	assert.True(t, NewSampleSet(nil).IsEmpty())
}

func TestSampleSetFingerprint(t *testing.T) {
	a := NewSampleSet([]float64{0.3, 0.1, 0.2})
	b := NewSampleSet([]float64{0.1, 0.2, 0.3})
	c := NewSampleSet([]float64{0.1, 0.2, 0.4})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, a.Sorted())
}

func TestBoundaryConfigValidate(t *testing.T) {
	assert.NoError(t, BoundaryConfig{Mode: LinearBoundary}.Validate())
	assert.NoError(t, BoundaryConfig{Mode: LogBoundary, LowerBound: 1e-4}.Validate())

	err := BoundaryConfig{Mode: LogBoundary}.Validate()
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
	err = BoundaryConfig{Mode: LogBoundary, LowerBound: -1}.Validate()
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
	err = BoundaryConfig{Mode: BoundaryMode(7)}.Validate()
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))

	assert.Equal(t, 0.0, BoundaryConfig{Mode: LinearBoundary, LowerBound: 3}.PhysicalBoundary())
	assert.Equal(t, 1e-4, BoundaryConfig{Mode: LogBoundary, LowerBound: 1e-4}.PhysicalBoundary())
}

func TestTextModes(t *testing.T) {
	var mode BoundaryMode
	require.NoError(t, mode.UnmarshalText([]byte("LOG")))
	assert.Equal(t, LogBoundary, mode)
	require.NoError(t, mode.UnmarshalText([]byte("linear")))
	assert.Equal(t, LinearBoundary, mode)
	assert.Error(t, mode.UnmarshalText([]byte("sqrt")))

	var kind IntervalKind
	require.NoError(t, kind.UnmarshalText([]byte("upper_bound")))
	assert.Equal(t, IntervalUpperBound, kind)
	require.NoError(t, kind.UnmarshalText([]byte("symmetric")))
	assert.Equal(t, IntervalSymmetric, kind)
	assert.Error(t, kind.UnmarshalText([]byte("two_sided")))

	text, err := IntervalSymmetric.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "symmetric", string(text))
}

func TestGridConstructors(t *testing.T) {
	g, err := Linspace(0, 0.2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())
	assert.Equal(t, 0.0, g.Min())
	assert.Equal(t, 0.2, g.Max())
	assert.InDelta(t, 0.05, g.At(1), 1e-15)

	lg, err := Logspace(1e-5, 0.2, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, lg.Len())
	assert.Equal(t, 1e-5, lg.Min())
	assert.Equal(t, 0.2, lg.Max())

	_, err = Logspace(0, 0.2, 10)
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
	_, err = Linspace(0, 1, 1)
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
	_, err = NewEvaluationGrid([]float64{0, 0.1, 0.1})
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
	_, err = NewEvaluationGrid([]float64{0, math.NaN()})
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
	_, err = Linspace(1, 0, 10)
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
}

func TestGridEqual(t *testing.T) {
	a, err := Linspace(0, 0.2, 100)
	require.NoError(t, err)
	b, err := Linspace(0, 0.2, 100)
	require.NoError(t, err)
	c, err := Linspace(0, 0.2, 101)
	require.NoError(t, err)
	d, err := Linspace(0, 0.3, 100)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))

	points := a.Points()
	points[0] = -1
	assert.Equal(t, 0.0, a.Min())
}

func TestCredibleIntervalErrors(t *testing.T) {
	sym := CredibleInterval{
		Kind:   IntervalSymmetric,
		Median: 0.1,
		Lower:  PercentileValue{Value: 0.04, Percentile: 5},
		Upper:  PercentileValue{Value: 0.13, Percentile: 95},
	}
	assert.InDelta(t, 0.06, sym.MinusError(), 1e-12)
	assert.InDelta(t, 0.03, sym.PlusError(), 1e-12)

	upper := CredibleInterval{
		Kind:   IntervalUpperBound,
		Median: 0.01,
		Upper:  PercentileValue{Value: 0.04, Percentile: 90},
	}
	assert.Equal(t, 0.0, upper.MinusError())
	assert.Equal(t, 0.0, upper.PlusError())
}

func TestDensityCurvePoints(t *testing.T) {
	g, err := Linspace(0, 1, 3)
	require.NoError(t, err)
	_, err = NewDensityCurve(g, []float64{1, 2})
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))

	c, err := NewDensityCurve(g, []float64{0, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, []Density{{X: 0, Value: 0}, {X: 0.5, Value: 2}, {X: 1, Value: 0}}, c.Points())
}

func TestGridJSON(t *testing.T) {
	grid, err := Linspace(0, 0.2, 3)
	require.NoError(t, err)

	data, err := json.Marshal(grid)
	require.NoError(t, err)
	assert.JSONEq(t, `[0, 0.1, 0.2]`, string(data))

	var decoded EvaluationGrid
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, grid.Equal(decoded))

	err = json.Unmarshal([]byte(`[0.2, 0.1]`), &decoded)
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
}
