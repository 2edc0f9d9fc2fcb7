package pipeline

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
	"github.com/uyouii/eccentricity-posteriors/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func halfNormal(n int, sigma float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	res := make([]float64, n)
	for i := range res {
		res[i] = math.Abs(r.NormFloat64() * sigma)
	}
	return res
}

func newTestPipeline(t *testing.T, modify func(c *Config)) *Pipeline {
	t.Helper()
	cfg, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)
	if modify != nil {
		modify(&cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func testContext(t *testing.T) context.Context {
	return utils.WithLogger(context.Background(), zaptest.NewLogger(t))
}

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return utils.WithLogger(context.Background(), zap.New(core)), logs
}

func posterior(seed int64) Posterior {
	ecc := halfNormal(2000, 0.03, seed)
	return Posterior{
		"eccentricity":     ecc,
		"log_eccentricity": ecc,
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(DefaultConfig())
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
}

func TestEstimateUpperBound(t *testing.T) {
	p := newTestPipeline(t, nil)

	est, err := p.Estimate(testContext(t), "GW190425", "teob", "eccentricity", halfNormal(2000, 0.03, 1))
	require.NoError(t, err)
	assert.Empty(t, est.Warnings)

	require.True(t, est.Curve.Normalized)
	assert.True(t, est.Curve.Grid.Equal(p.Grid()))
	assert.Equal(t, model.IntervalUpperBound, est.Interval.Kind)
	assert.Equal(t, 90.0, est.Interval.Upper.Percentile)
	assert.False(t, est.Interval.Overridden)
	assert.LessOrEqual(t, est.Interval.Median, est.Interval.Upper.Value)
	assert.InDelta(t, 0.9, est.CurveMassBelowUpper, 0.03)
	assert.Greater(t, est.FitMassBelowUpper, 0.5)
	assert.Less(t, est.FitMassBelowUpper, 1.0)
	assert.Greater(t, est.Fit.Sigma, 0.0)
}

func TestEstimateDropsNonFinite(t *testing.T) {
	p := newTestPipeline(t, nil)
	samples := append(halfNormal(500, 0.03, 2), math.NaN(), math.Inf(1))

	est, err := p.Estimate(testContext(t), "GW190425", "teob", "eccentricity", samples)
	require.NoError(t, err)
	assert.Equal(t, 500, est.Samples.Len())
	assert.Len(t, est.Warnings, 1)
}

func TestEstimateOverride(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx := testContext(t)

	est, err := p.Estimate(ctx, "GW200105", "teob", "eccentricity", halfNormal(500, 0.03, 3))
	require.NoError(t, err)
	assert.True(t, est.Interval.Overridden)
	assert.Equal(t, model.IntervalSymmetric, est.Interval.Kind)
	assert.InDelta(t, 0.135, est.Interval.Median, 1e-12)
	assert.InDelta(t, 0.015, est.Interval.MinusError(), 1e-12)
	assert.InDelta(t, 0.016, est.Interval.PlusError(), 1e-12)

	// the override is symmetric, so upper-bound events compute from samples
	est, err = p.Estimate(ctx, "GW190425", "teob", "eccentricity", halfNormal(500, 0.03, 3))
	require.NoError(t, err)
	assert.False(t, est.Interval.Overridden)

	est, err = p.Estimate(ctx, "GW200105", "seob", "eccentricity", halfNormal(500, 0.03, 3))
	require.NoError(t, err)
	assert.False(t, est.Interval.Overridden)
	assert.Equal(t, model.IntervalSymmetric, est.Interval.Kind)
	assert.LessOrEqual(t, est.Interval.Lower.Value, est.Interval.Median)
	assert.LessOrEqual(t, est.Interval.Median, est.Interval.Upper.Value)
}

func TestEstimateErrors(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx := testContext(t)

	_, err := p.Estimate(ctx, "GW190425", "teob", "log_eccentricity", []float64{1e-6, 5e-5, 9e-5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorEmptyAfterFilter))
	var triple *common.TripleError
	require.True(t, errors.As(err, &triple))
	assert.Equal(t, "GW190425", triple.Event)
	assert.Equal(t, "teob", triple.Model)
	assert.Equal(t, "log_eccentricity", triple.Parameter)

	_, err = p.Estimate(ctx, "GW190425", "teob", "eccentricity", nil)
	assert.True(t, errors.Is(err, common.ErrorEmptySampleSet))

	_, err = p.Estimate(ctx, "GW190425", "teob", "chirp_mass", []float64{1.2})
	assert.True(t, errors.Is(err, common.ErrorInvalidValue))
}

func TestEstimateZeroAreaIsWarning(t *testing.T) {
	p := newTestPipeline(t, nil)

	// a degenerate set off the grid gives an all-zero curve
	est, err := p.Estimate(testContext(t), "GW190425", "teob", "eccentricity", []float64{0.5, 0.5, 0.5})
	require.NoError(t, err)
	require.Len(t, est.Warnings, 1)
	assert.False(t, est.Curve.Normalized)
	assert.Equal(t, 0.0, est.CurveMassBelowUpper)
	assert.Equal(t, 0.5, est.Interval.Median)
	assert.Equal(t, 0.5, est.Interval.Upper.Value)
}

func TestCompareIsolatesFailures(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, logs := observedContext()

	models := []ModelPosterior{
		{Model: "teob", Posterior: posterior(1)},
		{Model: "seob", Posterior: Posterior{"chirp_mass": {1.2}}},
		{Model: "teobHM", Posterior: Posterior{"eccentricity": {}}},
		{Model: "morras", Posterior: posterior(2)},
	}
	cmp, err := p.Compare(ctx, "GW190425", "eccentricity", models)
	require.NoError(t, err)

	assert.Equal(t, []string{"teob", "morras"}, cmp.Models())
	require.Len(t, cmp.Skips, 1)
	assert.Equal(t, "seob", cmp.Skips[0].Model)
	require.Len(t, cmp.Failures, 1)
	assert.Equal(t, "teobHM", cmp.Failures[0].Model)
	assert.True(t, errors.Is(cmp.Failures[0].Err, common.ErrorEmptySampleSet))

	teob, ok := cmp.Entry("teob")
	require.True(t, ok)
	assert.Equal(t, "orange", teob.Color)

	assert.Equal(t, 1, logs.FilterMessage("parameter missing, skip").Len())
	assert.Equal(t, 1, logs.FilterMessage("estimate failed").Len())
}

func TestCompareParallelKeepsOrder(t *testing.T) {
	p := newTestPipeline(t, func(c *Config) { c.Workers = 4 })

	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	models := make([]ModelPosterior, 0, len(names))
	for i, name := range names {
		models = append(models, ModelPosterior{Model: name, Posterior: posterior(int64(i + 10))})
	}
	cmp, err := p.Compare(testContext(t), "GW190425", "eccentricity", models)
	require.NoError(t, err)
	assert.Equal(t, names, cmp.Models())
	assert.Empty(t, cmp.Failures)
	assert.Empty(t, cmp.DuplicateSources())
}

func TestCompareFlagsDuplicateSources(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, logs := observedContext()

	shared := posterior(5)
	models := []ModelPosterior{
		{Model: "teob", Posterior: posterior(4)},
		{Model: "seobHM", Posterior: shared},
		{Model: "teobHM", Posterior: shared},
	}
	cmp, err := p.Compare(ctx, "GW190425", "eccentricity", models)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"seobHM", "teobHM"}}, cmp.DuplicateSources())
	assert.Equal(t, 1, logs.FilterMessage("models share identical samples").Len())
}

func TestCompareDuplicateModelIsFatal(t *testing.T) {
	p := newTestPipeline(t, nil)
	models := []ModelPosterior{
		{Model: "teob", Posterior: posterior(1)},
		{Model: "teob", Posterior: posterior(2)},
	}
	_, err := p.Compare(testContext(t), "GW190425", "eccentricity", models)
	assert.True(t, errors.Is(err, common.ErrorDuplicateModel))
}

func TestCompareCancelled(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := p.Compare(ctx, "GW190425", "eccentricity", []ModelPosterior{{Model: "teob", Posterior: posterior(1)}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunEvent(t *testing.T) {
	p := newTestPipeline(t, nil)

	report, err := p.RunEvent(testContext(t), EventInput{
		Event: "GW200105",
		Models: []ModelPosterior{
			{Model: "teob", Posterior: posterior(1)},
			{Model: "seob", Posterior: posterior(2)},
		},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(report.ID)
	assert.NoError(t, err)
	assert.Equal(t, "GW200105", report.Event)
	require.Len(t, report.Comparisons, 2)

	ecc := report.Comparison("eccentricity")
	require.NotNil(t, ecc)
	assert.Equal(t, []string{"teob", "seob"}, ecc.Models())
	teob, _ := ecc.Entry("teob")
	assert.True(t, teob.Interval.Overridden)

	logEcc := report.Comparison("log_eccentricity")
	require.NotNil(t, logEcc)
	for _, e := range logEcc.Entries {
		assert.True(t, e.Curve.Normalized, e.Model)
		assert.Equal(t, model.IntervalSymmetric, e.Interval.Kind)
	}
	assert.Nil(t, report.Comparison("chirp_mass"))
}

func TestRunBatchContinuesPastFailedEvent(t *testing.T) {
	p := newTestPipeline(t, nil)

	inputs := []EventInput{
		{Event: "GW190425", Models: []ModelPosterior{
			{Model: "teob", Posterior: posterior(1)},
			{Model: "teob", Posterior: posterior(2)},
		}},
		{Event: "GW200105", Models: []ModelPosterior{{Model: "teob", Posterior: posterior(3)}}},
	}
	reports, err := p.RunBatch(testContext(t), inputs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorDuplicateModel))
	require.Len(t, reports, 1)
	assert.Equal(t, "GW200105", reports[0].Event)
	assert.NotEqual(t, uuid.Nil.String(), reports[0].ID)
}

func TestEstimateWithoutModelTable(t *testing.T) {
	cfg, err := ParseConfig([]byte("parameters:\n  - name: eccentricity\n    bandwidth: 0.2\n    interval:\n      kind: upper_bound\n"))
	require.NoError(t, err)
	p, err := New(cfg)
	require.NoError(t, err)

	est, err := p.Estimate(testContext(t), "GW190425", "teob", "eccentricity", halfNormal(1000, 0.03, 7))
	require.NoError(t, err)
	assert.True(t, est.Curve.Normalized)
}
