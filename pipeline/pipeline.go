package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/compare"
	"github.com/uyouii/eccentricity-posteriors/interval"
	"github.com/uyouii/eccentricity-posteriors/kde"
	"github.com/uyouii/eccentricity-posteriors/model"
	"github.com/uyouii/eccentricity-posteriors/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Posterior maps a parameter name to its posterior samples.
type Posterior map[string][]float64

type ModelPosterior struct {
	Model     string
	Posterior Posterior
}

// EventInput is the posterior of every model for one event, in drawing order.
type EventInput struct {
	Event  string
	Models []ModelPosterior
}

// Estimate is the result for one (event, model, parameter) triple.
type Estimate struct {
	Event     string
	Model     string
	Parameter string
	Samples   model.SampleSet
	Curve     model.DensityCurve
	Interval  model.CredibleInterval
	Fit       model.NormalFit
	// CurveMassBelowUpper is the normalized curve mass below Interval.Upper,
	// FitMassBelowUpper the same for the Gaussian fit.
	CurveMassBelowUpper float64
	FitMassBelowUpper   float64
	Warnings            []string
}

func (e *Estimate) entry() compare.Entry {
	return compare.Entry{
		Model:       e.Model,
		Curve:       e.Curve,
		Interval:    e.Interval,
		Fingerprint: e.Samples.Fingerprint(),
		Warnings:    e.Warnings,
	}
}

type EventReport struct {
	ID          string
	Event       string
	Comparisons []*compare.Comparison
}

// Comparison returns the comparison of parameter, nil if it was not run.
func (r *EventReport) Comparison(parameter string) *compare.Comparison {
	for _, c := range r.Comparisons {
		if c.Parameter == parameter {
			return c
		}
	}
	return nil
}

type Pipeline struct {
	config    Config
	grid      model.EvaluationGrid
	palette   *compare.Palette
	overrides interval.Overrides
}

func New(config Config) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	grid, err := config.BuildGrid()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		config:    config,
		grid:      grid,
		palette:   compare.NewPalette(config.palette(), config.modelNames()),
		overrides: config.overrides(),
	}, nil
}

func (p *Pipeline) Config() Config {
	return p.config
}

func (p *Pipeline) Grid() model.EvaluationGrid {
	return p.grid
}

// Estimate runs one triple to completion. Every error is a
// *common.TripleError. A curve that could not be normalized is not an
// error, it is reported in Warnings.
func (p *Pipeline) Estimate(ctx context.Context, event, modelName, parameter string,
	samples []float64) (res *Estimate, err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.GetLogger(ctx).Error("estimate panic", zap.Any("panic", r),
				zap.String("stack", utils.GetPanicInfo()))
			res = nil
			err = common.NewTripleError(event, modelName, parameter, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err = p.estimate(ctx, event, modelName, parameter, samples)
	if err != nil {
		return nil, common.NewTripleError(event, modelName, parameter, err)
	}
	return res, nil
}

func (p *Pipeline) estimate(ctx context.Context, event, modelName, parameter string,
	samples []float64) (*Estimate, error) {
	param, ok := p.config.parameter(parameter)
	if !ok {
		return nil, errors.Wrapf(common.ErrorInvalidValue, "parameter %s is not configured", parameter)
	}

	logger := utils.GetLogger(ctx).With(zap.String("event", event),
		zap.String("model", modelName), zap.String("parameter", parameter))
	ctx = utils.WithLogger(ctx, logger)

	set := model.NewSampleSet(samples)
	res := &Estimate{
		Event:     event,
		Model:     modelName,
		Parameter: parameter,
		Samples:   set,
	}
	if set.Dropped() > 0 {
		logger.Info("dropped non-finite samples", zap.Int("dropped", set.Dropped()))
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d non-finite samples dropped", set.Dropped()))
	}

	estimator, err := kde.NewReflectedEstimator(p.config.bandwidthFor(event, modelName, param), p.config.Degenerate)
	if err != nil {
		return nil, err
	}
	curve, err := kde.EstimateDensity(ctx, set, param.Boundary, estimator, p.grid)
	if err != nil {
		if !errors.Is(err, common.ErrorZeroArea) {
			return nil, err
		}
		res.Warnings = append(res.Warnings, err.Error())
	}
	res.Curve = curve

	extractor, err := interval.NewExtractor(p.config.intervalFor(event, param), p.overrides)
	if err != nil {
		return nil, err
	}
	if res.Interval, err = extractor.Extract(modelName, parameter, set); err != nil {
		return nil, err
	}
	if res.Interval.Overridden {
		logger.Info("interval overridden", zap.Stringer("kind", res.Interval.Kind))
	}

	if res.Fit, err = interval.FitNormal(set); err != nil {
		return nil, err
	}
	if curve.Normalized {
		res.CurveMassBelowUpper = kde.MassBelow(curve, res.Interval.Upper.Value)
	}
	res.FitMassBelowUpper = interval.FitMassBelow(res.Fit, res.Interval.Upper.Value)
	return res, nil
}

// Compare estimates parameter for every model of one event. Missing data is
// a skip and a failed model is a failure on the comparison; neither stops
// the other models. The returned error is only set when the comparison
// itself cannot be built.
func (p *Pipeline) Compare(ctx context.Context, event, parameter string,
	models []ModelPosterior) (*compare.Comparison, error) {
	logger := utils.GetLogger(ctx).With(zap.String("event", event), zap.String("parameter", parameter))
	cmp := compare.NewComparison(event, parameter, p.grid, p.palette)

	estimates := make([]*Estimate, len(models))
	failures := make([]error, len(models))
	run := func(i int) {
		mp := models[i]
		samples, ok := mp.Posterior[parameter]
		if !ok {
			return
		}
		estimates[i], failures[i] = p.Estimate(ctx, event, mp.Model, parameter, samples)
	}

	if p.config.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.config.Workers)
		for i := range models {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				run(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range models {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run(i)
		}
	}

	for i, mp := range models {
		if _, ok := mp.Posterior[parameter]; !ok {
			logger.Info("parameter missing, skip", zap.String("model", mp.Model))
			cmp.AddSkip(mp.Model, common.ErrorMissingParameter.Error())
			continue
		}
		if failures[i] != nil {
			logger.Error("estimate failed", zap.String("model", mp.Model), zap.Error(failures[i]))
			cmp.AddFailure(mp.Model, failures[i])
			continue
		}
		if err := cmp.Add(estimates[i].entry()); err != nil {
			return nil, err
		}
	}

	for _, pair := range cmp.DuplicateSources() {
		logger.Warn("models share identical samples", zap.Strings("models", pair[:]))
	}
	return cmp, nil
}

// RunEvent compares every configured parameter for one event.
func (p *Pipeline) RunEvent(ctx context.Context, in EventInput) (*EventReport, error) {
	report := &EventReport{
		ID:    uuid.NewString(),
		Event: in.Event,
	}
	logger := utils.GetLogger(ctx).With(zap.String("run", report.ID))
	ctx = utils.WithLogger(ctx, logger)

	for _, param := range p.config.Parameters {
		cmp, err := p.Compare(ctx, in.Event, param.Name, in.Models)
		if err != nil {
			return nil, errors.Wrapf(err, "event %s, parameter %s", in.Event, param.Name)
		}
		report.Comparisons = append(report.Comparisons, cmp)
	}
	logger.Info("event done", zap.String("event", in.Event), zap.Int("comparisons", len(report.Comparisons)))
	return report, nil
}

// RunBatch runs every event. An event that fails is left out of the result
// and its error joins the returned one; the other events still run.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []EventInput) ([]*EventReport, error) {
	var (
		reports []*EventReport
		errs    error
	)
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return reports, multierr.Append(errs, err)
		}
		report, err := p.RunEvent(ctx, in)
		if err != nil {
			utils.GetLogger(ctx).Error("event failed", zap.String("event", in.Event), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errs
}
