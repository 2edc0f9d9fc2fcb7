package interval

import (
	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
)

const (
	DefaultUpperPercentile = 90.0
	DefaultLowPercentile   = 5.0
	DefaultHighPercentile  = 95.0

	medianPercentile = 50.0
)

type Config struct {
	Kind model.IntervalKind `yaml:"kind"`
	// UpperPercentile is the one-sided bound reported for IntervalUpperBound.
	UpperPercentile float64 `yaml:"upper_percentile"`
	// LowPercentile and HighPercentile bound an IntervalSymmetric interval.
	LowPercentile  float64 `yaml:"low_percentile"`
	HighPercentile float64 `yaml:"high_percentile"`
}

func DefaultConfig() Config {
	return Config{
		Kind:            model.IntervalSymmetric,
		UpperPercentile: DefaultUpperPercentile,
		LowPercentile:   DefaultLowPercentile,
		HighPercentile:  DefaultHighPercentile,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Kind == model.IntervalUnset {
		c.Kind = def.Kind
	}
	if c.UpperPercentile == 0 {
		c.UpperPercentile = def.UpperPercentile
	}
	if c.LowPercentile == 0 {
		c.LowPercentile = def.LowPercentile
	}
	if c.HighPercentile == 0 {
		c.HighPercentile = def.HighPercentile
	}
	return c
}

func (c Config) Validate() error {
	switch c.Kind {
	case model.IntervalUpperBound:
		if !(c.UpperPercentile > 0 && c.UpperPercentile <= 100) {
			return errors.Wrapf(common.ErrorInvalidValue, "upper percentile %v out of (0, 100]", c.UpperPercentile)
		}
	case model.IntervalSymmetric:
		if !(c.LowPercentile >= 0 && c.LowPercentile < medianPercentile) {
			return errors.Wrapf(common.ErrorInvalidValue, "low percentile %v out of [0, 50)", c.LowPercentile)
		}
		if !(c.HighPercentile > medianPercentile && c.HighPercentile <= 100) {
			return errors.Wrapf(common.ErrorInvalidValue, "high percentile %v out of (50, 100]", c.HighPercentile)
		}
	default:
		return errors.Wrapf(common.ErrorInvalidValue, "unknown interval kind %d", c.Kind)
	}
	return nil
}

// Extractor computes credible intervals from raw samples, never from a
// smoothed curve.
type Extractor struct {
	config    Config
	overrides Overrides
}

func NewExtractor(config Config, overrides Overrides) (*Extractor, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{
		config:    config,
		overrides: overrides,
	}, nil
}

func (e *Extractor) Config() Config {
	return e.config
}

// Compute derives the interval from samples alone.
func (e *Extractor) Compute(samples model.SampleSet) (model.CredibleInterval, error) {
	if samples.IsEmpty() {
		return model.CredibleInterval{}, common.ErrorEmptySampleSet
	}
	sorted := samples.Sorted()

	res := model.CredibleInterval{
		Kind:   e.config.Kind,
		Median: Percentile(sorted, medianPercentile),
	}
	switch e.config.Kind {
	case model.IntervalUpperBound:
		res.Upper = percentileValue(sorted, e.config.UpperPercentile)
	case model.IntervalSymmetric:
		res.Lower = percentileValue(sorted, e.config.LowPercentile)
		res.Upper = percentileValue(sorted, e.config.HighPercentile)
	}
	return res, nil
}

// Extract returns the override for (modelName, parameter) when one of the
// matching kind exists, and Compute otherwise.
func (e *Extractor) Extract(modelName, parameter string, samples model.SampleSet) (model.CredibleInterval, error) {
	if ov, ok := e.overrides.Get(modelName, parameter); ok && ov.Kind == e.config.Kind {
		return e.apply(ov), nil
	}
	return e.Compute(samples)
}

func (e *Extractor) apply(ov model.Override) model.CredibleInterval {
	res := model.CredibleInterval{
		Kind:       ov.Kind,
		Median:     ov.Median,
		Overridden: true,
	}
	switch ov.Kind {
	case model.IntervalUpperBound:
		res.Upper = model.PercentileValue{Value: ov.Upper, Percentile: e.config.UpperPercentile}
	case model.IntervalSymmetric:
		res.Lower = model.PercentileValue{Value: ov.Median - ov.MinusError, Percentile: e.config.LowPercentile}
		res.Upper = model.PercentileValue{Value: ov.Median + ov.PlusError, Percentile: e.config.HighPercentile}
	}
	return res
}

func percentileValue(sorted []float64, p float64) model.PercentileValue {
	return model.PercentileValue{
		Value:      Percentile(sorted, p),
		Percentile: p,
	}
}
