package model

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
)

type Density struct {
	X     float64
	Value float64
}

type Cdf struct {
	X     float64
	Value float64
}

// DensityCurve is a density evaluated on an EvaluationGrid.
type DensityCurve struct {
	// Grid is left out of JSON; the enclosing comparison carries it once.
	Grid EvaluationGrid `json:"-"`
	Y    []float64      `json:"y"`
	// Normalized is false when the curve had no positive area to divide by.
	Normalized bool `json:"normalized"`
	// Area is the trapezoidal area before normalization.
	Area float64 `json:"area"`
}

func NewDensityCurve(grid EvaluationGrid, y []float64) (DensityCurve, error) {
	if grid.Len() != len(y) {
		return DensityCurve{}, errors.Wrapf(common.ErrorInvalidValue,
			"curve has %d values for %d grid points", len(y), grid.Len())
	}
	return DensityCurve{Grid: grid, Y: y}, nil
}

func (c DensityCurve) Len() int {
	return len(c.Y)
}

// Points pairs every grid point with its density value.
func (c DensityCurve) Points() []Density {
	res := make([]Density, 0, len(c.Y))
	for i, y := range c.Y {
		res = append(res, Density{
			X:     c.Grid.At(i),
			Value: y,
		})
	}
	return res
}

type IntervalKind int

const (
	// IntervalUnset lets a more general config level decide the kind.
	IntervalUnset IntervalKind = iota
	// IntervalUpperBound reports a single upper percentile, for posteriors
	// consistent with the boundary.
	IntervalUpperBound
	// IntervalSymmetric reports the median with lower and upper percentiles.
	IntervalSymmetric
)

func (k IntervalKind) String() string {
	switch k {
	case IntervalUnset:
		return ""
	case IntervalUpperBound:
		return "upper_bound"
	case IntervalSymmetric:
		return "symmetric"
	}
	return "unknown"
}

func (k IntervalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *IntervalKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "":
		*k = IntervalUnset
	case "upper_bound", "upper-bound", "upper":
		*k = IntervalUpperBound
	case "symmetric":
		*k = IntervalSymmetric
	default:
		return errors.Wrapf(common.ErrorInvalidValue, "unknown interval kind %q", text)
	}
	return nil
}

type PercentileValue struct {
	Value      float64 `json:"v"`
	Percentile float64 `json:"p"`
}

// CredibleInterval summarizes a sample set. For IntervalUpperBound only Upper
// is meaningful; Median is informational and Lower is zero.
type CredibleInterval struct {
	Kind       IntervalKind    `json:"kind"`
	Median     float64         `json:"median"`
	Lower      PercentileValue `json:"lower"`
	Upper      PercentileValue `json:"upper"`
	Overridden bool            `json:"overridden,omitempty"`
}

func (c CredibleInterval) MinusError() float64 {
	if c.Kind != IntervalSymmetric {
		return 0
	}
	return c.Median - c.Lower.Value
}

func (c CredibleInterval) PlusError() float64 {
	if c.Kind != IntervalSymmetric {
		return 0
	}
	return c.Upper.Value - c.Median
}

// Override replaces computed statistics for one (model, parameter) pair. It
// applies only to intervals of the same Kind.
type Override struct {
	Kind       IntervalKind `json:"kind" yaml:"kind"`
	Median     float64      `json:"median" yaml:"median"`
	MinusError float64      `json:"minus_error" yaml:"minus_error"`
	PlusError  float64      `json:"plus_error" yaml:"plus_error"`
	Upper      float64      `json:"upper" yaml:"upper"`
}

// NormalFit is the maximum likelihood Gaussian of a sample set.
type NormalFit struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}
