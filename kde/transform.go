package kde

import (
	"math"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
)

// Transformed is a sample set moved into estimation space, where the
// reflection is applied.
type Transformed struct {
	config   model.BoundaryConfig
	samples  []float64
	physical []float64
	boundary float64
	filtered int
}

// Transform maps samples into estimation space. Log mode drops samples below
// the lower bound and takes log10 of the rest.
func Transform(samples model.SampleSet, config model.BoundaryConfig) (Transformed, error) {
	if err := config.Validate(); err != nil {
		return Transformed{}, err
	}
	if samples.IsEmpty() {
		return Transformed{}, common.ErrorEmptySampleSet
	}

	values := samples.Values()
	if config.Mode == model.LinearBoundary {
		return Transformed{
			config:   config,
			samples:  values,
			physical: values,
			boundary: 0,
		}, nil
	}

	physical := make([]float64, 0, len(values))
	logs := make([]float64, 0, len(values))
	for _, v := range values {
		if v < config.LowerBound {
			continue
		}
		physical = append(physical, v)
		logs = append(logs, math.Log10(v))
	}
	if len(logs) == 0 {
		return Transformed{}, errors.Wrapf(common.ErrorEmptyAfterFilter,
			"all %d samples below %v", len(values), config.LowerBound)
	}

	return Transformed{
		config:   config,
		samples:  logs,
		physical: physical,
		boundary: math.Log10(config.LowerBound),
		filtered: len(values) - len(logs),
	}, nil
}

func (t Transformed) Config() model.BoundaryConfig {
	return t.config
}

// Boundary is the boundary in estimation space.
func (t Transformed) Boundary() float64 {
	return t.boundary
}

func (t Transformed) Len() int {
	return len(t.samples)
}

// Filtered is the number of samples dropped below the lower bound.
func (t Transformed) Filtered() int {
	return t.filtered
}

// Samples returns the estimation-space samples.
func (t Transformed) Samples() []float64 {
	res := make([]float64, len(t.samples))
	copy(res, t.samples)
	return res
}

// Physical returns the samples that survived filtering, untransformed.
func (t Transformed) Physical() []float64 {
	res := make([]float64, len(t.physical))
	copy(res, t.physical)
	return res
}

// ToEstimation maps a physical coordinate into estimation space. In log mode
// x <= 0 maps to -Inf, which is always below the boundary.
func (t Transformed) ToEstimation(x float64) float64 {
	if t.config.Mode != model.LogBoundary {
		return x
	}
	if x <= 0 {
		return math.Inf(-1)
	}
	return math.Log10(x)
}

func (t Transformed) ToPhysical(u float64) float64 {
	if t.config.Mode != model.LogBoundary {
		return u
	}
	return math.Pow(10, u)
}

// Jacobian is du/dx, converting a density per unit u into one per unit x.
func (t Transformed) Jacobian(x float64) float64 {
	if t.config.Mode != model.LogBoundary {
		return 1
	}
	if x <= 0 {
		return 0
	}
	return 1 / (x * ln10)
}
