package kde

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
)

// DegeneratePolicy decides what happens when every sample has the same value
// and a kernel estimate has no width.
type DegeneratePolicy int

const (
	// DegenerateSpike puts the whole mass on the grid point nearest the value.
	DegenerateSpike DegeneratePolicy = iota
	// DegenerateError fails with common.ErrorDegenerateSampleSet.
	DegenerateError
)

func (p DegeneratePolicy) String() string {
	switch p {
	case DegenerateSpike:
		return "spike"
	case DegenerateError:
		return "error"
	}
	return "unknown"
}

func (p DegeneratePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *DegeneratePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "spike":
		*p = DegenerateSpike
	case "error":
		*p = DegenerateError
	default:
		return errors.Wrapf(common.ErrorInvalidValue, "unknown degenerate policy %q", text)
	}
	return nil
}

// ReflectedEstimator is a Gaussian kernel density estimator corrected for a
// hard lower boundary by reflection. It holds no per-call state and may be
// shared between goroutines.
type ReflectedEstimator struct {
	bandwidth Bandwidth
	policy    DegeneratePolicy
}

func NewReflectedEstimator(bandwidth Bandwidth, policy DegeneratePolicy) (*ReflectedEstimator, error) {
	if err := bandwidth.Validate(); err != nil {
		return nil, err
	}
	return &ReflectedEstimator{
		bandwidth: bandwidth,
		policy:    policy,
	}, nil
}

func (e *ReflectedEstimator) Bandwidth() Bandwidth {
	return e.bandwidth
}

// Evaluate estimates the density of t on grid, in physical units. The result
// is not normalized.
func (e *ReflectedEstimator) Evaluate(t Transformed, grid model.EvaluationGrid) (model.DensityCurve, error) {
	if t.Len() == 0 {
		return model.DensityCurve{}, common.ErrorEmptySampleSet
	}
	if grid.Len() < 2 {
		return model.DensityCurve{}, errors.Wrap(common.ErrorInvalidValue, "empty evaluation grid")
	}

	if allEqual(t.samples) {
		return e.degenerate(t, grid)
	}

	combined := Reflect(t.samples, t.boundary)
	h := e.bandwidth.KernelWidth(combined)
	if !(h > 0) || math.IsInf(h, 0) {
		return e.degenerate(t, grid)
	}

	kernel := NewGaussianKernel()
	kernel.SetH(h)

	dens := make([]float64, grid.Len())
	for i := 0; i < grid.Len(); i++ {
		x := grid.At(i)
		u := t.ToEstimation(x)
		if u < t.boundary {
			continue
		}
		dens[i] = ReflectionFactor * kernel.Density(combined, u) * t.Jacobian(x)
	}

	return model.NewDensityCurve(grid, dens)
}

func (e *ReflectedEstimator) degenerate(t Transformed, grid model.EvaluationGrid) (model.DensityCurve, error) {
	if e.policy == DegenerateError {
		return model.DensityCurve{}, errors.Wrapf(common.ErrorDegenerateSampleSet,
			"%d identical samples at %v", t.Len(), t.physical[0])
	}
	return spike(t.physical[0], t.config.PhysicalBoundary(), grid)
}

// spike discretizes a point mass at v: one non-zero grid value whose
// trapezoidal area is 1. A value outside the grid, or below the boundary,
// yields an all-zero curve.
func spike(v, boundary float64, grid model.EvaluationGrid) (model.DensityCurve, error) {
	n := grid.Len()
	dens := make([]float64, n)
	if v < boundary || v < grid.Min() || v > grid.Max() {
		return model.NewDensityCurve(grid, dens)
	}

	best := -1
	for i := 0; i < n; i++ {
		x := grid.At(i)
		if x < boundary {
			continue
		}
		if best < 0 || math.Abs(x-v) < math.Abs(grid.At(best)-v) {
			best = i
		}
	}
	if best < 0 {
		return model.NewDensityCurve(grid, dens)
	}

	lo, hi := max(best-1, 0), min(best+1, n-1)
	dens[best] = 2 / (grid.At(hi) - grid.At(lo))
	return model.NewDensityCurve(grid, dens)
}
