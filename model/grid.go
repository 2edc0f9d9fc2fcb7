package model

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"gonum.org/v1/gonum/floats"
)

// EvaluationGrid is a strictly increasing set of points shared by every curve
// of a comparison. Treat it as read-only after construction.
type EvaluationGrid struct {
	points []float64
}

func NewEvaluationGrid(points []float64) (EvaluationGrid, error) {
	if len(points) < 2 {
		return EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue,
			"grid needs at least 2 points, got %d", len(points))
	}
	for i, x := range points {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue, "grid point %d is %v", i, x)
		}
		if i > 0 && !(x > points[i-1]) {
			return EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue,
				"grid is not strictly increasing at index %d", i)
		}
	}
	res := make([]float64, len(points))
	copy(res, points)
	return EvaluationGrid{points: res}, nil
}

// Linspace returns n evenly spaced points over [start, stop].
func Linspace(start, stop float64, n int) (EvaluationGrid, error) {
	if n < 2 {
		return EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue, "grid needs at least 2 points, got %d", n)
	}
	return NewEvaluationGrid(floats.Span(make([]float64, n), start, stop))
}

// Logspace returns n points over [start, stop] evenly spaced in log10.
func Logspace(start, stop float64, n int) (EvaluationGrid, error) {
	if !(start > 0) || !(stop > 0) {
		return EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue,
			"log grid bounds must be positive, got [%v, %v]", start, stop)
	}
	if n < 2 {
		return EvaluationGrid{}, errors.Wrapf(common.ErrorInvalidValue, "grid needs at least 2 points, got %d", n)
	}
	grid := floats.LogSpan(make([]float64, n), start, stop)
	grid[0], grid[n-1] = start, stop
	return NewEvaluationGrid(grid)
}

func (g EvaluationGrid) Len() int {
	return len(g.points)
}

func (g EvaluationGrid) At(i int) float64 {
	return g.points[i]
}

func (g EvaluationGrid) Min() float64 {
	if len(g.points) == 0 {
		return math.NaN()
	}
	return g.points[0]
}

func (g EvaluationGrid) Max() float64 {
	if len(g.points) == 0 {
		return math.NaN()
	}
	return g.points[len(g.points)-1]
}

// Points returns a copy of the grid points.
func (g EvaluationGrid) Points() []float64 {
	res := make([]float64, len(g.points))
	copy(res, g.points)
	return res
}

// Equal reports exact point-by-point equality.
func (g EvaluationGrid) Equal(other EvaluationGrid) bool {
	if len(g.points) != len(other.points) {
		return false
	}
	for i := range g.points {
		if g.points[i] != other.points[i] {
			return false
		}
	}
	return true
}

// MarshalJSON writes the grid as its array of points.
func (g EvaluationGrid) MarshalJSON() ([]byte, error) {
	if g.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(g.points)
}

func (g *EvaluationGrid) UnmarshalJSON(data []byte) error {
	var points []float64
	if err := json.Unmarshal(data, &points); err != nil {
		return errors.Wrap(common.ErrorInvalidValue, err.Error())
	}
	res, err := NewEvaluationGrid(points)
	if err != nil {
		return err
	}
	*g = res
	return nil
}
