package kde

import (
	"math"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Area is the trapezoidal integral of the curve over its grid.
func Area(curve model.DensityCurve) float64 {
	if curve.Len() < 2 || curve.Grid.Len() != curve.Len() {
		return 0
	}
	return integrate.Trapezoidal(curve.Grid.Points(), curve.Y)
}

// Normalize rescales the curve to unit area. If the area is not positive the
// curve comes back unmodified together with common.ErrorZeroArea, which
// callers should treat as a warning.
func Normalize(curve model.DensityCurve) (model.DensityCurve, error) {
	y := make([]float64, len(curve.Y))
	copy(y, curve.Y)

	area := Area(curve)
	res := model.DensityCurve{
		Grid: curve.Grid,
		Y:    y,
		Area: area,
	}
	if !(area > 0) || math.IsInf(area, 0) {
		return res, errors.Wrapf(common.ErrorZeroArea, "area %v", area)
	}

	floats.Scale(1/area, res.Y)
	res.Normalized = true
	return res, nil
}

// CurveCDF returns the cumulative trapezoidal mass at every grid point.
func CurveCDF(curve model.DensityCurve) []model.Cdf {
	n := curve.Len()
	if n == 0 || curve.Grid.Len() != n {
		return nil
	}
	x := curve.Grid.Points()

	res := make([]model.Cdf, 0, n)
	res = append(res, model.Cdf{X: x[0], Value: 0})

	var cumSum float64
	for i := 1; i < n; i++ {
		cumSum += integrate.Trapezoidal(x[i-1:i+1], curve.Y[i-1:i+1])
		res = append(res, model.Cdf{
			X:     x[i],
			Value: cumSum,
		})
	}
	return res
}

// MassBelow interpolates the curve CDF at x.
func MassBelow(curve model.DensityCurve, x float64) float64 {
	cdf := CurveCDF(curve)
	if len(cdf) == 0 {
		return 0
	}
	if x <= cdf[0].X {
		return 0
	}
	if x >= cdf[len(cdf)-1].X {
		return cdf[len(cdf)-1].Value
	}

	for i := 1; i < len(cdf); i++ {
		if cdf[i].X >= x {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			return lowerP + (upperP-lowerP)*(x-lowerX)/(upperX-lowerX)
		}
	}
	return cdf[len(cdf)-1].Value
}
