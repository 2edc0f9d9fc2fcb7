package interval

import (
	"math"

	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FitNormal returns the maximum likelihood Gaussian of samples, with the
// biased (1/n) standard deviation.
func FitNormal(samples model.SampleSet) (model.NormalFit, error) {
	if samples.IsEmpty() {
		return model.NormalFit{}, common.ErrorEmptySampleSet
	}
	xs := samples.Values()
	mu, variance := stat.PopMeanVariance(xs, nil)
	return model.NormalFit{
		Mu:    mu,
		Sigma: math.Sqrt(variance),
	}, nil
}

// FitMassBelow is the probability the fitted Gaussian puts below x. A fit
// with zero width is a step at Mu.
func FitMassBelow(fit model.NormalFit, x float64) float64 {
	if !(fit.Sigma > 0) {
		if x < fit.Mu {
			return 0
		}
		return 1
	}
	return distuv.Normal{Mu: fit.Mu, Sigma: fit.Sigma}.CDF(x)
}
