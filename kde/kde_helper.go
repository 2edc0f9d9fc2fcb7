package kde

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"github.com/uyouii/eccentricity-posteriors/model"
	"github.com/uyouii/eccentricity-posteriors/utils"
	"go.uber.org/zap"
)

// EstimateDensity runs transform, reflected estimate and normalization for
// one sample set. A common.ErrorZeroArea error comes with a usable,
// unnormalized curve; any other error means there is no curve.
func EstimateDensity(ctx context.Context, samples model.SampleSet, boundary model.BoundaryConfig,
	estimator *ReflectedEstimator, grid model.EvaluationGrid) (model.DensityCurve, error) {
	logger := utils.GetLogger(ctx)

	transformed, err := Transform(samples, boundary)
	if err != nil {
		logger.Error("boundary transform failed", zap.Error(err),
			zap.Stringer("mode", boundary.Mode), zap.Int("samples", samples.Len()))
		return model.DensityCurve{}, err
	}
	if transformed.Filtered() > 0 {
		logger.Info("dropped samples below lower bound",
			zap.Int("filtered", transformed.Filtered()), zap.Float64("lowerBound", boundary.LowerBound))
	}

	curve, err := estimator.Evaluate(transformed, grid)
	if err != nil {
		logger.Error("reflected kde failed", zap.Error(err))
		return model.DensityCurve{}, err
	}

	normalized, err := Normalize(curve)
	if err != nil {
		if errors.Is(err, common.ErrorZeroArea) {
			logger.Warn("density not normalized", zap.Error(err))
		}
		return normalized, err
	}

	logger.Debug("density estimated", zap.Int("samples", transformed.Len()),
		zap.Stringer("bandwidth", estimator.Bandwidth()), zap.Float64("area", normalized.Area))
	return normalized, nil
}
