package kde

import "math"

const (
	// ReflectionFactor restores unit mass after half of the reflected
	// estimate is cut away at the boundary.
	ReflectionFactor = 2.0

	// IQR of a standard normal.
	iqrNormalize = 1.349

	scottExponent = -1.0 / 5
)

var ln10 = math.Log(10)
