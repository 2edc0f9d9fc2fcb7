package kde

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/uyouii/eccentricity-posteriors/common"
	"gonum.org/v1/gonum/stat"
)

type BandwidthRule int

const (
	BandwidthUnset BandwidthRule = iota
	// BandwidthFactor scales the sample standard deviation by a fixed factor.
	BandwidthFactor
	// BandwidthScott uses the factor n^(-1/5).
	BandwidthScott
	// BandwidthSilverman uses the factor (3n/4)^(-1/5).
	BandwidthSilverman
	// BandwidthNormalReference is the normal reference rule with a robust
	// sigma, min(std, IQR/1.349). It yields an absolute width.
	BandwidthNormalReference
)

// Bandwidth selects the kernel width for a sample. Factor rules follow the
// convention where the kernel sigma is factor * std(xs).
type Bandwidth struct {
	Rule   BandwidthRule
	Factor float64
}

func FixedFactor(factor float64) Bandwidth {
	return Bandwidth{Rule: BandwidthFactor, Factor: factor}
}

func (b Bandwidth) IsSet() bool {
	return b.Rule != BandwidthUnset
}

func (b Bandwidth) Validate() error {
	switch b.Rule {
	case BandwidthUnset:
		return errors.Wrap(common.ErrorInvalidValue, "bandwidth is not configured")
	case BandwidthFactor:
		if !(b.Factor > 0) || math.IsInf(b.Factor, 0) {
			return errors.Wrapf(common.ErrorInvalidValue, "bandwidth factor must be positive, got %v", b.Factor)
		}
	case BandwidthScott, BandwidthSilverman, BandwidthNormalReference:
	default:
		return errors.Wrapf(common.ErrorInvalidValue, "unknown bandwidth rule %d", b.Rule)
	}
	return nil
}

func (b Bandwidth) String() string {
	switch b.Rule {
	case BandwidthFactor:
		return strconv.FormatFloat(b.Factor, 'g', -1, 64)
	case BandwidthScott:
		return "scott"
	case BandwidthSilverman:
		return "silverman"
	case BandwidthNormalReference:
		return "normal_reference"
	}
	return ""
}

func (b Bandwidth) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText accepts a rule name or a positive factor.
func (b *Bandwidth) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "":
		*b = Bandwidth{}
		return nil
	case "scott":
		*b = Bandwidth{Rule: BandwidthScott}
		return nil
	case "silverman":
		*b = Bandwidth{Rule: BandwidthSilverman}
		return nil
	case "normal_reference", "normal-reference":
		*b = Bandwidth{Rule: BandwidthNormalReference}
		return nil
	}
	factor, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(common.ErrorInvalidValue, "bad bandwidth %q", text)
	}
	res := FixedFactor(factor)
	if err := res.Validate(); err != nil {
		return err
	}
	*b = res
	return nil
}

// KernelWidth returns the Gaussian kernel sigma for xs.
func (b Bandwidth) KernelWidth(xs []float64) float64 {
	n := float64(len(xs))
	switch b.Rule {
	case BandwidthFactor:
		return b.Factor * stat.StdDev(xs, nil)
	case BandwidthScott:
		return math.Pow(n, scottExponent) * stat.StdDev(xs, nil)
	case BandwidthSilverman:
		return math.Pow(n*3.0/4.0, scottExponent) * stat.StdDev(xs, nil)
	case BandwidthNormalReference:
		return NewNormalReferenceBandWidth(nil).BandWidth(xs)
	}
	return math.NaN()
}

type NormalReferenceBandWidth struct {
	kernel Kernel
}

func NewNormalReferenceBandWidth(kernel Kernel) *NormalReferenceBandWidth {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	return &NormalReferenceBandWidth{
		kernel: kernel,
	}
}

func (bw *NormalReferenceBandWidth) BandWidth(x []float64) float64 {
	C := bw.kernel.NormalReferenceConstant()
	A := selectSigma(x)
	n := len(x)
	return C * A * math.Pow(float64(n), scottExponent)
}

func selectSigma(x []float64) float64 {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	iqr := (q75 - q25) / iqrNormalize

	stdDev := stat.StdDev(sorted, nil)

	if iqr > 0 {
		if stdDev < iqr {
			return stdDev
		}
		return iqr
	}
	return stdDev
}
