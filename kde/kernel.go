package kde

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel is a symmetric smoothing kernel with unit mass.
type Kernel interface {
	Shape(u float64) float64
	NormalReferenceConstant() float64
}

// GaussianKernel is the standard normal kernel scaled by width h. It keeps a
// scratch buffer, so one value must not be shared between goroutines.
type GaussianKernel struct {
	l2Norm                  float64
	order                   int
	normalReferenceConstant float64
	h                       float64
	scratch                 []float64
}

func NewGaussianKernel() *GaussianKernel {
	return &GaussianKernel{
		l2Norm: 1.0 / (2.0 * math.Sqrt(math.Pi)),
		order:  2,
		h:      1.0,
	}
}

func (k *GaussianKernel) SetH(h float64) {
	k.h = h
}

func (k *GaussianKernel) H() float64 {
	return k.h
}

func (k *GaussianKernel) Shape(u float64) float64 {
	return 0.3989422804014327 * math.Exp(-u*u/2.0)
}

// NormalReferenceConstant is the AMISE-optimal scale for normal data,
// about 1.0592 for this kernel.
func (k *GaussianKernel) NormalReferenceConstant() float64 {
	nu := k.order
	if k.normalReferenceConstant == 0 {
		numerator := math.Sqrt(math.Pi) * math.Pow(factorial(nu), 3) * k.l2Norm
		denom := 2.0 * float64(nu) * factorial(2*nu) * math.Pow(k.Moments(nu), 2)
		k.normalReferenceConstant = 2 * math.Pow(numerator/denom, 1.0/float64(2*nu+1))
	}
	return k.normalReferenceConstant
}

// Moments returns E[u^n] of the unscaled kernel: 0 for odd n, (n-1)!! for
// even n.
func (k *GaussianKernel) Moments(n int) float64 {
	if n%2 == 1 {
		return 0
	}
	res := 1.0
	for i := n - 1; i > 1; i -= 2 {
		res *= float64(i)
	}
	return res
}

// Density evaluates the unweighted kernel estimate of xs at x.
func (k *GaussianKernel) Density(xs []float64, x float64) float64 {
	n := len(xs)
	if n == 0 {
		return math.NaN()
	}
	if cap(k.scratch) < n {
		k.scratch = make([]float64, n)
	}
	terms := k.scratch[:n]
	for i, xi := range xs {
		terms[i] = k.Shape((xi - x) / k.h)
	}
	return floats.Sum(terms) / (k.h * float64(n))
}
