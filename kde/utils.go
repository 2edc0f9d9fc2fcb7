package kde

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// Reflect returns xs followed by the mirror image of each sample across
// boundary.
func Reflect(xs []float64, boundary float64) []float64 {
	res := make([]float64, 0, 2*len(xs))
	res = append(res, xs...)
	for _, x := range xs {
		res = append(res, 2*boundary-x)
	}
	return res
}

func allEqual(xs []float64) bool {
	for _, x := range xs {
		if x != xs[0] {
			return false
		}
	}
	return len(xs) > 0
}
