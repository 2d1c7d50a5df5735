package scoring

import "math"

// Cosine returns the cosine similarity of a and b. Mismatched or empty
// vectors and zero-norm vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MeanNormalized averages vectors of the given dimension element-wise and
// L2-normalizes the result. Vectors of any other length are skipped.
func MeanNormalized(dim int, vecs ...[]float32) []float32 {
	if dim <= 0 {
		return nil
	}
	sum := make([]float64, dim)
	n := 0
	for _, v := range vecs {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	var norm float64
	for i := range sum {
		sum[i] /= float64(n)
		norm += sum[i] * sum[i]
	}
	out := make([]float32, dim)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i := range sum {
		out[i] = float32(sum[i] / norm)
	}
	return out
}
