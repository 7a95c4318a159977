package store

import "math"

// Scalar ports of the original SIMD kernels. Loops are kept simple so the
// compiler can vectorize them.

// DotProduct returns the inner product of two equal-length vectors.
func DotProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 returns the squared euclidean distance between two vectors.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Norm returns the L2 magnitude of a vector.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(DotProduct(v, v))))
}

// CosineSimilarity returns 1 for identical directions, 0 for orthogonal
// vectors and for any zero-magnitude input.
func CosineSimilarity(a, b []float32) float32 {
	magA := Norm(a)
	magB := Norm(b)
	if magA < 1e-9 || magB < 1e-9 {
		return 0
	}
	return DotProduct(a, b) / (magA * magB)
}

// CosineDistance converts cosine similarity to a distance: 0 for identical
// vectors, 2 for opposite vectors.
func CosineDistance(a, b []float32) float32 {
	return 1 - CosineSimilarity(a, b)
}

// Normalize scales v to unit length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	mag := Norm(v)
	if mag < 1e-9 {
		return
	}
	inv := 1 / mag
	for i := range v {
		v[i] *= inv
	}
}

func addToVector(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}

func divVector(v []float32, n float32) {
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}
