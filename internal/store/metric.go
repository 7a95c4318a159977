package store

import "fmt"

// DistanceMetric selects how vector similarity is computed.
type DistanceMetric string

const (
	MetricCosine     DistanceMetric = "cosine"
	MetricEuclidean  DistanceMetric = "euclidean"
	MetricDotProduct DistanceMetric = "dot_product"
)

// ParseMetric maps a wire string to a metric. Empty defaults to cosine.
func ParseMetric(s string) (DistanceMetric, error) {
	switch s {
	case "", "cosine":
		return MetricCosine, nil
	case "euclidean":
		return MetricEuclidean, nil
	case "dot_product":
		return MetricDotProduct, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// distanceFunc returns a distance for the metric where smaller is closer.
// Cosine uses 1-similarity, euclidean uses squared L2, dot product is negated.
func (m DistanceMetric) distanceFunc() func(a, b []float32) float32 {
	switch m {
	case MetricEuclidean:
		return SquaredL2
	case MetricDotProduct:
		return func(a, b []float32) float32 { return -DotProduct(a, b) }
	default:
		return CosineDistance
	}
}

// Score converts an internal distance to the wire score, where larger is
// always better. For cosine this is the similarity, for dot product the raw
// dot product, for euclidean the negated squared distance.
func (m DistanceMetric) Score(dist float32) float32 {
	switch m {
	case MetricCosine:
		return 1 - dist
	default:
		return -dist
	}
}
