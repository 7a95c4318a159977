package store

import "math/rand"

// ivfIndex partitions arena vectors into k-means clusters so exact search can
// probe a single bucket instead of scanning everything. It trades recall for
// throughput and is only consulted once trained.
type ivfIndex struct {
	centroids   [][]float32
	buckets     map[int][]uint32
	trained     bool
	numClusters int
}

func newIVFIndex(numClusters int) *ivfIndex {
	return &ivfIndex{
		buckets:     make(map[int][]uint32),
		numClusters: numClusters,
	}
}

// nearestCentroid returns the index of the closest centroid under dist.
func (ivf *ivfIndex) nearestCentroid(vec []float32, dist func(a, b []float32) float32) int {
	best := 0
	bestDist := dist(vec, ivf.centroids[0])
	for c := 1; c < len(ivf.centroids); c++ {
		if d := dist(vec, ivf.centroids[c]); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// Train runs Lloyd's iterations over every arena vector. Centroids are seeded
// from random members. A no-op when there are fewer vectors than clusters.
func (ivf *ivfIndex) Train(arena *vectorArena, iterations int, dist func(a, b []float32) float32) {
	size := arena.Len()
	if size < ivf.numClusters {
		return
	}
	dim := arena.dim

	ivf.centroids = make([][]float32, ivf.numClusters)
	for i := range ivf.centroids {
		seed := arena.At(uint32(rand.Intn(size)))
		centroid := make([]float32, dim)
		copy(centroid, seed)
		ivf.centroids[i] = centroid
	}

	for iter := 0; iter < iterations; iter++ {
		assigned := make(map[int][]uint32)
		sums := make([][]float32, ivf.numClusters)
		counts := make([]int, ivf.numClusters)
		for c := range sums {
			sums[c] = make([]float32, dim)
		}

		for i := 0; i < size; i++ {
			vec := arena.At(uint32(i))
			c := ivf.nearestCentroid(vec, dist)
			assigned[c] = append(assigned[c], uint32(i))
			addToVector(sums[c], vec)
			counts[c]++
		}

		for c := 0; c < ivf.numClusters; c++ {
			if counts[c] > 0 {
				divVector(sums[c], float32(counts[c]))
				ivf.centroids[c] = sums[c]
			}
		}

		if iter == iterations-1 {
			ivf.buckets = assigned
		}
	}
	ivf.trained = true
}

// Assign adds a key inserted after training to its nearest bucket.
func (ivf *ivfIndex) Assign(key uint32, vec []float32, dist func(a, b []float32) float32) {
	if !ivf.trained {
		return
	}
	c := ivf.nearestCentroid(vec, dist)
	ivf.buckets[c] = append(ivf.buckets[c], key)
}
