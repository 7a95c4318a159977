package store

import "sync"

const ivfClusters = 100

// flatIndex is an exact index: vectors live in a paged arena and queries scan
// either the whole arena or, once trained, the nearest IVF bucket.
type flatIndex struct {
	mu       sync.RWMutex
	arena    *vectorArena
	keyToID  []string
	idToKey  map[string]uint32
	deleted  map[uint32]bool
	dist     func(a, b []float32) float32
	ivf      *ivfIndex
	numAlive int
}

func newFlatIndex(dim int, metric DistanceMetric) *flatIndex {
	return &flatIndex{
		arena:   newVectorArena(dim),
		idToKey: make(map[string]uint32),
		deleted: make(map[uint32]bool),
		dist:    metric.distanceFunc(),
		ivf:     newIVFIndex(ivfClusters),
	}
}

func (f *flatIndex) Add(id string, vector []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key, err := f.arena.Add(vector)
	if err != nil {
		// The collection validates dimensions before reaching the index.
		return
	}
	f.keyToID = append(f.keyToID, id)
	f.idToKey[id] = key
	f.ivf.Assign(key, vector, f.dist)
	f.numAlive++
}

// Remove tombstones the key; arena slots are never reclaimed in place.
func (f *flatIndex) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.idToKey[id]
	if !ok {
		return
	}
	f.deleted[key] = true
	delete(f.idToKey, id)
	f.numAlive--
}

func (f *flatIndex) Search(query []float32, k int) []neighbor {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.numAlive == 0 || k <= 0 {
		return nil
	}

	var heap maxHeap
	if f.ivf.trained {
		heap = f.scanBucket(query, k)
	} else {
		heap = f.scanAll(query, k)
	}

	// Heap root is the worst match; drain into closest-first order.
	out := make([]neighbor, heap.Len())
	for i := len(out) - 1; i >= 0; i-- {
		worst := heap[0]
		last := len(heap) - 1
		heap[0] = heap[last]
		heap = heap[:last]
		if last > 0 {
			heap.down(0, last)
		}
		out[i] = neighbor{id: f.keyToID[worst.key], dist: worst.dist}
	}
	return out
}

func (f *flatIndex) scanAll(query []float32, k int) maxHeap {
	heap := make(maxHeap, 0, k)
	total := uint32(f.arena.Len())
	for key := uint32(0); key < total; key++ {
		if f.deleted[key] {
			continue
		}
		d := f.dist(query, f.arena.At(key))
		if heap.Len() < k {
			heap.Push(candidate{key: key, dist: d})
		} else if d < heap[0].dist {
			heap.Replace(candidate{key: key, dist: d})
		}
	}
	return heap
}

func (f *flatIndex) scanBucket(query []float32, k int) maxHeap {
	bucket := f.ivf.buckets[f.ivf.nearestCentroid(query, f.dist)]

	heap := make(maxHeap, 0, k)
	for _, key := range bucket {
		if f.deleted[key] {
			continue
		}
		d := f.dist(query, f.arena.At(key))
		if heap.Len() < k {
			heap.Push(candidate{key: key, dist: d})
		} else if d < heap[0].dist {
			heap.Replace(candidate{key: key, dist: d})
		}
	}
	return heap
}

// TrainIVF clusters the current arena contents. Ten Lloyd's iterations match
// the behavior the admin endpoint has always had.
func (f *flatIndex) TrainIVF() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ivf.Train(f.arena, 10, f.dist)
}

func (f *flatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.numAlive
}

func (f *flatIndex) MemoryUsage() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var usage uint64
	for _, page := range f.arena.pages {
		usage += uint64(len(page))
	}
	for _, id := range f.keyToID {
		usage += uint64(len(id))
	}
	for _, centroid := range f.ivf.centroids {
		usage += uint64(len(centroid)) * 4
	}
	return usage
}
