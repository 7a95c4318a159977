package store

import (
	"math"
	"math/rand"
	"sync"
)

// HNSWParams tune the graph. Zero values fall back to the defaults the
// service has always shipped with.
type HNSWParams struct {
	M              int // max neighbors per node above layer 0
	EfConstruction int // candidate pool size during insertion
	EfSearch       int // candidate pool size during queries
}

func (p HNSWParams) withDefaults() HNSWParams {
	if p.M == 0 {
		p.M = 16
	}
	if p.EfConstruction == 0 {
		p.EfConstruction = 200
	}
	if p.EfSearch == 0 {
		p.EfSearch = 50
	}
	return p
}

type hnswNode struct {
	id        string
	vector    []float32
	level     int
	neighbors [][]uint32 // neighbors[layer] = node indices
	deleted   bool
}

// hnswIndex is a hierarchical navigable small world graph. Deletes are lazy:
// nodes stay in the graph as routing points but are excluded from results.
type hnswIndex struct {
	mu         sync.RWMutex
	nodes      []hnswNode
	idToNode   map[string]uint32
	entryPoint int32 // -1 while empty
	maxLevel   int
	levelMult  float64
	params     HNSWParams
	dist       func(a, b []float32) float32
	live       int
}

func newHNSWIndex(metric DistanceMetric, params HNSWParams) *hnswIndex {
	params = params.withDefaults()
	return &hnswIndex{
		idToNode:   make(map[string]uint32),
		entryPoint: -1,
		levelMult:  1.0 / math.Log(float64(params.M)),
		params:     params,
		dist:       metric.distanceFunc(),
	}
}

func (h *hnswIndex) randomLevel() int {
	return int(-math.Log(rand.Float64()) * h.levelMult)
}

// Add inserts a vector under id. The caller guarantees the id is not present.
func (h *hnswIndex) Add(id string, vector []float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	level := h.randomLevel()
	idx := uint32(len(h.nodes))

	n := hnswNode{
		id:        id,
		vector:    vector,
		level:     level,
		neighbors: make([][]uint32, level+1),
	}
	for i := range n.neighbors {
		n.neighbors[i] = make([]uint32, 0, h.params.M)
	}

	h.nodes = append(h.nodes, n)
	h.idToNode[id] = idx
	h.live++

	if h.entryPoint < 0 {
		h.entryPoint = int32(idx)
		h.maxLevel = level
		return
	}

	curr := uint32(h.entryPoint)
	for l := h.maxLevel; l > level; l-- {
		curr = h.greedyDescend(vector, curr, l)
	}

	for l := min(level, h.maxLevel); l >= 0; l-- {
		found := h.searchLayer(vector, curr, h.params.EfConstruction, l)
		h.connect(idx, found, l)
		if len(found) > 0 {
			curr = found[0]
		}
	}

	if level > h.maxLevel {
		h.maxLevel = level
		h.entryPoint = int32(idx)
	}
}

// greedyDescend walks to the local minimum for query within one layer.
func (h *hnswIndex) greedyDescend(query []float32, entry uint32, layer int) uint32 {
	curr := entry
	currDist := h.dist(query, h.nodes[curr].vector)
	for {
		changed := false
		if layer < len(h.nodes[curr].neighbors) {
			for _, nb := range h.nodes[curr].neighbors[layer] {
				d := h.dist(query, h.nodes[nb].vector)
				if d < currDist {
					curr = nb
					currDist = d
					changed = true
				}
			}
		}
		if !changed {
			return curr
		}
	}
}

// searchLayer runs an ef-bounded best-first expansion and returns the node
// indices found, closest first.
func (h *hnswIndex) searchLayer(query []float32, entry uint32, ef, layer int) []uint32 {
	visited := map[uint32]bool{entry: true}
	frontier := &minHeap{}
	results := &minHeap{}

	d := h.dist(query, h.nodes[entry].vector)
	frontier.Push(candidate{key: entry, dist: d})
	results.Push(candidate{key: entry, dist: d})

	for frontier.Len() > 0 {
		curr := frontier.Pop()
		if results.Len() >= ef && curr.dist > results.Farthest() {
			break
		}
		if layer >= len(h.nodes[curr.key].neighbors) {
			continue
		}
		for _, nb := range h.nodes[curr.key].neighbors[layer] {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			nd := h.dist(query, h.nodes[nb].vector)
			if results.Len() < ef || nd < results.Farthest() {
				frontier.Push(candidate{key: nb, dist: nd})
				results.Push(candidate{key: nb, dist: nd})
				if results.Len() > ef {
					results.PopFarthest()
				}
			}
		}
	}

	out := make([]uint32, 0, results.Len())
	for results.Len() > 0 {
		out = append(out, results.Pop().key)
	}
	return out
}

func (h *hnswIndex) connect(idx uint32, found []uint32, layer int) {
	m := h.params.M
	if layer == 0 {
		m = h.params.M * 2
	}

	selected := found
	if len(selected) > m {
		selected = selected[:m]
	}

	h.nodes[idx].neighbors[layer] = append(h.nodes[idx].neighbors[layer], selected...)
	for _, nb := range selected {
		if layer >= len(h.nodes[nb].neighbors) {
			continue
		}
		h.nodes[nb].neighbors[layer] = append(h.nodes[nb].neighbors[layer], idx)
		if len(h.nodes[nb].neighbors[layer]) > m {
			h.prune(nb, layer, m)
		}
	}
}

// prune keeps only the m closest neighbors of a node at one layer.
func (h *hnswIndex) prune(idx uint32, layer, m int) {
	nbs := h.nodes[idx].neighbors[layer]
	heap := make(maxHeap, 0, m)
	for _, nb := range nbs {
		d := h.dist(h.nodes[idx].vector, h.nodes[nb].vector)
		if heap.Len() < m {
			heap.Push(candidate{key: nb, dist: d})
		} else if d < heap[0].dist {
			heap.Replace(candidate{key: nb, dist: d})
		}
	}
	kept := make([]uint32, heap.Len())
	for i, c := range heap {
		kept[i] = c.key
	}
	h.nodes[idx].neighbors[layer] = kept
}

// Remove marks the id deleted. The node keeps routing traffic through the
// graph until the collection is next rebuilt from a snapshot.
func (h *hnswIndex) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx, ok := h.idToNode[id]
	if !ok {
		return
	}
	h.nodes[idx].deleted = true
	delete(h.idToNode, id)
	h.live--
}

// Search returns up to k live neighbors of query, closest first.
func (h *hnswIndex) Search(query []float32, k int) []neighbor {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.entryPoint < 0 || h.live == 0 {
		return nil
	}

	curr := uint32(h.entryPoint)
	for l := h.maxLevel; l > 0; l-- {
		curr = h.greedyDescend(query, curr, l)
	}

	ef := h.params.EfSearch
	if k > ef {
		ef = k
	}
	found := h.searchLayer(query, curr, ef, 0)

	out := make([]neighbor, 0, k)
	for _, idx := range found {
		if len(out) >= k {
			break
		}
		n := &h.nodes[idx]
		if n.deleted {
			continue
		}
		out = append(out, neighbor{id: n.id, dist: h.dist(query, n.vector)})
	}
	return out
}

// Len returns the number of live vectors.
func (h *hnswIndex) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.live
}

// MemoryUsage estimates the heap held by vectors and adjacency lists.
func (h *hnswIndex) MemoryUsage() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var usage uint64
	for i := range h.nodes {
		n := &h.nodes[i]
		usage += uint64(len(n.vector)) * 4
		usage += uint64(len(n.id))
		for _, layer := range n.neighbors {
			usage += uint64(len(layer)) * 4
		}
	}
	return usage
}
