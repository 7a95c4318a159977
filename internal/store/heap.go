package store

// candidate is a heap entry used during index scans.
type candidate struct {
	key  uint32
	dist float32
}

// maxHeap keeps the k closest candidates seen so far: the root is the worst
// of the current set, so a better candidate replaces it in O(log k).
type maxHeap []candidate

func (h *maxHeap) Len() int { return len(*h) }

func (h *maxHeap) Push(c candidate) {
	*h = append(*h, c)
	h.up(len(*h) - 1)
}

// Replace swaps out the current worst candidate.
func (h *maxHeap) Replace(c candidate) {
	(*h)[0] = c
	h.down(0, len(*h))
}

func (h *maxHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || (*h)[j].dist <= (*h)[i].dist {
			break
		}
		(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
		j = i
	}
}

func (h *maxHeap) down(i0, n int) {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && (*h)[j2].dist > (*h)[j1].dist {
			j = j2
		}
		if (*h)[i].dist >= (*h)[j].dist {
			break
		}
		(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
		i = j
	}
}

// minHeap orders candidates closest-first, used as the expansion frontier in
// graph search.
type minHeap struct {
	items []candidate
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) Push(c candidate) {
	h.items = append(h.items, c)
	h.up(len(h.items) - 1)
}

func (h *minHeap) Pop() candidate {
	c := h.items[0]
	h.items[0] = h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	h.down(0)
	return c
}

func (h *minHeap) Peek() candidate { return h.items[0] }

// PopFarthest removes the entry with the largest distance. Linear scan is
// fine: the heap is bounded by ef.
func (h *minHeap) PopFarthest() {
	if len(h.items) == 0 {
		return
	}
	worst := 0
	for i := 1; i < len(h.items); i++ {
		if h.items[i].dist > h.items[worst].dist {
			worst = i
		}
	}
	last := len(h.items) - 1
	h.items[worst] = h.items[last]
	h.items = h.items[:last]
	if worst < last {
		h.up(worst)
		h.down(worst)
	}
}

func (h *minHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].dist >= h.items[parent].dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

// Farthest returns the largest distance currently held.
func (h *minHeap) Farthest() float32 {
	worst := h.items[0].dist
	for _, c := range h.items[1:] {
		if c.dist > worst {
			worst = c.dist
		}
	}
	return worst
}

func (h *minHeap) down(i int) {
	for {
		left := 2*i + 1
		right := 2*i + 2
		smallest := i
		if left < len(h.items) && h.items[left].dist < h.items[smallest].dist {
			smallest = left
		}
		if right < len(h.items) && h.items[right].dist < h.items[smallest].dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
