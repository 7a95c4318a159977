package store

import (
	"fmt"
	"unsafe"
)

const pageSizeBytes = 4 * 1024 * 1024

// vectorArena stores fixed-dimension vectors contiguously in 4MB pages so
// exact scans walk cache-friendly memory instead of chasing slice headers.
// Callers synchronize access; the flat index holds the lock.
type vectorArena struct {
	dim            int
	pages          [][]byte
	vectorsPerPage int
	nextSlot       int // write position within the newest page
	total          uint32
}

func newVectorArena(dim int) *vectorArena {
	perPage := pageSizeBytes / (dim * 4)
	if perPage == 0 {
		perPage = 1
	}
	return &vectorArena{
		dim:            dim,
		vectorsPerPage: perPage,
	}
}

// Add copies the vector into the arena and returns its stable key.
func (a *vectorArena) Add(vector []float32) (uint32, error) {
	if len(vector) != a.dim {
		return 0, fmt.Errorf("%w: expected %d got %d", ErrDimensionMismatch, a.dim, len(vector))
	}

	if len(a.pages) == 0 || a.nextSlot >= a.vectorsPerPage {
		a.pages = append(a.pages, make([]byte, a.dim*4*a.vectorsPerPage))
		a.nextSlot = 0
	}

	offset := a.nextSlot * a.dim * 4
	dst := a.pages[len(a.pages)-1][offset : offset+a.dim*4]

	// Little-endian float32 layout, same as the wire and snapshot formats.
	src := unsafe.Slice((*byte)(unsafe.Pointer(&vector[0])), len(vector)*4)
	copy(dst, src)

	key := uint32((len(a.pages)-1)*a.vectorsPerPage + a.nextSlot)
	a.nextSlot++
	a.total++
	return key, nil
}

// At returns a zero-copy float32 view of the vector at key. The view is only
// valid while the arena is held.
func (a *vectorArena) At(key uint32) []float32 {
	page := int(key) / a.vectorsPerPage
	slot := int(key) % a.vectorsPerPage
	raw := a.pages[page][slot*a.dim*4:]
	return unsafe.Slice((*float32)(unsafe.Pointer(&raw[0])), a.dim)
}

// Get returns a copy of the vector at key.
func (a *vectorArena) Get(key uint32) ([]float32, error) {
	if key >= a.total {
		return nil, fmt.Errorf("arena key %d out of range", key)
	}
	out := make([]float32, a.dim)
	copy(out, a.At(key))
	return out, nil
}

// Len returns the number of vectors stored.
func (a *vectorArena) Len() int {
	return int(a.total)
}
