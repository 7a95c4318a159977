package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"vectord/internal/store"
)

const (
	Dimension    = 128
	TotalVectors = 100_000
	NumQueries   = 1000
	Workers      = 10
)

func main() {
	fmt.Println("🔥 Starting vectord Index Benchmark (Flat+IVF vs HNSW)")
	fmt.Printf("Config: Dim=%d | Items=%d | Queries=%d\n", Dimension, TotalVectors, NumQueries)

	baseDir := "data_bench"
	os.RemoveAll(baseDir)
	defer os.RemoveAll(baseDir)

	storage, err := store.Open(baseDir)
	if err != nil {
		fmt.Printf("❌ failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer storage.Close()

	benchIndex(storage, "bench_flat", store.IndexFlat)
	benchIndex(storage, "bench_hnsw", store.IndexHNSW)
}

func benchIndex(storage *store.Storage, name string, kind store.IndexKind) {
	fmt.Printf("\n=== %s ===\n", kind)

	if err := storage.CreateCollection(store.CollectionConfig{
		Name:      name,
		Dimension: Dimension,
		Metric:    store.MetricCosine,
		Index:     kind,
	}); err != nil {
		fmt.Printf("❌ create collection: %v\n", err)
		return
	}
	col, _ := storage.Collection(name)

	// --- Phase 1: Ingestion ---
	fmt.Println("--- Phase 1: Ingestion ---")
	start := time.Now()

	var wg sync.WaitGroup
	batch := TotalVectors / Workers
	for w := 0; w < Workers; w++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			offset := idx * batch
			for i := 0; i < batch; i++ {
				col.Upsert(store.VectorRecord{
					ID:     fmt.Sprintf("vec-%d", offset+i),
					Values: randomVector(Dimension),
				})
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Printf("✅ Ingestion Complete: %.2fs (%.0f vec/s)\n",
		elapsed.Seconds(), float64(TotalVectors)/elapsed.Seconds())

	// --- Phase 2: Training (no-op for HNSW) ---
	if kind == store.IndexFlat {
		fmt.Println("--- Phase 2: Training IVF Index ---")
		startTrain := time.Now()
		col.TrainIndex()
		fmt.Printf("✅ Index Trained in %s\n", time.Since(startTrain))
	}

	// --- Phase 3: Search ---
	fmt.Println("--- Phase 3: Search ---")
	startSearch := time.Now()
	var wgSearch sync.WaitGroup
	wgSearch.Add(NumQueries)

	for i := 0; i < NumQueries; i++ {
		go func() {
			defer wgSearch.Done()
			col.Search(randomVector(Dimension), 10, nil)
		}()
	}
	wgSearch.Wait()

	qps := float64(NumQueries) / time.Since(startSearch).Seconds()
	fmt.Printf("🚀 %s QPS: %.2f\n", kind, qps)
	fmt.Printf("💾 Memory: %.2f MB\n", float64(col.MemoryUsage())/(1024*1024))
}

func randomVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		vec[i] = rand.Float32()
	}
	return vec
}
