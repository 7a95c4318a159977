package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

const (
	InsertCount = 5_000
	SearchCount = 10_000
	Concurrency = 10
	BatchSize   = 50
	Dimension   = 128
)

// Wire shapes matching the server API.
type createCollectionRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

type vectorPayload struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

type upsertRequest struct {
	Collection string          `json:"collection"`
	Vectors    []vectorPayload `json:"vectors"`
}

type searchRequest struct {
	Collection string    `json:"collection"`
	Vector     []float32 `json:"vector"`
	TopK       int       `json:"top_k"`
}

var baseURL string

func main() {
	flag.StringVar(&baseURL, "url", "http://localhost:50052", "server base URL")
	collection := flag.String("collection", "loadtest", "collection to target")
	flag.Parse()

	fmt.Println("🔥 Starting vectord HTTP Load Generator")
	fmt.Printf("Target: %s | Workers: %d\n", baseURL, Concurrency)

	if err := sendRequest("POST", "/collections", createCollectionRequest{
		Name:      *collection,
		Dimension: Dimension,
		Metric:    "cosine",
	}); err != nil {
		// 409 means it survived a previous run, which is fine.
		fmt.Printf("create collection: %v (continuing)\n", err)
	}

	fmt.Println("\n📝 Phase 1: Ingestion...")
	batches := InsertCount / BatchSize
	runTest("insert", batches, func(workerID, i int) error {
		vectors := make([]vectorPayload, BatchSize)
		for j := range vectors {
			vectors[j] = vectorPayload{
				ID:       fmt.Sprintf("load-%d-%d-%d", workerID, i, j),
				Values:   randomVector(Dimension),
				Metadata: map[string]string{"source": "loadtest"},
			}
		}
		return sendRequest("POST", "/vectors", upsertRequest{
			Collection: *collection,
			Vectors:    vectors,
		})
	})

	fmt.Println("\n🔍 Phase 2: Search...")
	runTest("search", SearchCount, func(workerID, i int) error {
		return sendRequest("POST", "/search", searchRequest{
			Collection: *collection,
			Vector:     randomVector(Dimension),
			TopK:       10,
		})
	})

	fmt.Println("\n✅ Load Test Complete!")
}

// Generic test runner to handle concurrency and timing.
func runTest(name string, totalOps int, opFunc func(workerID, i int) error) {
	var wg sync.WaitGroup
	start := time.Now()

	opsPerWorker := totalOps / Concurrency

	for w := 0; w < Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				if err := opFunc(workerID, i); err != nil {
					fmt.Printf("❌ %s error: %v\n", name, err)
				}
			}
		}(w)
	}

	wg.Wait()
	duration := time.Since(start)
	qps := float64(totalOps) / duration.Seconds()

	fmt.Printf("⏱️ %s Duration: %s\n", name, duration)
	fmt.Printf("📈 %s QPS: %.2f\n", name, qps)
}

func sendRequest(method, endpoint string, body interface{}) error {
	client := &http.Client{Timeout: 5 * time.Second}

	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, baseURL+endpoint, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func randomVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := 0; i < dim; i++ {
		vec[i] = rand.Float32()
	}
	return vec
}
