package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectord/internal/store"
)

func newTestApp(t *testing.T) (*fiber.App, *store.Storage) {
	t.Helper()
	storage, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	app := fiber.New()
	NewHandler(storage, nil).Register(app)
	return app, storage
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, payload
}

func createCollection(t *testing.T, app *fiber.App, name string, dim int) {
	t.Helper()
	resp, _ := doJSON(t, app, "POST", "/collections", CreateCollectionRequest{
		Name:      name,
		Dimension: dim,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, "GET", "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateCollection(t *testing.T) {
	app, storage := newTestApp(t)

	createCollection(t, app, "docs", 4)
	assert.True(t, storage.Exists("docs"))

	// Creating the same collection again conflicts.
	resp, _ := doJSON(t, app, "POST", "/collections", CreateCollectionRequest{
		Name:      "docs",
		Dimension: 4,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCreateCollectionBadMetric(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, "POST", "/collections", CreateCollectionRequest{
		Name:      "docs",
		Dimension: 4,
		Metric:    "hamming",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListCollections(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "a", 2)
	createCollection(t, app, "b", 3)

	resp, body := doJSON(t, app, "GET", "/collections", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out ListCollectionsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Collections, 2)
	assert.Equal(t, "a", out.Collections[0].Name)
	assert.Equal(t, 3, out.Collections[1].Dimension)
}

func TestCollectionStats(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 3)

	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors:    []VectorPayload{{ID: "v1", Values: []float32{1, 2, 3}}},
	})

	resp, body := doJSON(t, app, "GET", "/collections/docs", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out StatsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 1, out.TotalVectors)
	assert.Equal(t, 3, out.Dimension)
	assert.Equal(t, "cosine", out.Metric)
	assert.Greater(t, out.MemoryUsageBytes, uint64(0))

	resp, _ = doJSON(t, app, "GET", "/collections/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpsert(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, body := doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors: []VectorPayload{
			{ID: "v1", Values: []float32{1, 0}},
			{Values: []float32{0, 1}},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out UpsertResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Success)
	assert.Equal(t, 2, out.InsertedCount)
	require.Len(t, out.IDs, 2)
	assert.Equal(t, "v1", out.IDs[0])
	assert.NotEmpty(t, out.IDs[1])
}

func TestUpsertErrors(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	// Wrong dimension.
	resp, _ := doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors:    []VectorPayload{{ID: "v1", Values: []float32{1, 2, 3}}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unknown collection.
	resp, _ = doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "missing",
		Vectors:    []VectorPayload{{ID: "v1", Values: []float32{1, 2}}},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// No vectors.
	resp, _ = doJSON(t, app, "POST", "/vectors", UpsertRequest{Collection: "docs"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors: []VectorPayload{
			{ID: "x", Values: []float32{1, 0}, Metadata: map[string]string{"kind": "axis"}},
			{ID: "y", Values: []float32{0, 1}},
		},
	})

	resp, body := doJSON(t, app, "POST", "/search", SearchRequest{
		Collection:      "docs",
		Vector:          []float32{1, 0.1},
		TopK:            1,
		IncludeMetadata: true,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out SearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "x", out.Results[0].ID)
	assert.Equal(t, "axis", out.Results[0].Metadata["kind"])
	assert.GreaterOrEqual(t, out.SearchTimeMs, 0.0)
}

func TestSearchAcceptsQueryKey(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors:    []VectorPayload{{ID: "x", Values: []float32{1, 0}}},
	})

	resp, body := doJSON(t, app, "POST", "/search", map[string]interface{}{
		"collection": "docs",
		"query":      []float32{1, 0},
		"top_k":      1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out SearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "x", out.Results[0].ID)
}

func TestSearchErrors(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, _ := doJSON(t, app, "POST", "/search", SearchRequest{
		Collection: "docs",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/search", SearchRequest{
		Collection: "missing",
		Vector:     []float32{1, 0},
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/search", SearchRequest{
		Collection: "docs",
		Vector:     []float32{1, 0, 0},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSearchEmptyCollection(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, body := doJSON(t, app, "POST", "/search", SearchRequest{
		Collection: "docs",
		Vector:     []float32{1, 0},
		TopK:       5,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out SearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Empty(t, out.Results)
}

func TestBatchSearch(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors: []VectorPayload{
			{ID: "a", Values: []float32{1, 0}},
			{ID: "b", Values: []float32{0, 1}},
		},
	})

	resp, body := doJSON(t, app, "POST", "/search/batch", BatchSearchRequest{
		Collection: "docs",
		Queries:    [][]float32{{1, 0}, {0, 1}},
		TopK:       1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out BatchSearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 2, out.TotalQueries)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "a", out.Results[0].Results[0].ID)
	assert.Equal(t, "b", out.Results[1].Results[0].ID)
}

func TestVectorCRUD(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors:    []VectorPayload{{ID: "v1", Values: []float32{1, 2}, Metadata: map[string]string{"a": "b"}}},
	})

	resp, body := doJSON(t, app, "GET", "/vectors/docs/v1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got GetVectorResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []float32{1, 2}, got.Values)

	// Metadata-only update keeps the stored values.
	resp, _ = doJSON(t, app, "PUT", "/vectors/docs/v1", UpdateVectorRequest{
		Metadata: map[string]string{"a": "c"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, body = doJSON(t, app, "GET", "/vectors/docs/v1", nil)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []float32{1, 2}, got.Values)
	assert.Equal(t, "c", got.Metadata["a"])

	resp, _ = doJSON(t, app, "DELETE", "/vectors/docs/v1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/vectors/docs/v1", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDropCollection(t *testing.T) {
	app, storage := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, _ := doJSON(t, app, "DELETE", "/collections/docs", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, storage.Exists("docs"))

	resp, _ = doJSON(t, app, "DELETE", "/collections/docs", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSave(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, _ := doJSON(t, app, "POST", "/save", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTenantFlow(t *testing.T) {
	app, storage := newTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/tenants/acme/namespaces", CreateNamespaceRequest{
		Namespace: "docs",
		Dimension: 2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, storage.Exists("acme__docs"))

	doJSON(t, app, "POST", "/tenants/acme/namespaces", CreateNamespaceRequest{
		Namespace: "notes",
		Dimension: 2,
	})

	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "acme__docs",
		Vectors:    []VectorPayload{{ID: "d1", Values: []float32{1, 0}}},
	})
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "acme__notes",
		Vectors:    []VectorPayload{{ID: "n1", Values: []float32{0, 1}}},
	})

	resp, body := doJSON(t, app, "GET", "/tenants/acme/namespaces", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var nsList ListNamespacesResponse
	require.NoError(t, json.Unmarshal(body, &nsList))
	assert.Equal(t, "acme", nsList.TenantID)
	require.Len(t, nsList.Namespaces, 2)

	// Search across both namespaces.
	resp, body = doJSON(t, app, "POST", "/tenants/acme/search", TenantSearchRequest{
		Vector: []float32{1, 0},
		TopK:   2,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var searchOut TenantSearchResponse
	require.NoError(t, json.Unmarshal(body, &searchOut))
	assert.Equal(t, 2, searchOut.NamespacesSearched)
	require.NotEmpty(t, searchOut.Results)
	assert.Equal(t, "d1", searchOut.Results[0].ID)
	assert.Equal(t, "docs", searchOut.Results[0].Namespace)

	// Search one namespace only.
	resp, body = doJSON(t, app, "POST", "/tenants/acme/notes/search", TenantSearchRequest{
		Vector: []float32{0, 1},
		TopK:   1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &searchOut))
	require.Len(t, searchOut.Results, 1)
	assert.Equal(t, "n1", searchOut.Results[0].ID)

	resp, body = doJSON(t, app, "GET", "/tenants/acme/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats TenantStatsResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2, stats.NamespaceCount)
	assert.Equal(t, 2, stats.TotalVectors)
}

func TestTenantIsolation(t *testing.T) {
	app, _ := newTestApp(t)

	for _, tenant := range []string{"acme", "globex"} {
		resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/tenants/%s/namespaces", tenant), CreateNamespaceRequest{
			Namespace: "docs",
			Dimension: 2,
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		doJSON(t, app, "POST", "/vectors", UpsertRequest{
			Collection: tenant + "__docs",
			Vectors:    []VectorPayload{{ID: tenant + "-v", Values: []float32{1, 0}}},
		})
	}

	_, body := doJSON(t, app, "POST", "/tenants/acme/search", TenantSearchRequest{
		Vector: []float32{1, 0},
		TopK:   10,
	})
	var out TenantSearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	for _, r := range out.Results {
		assert.Equal(t, "acme-v", r.ID, "tenant search leaked another tenant's vector")
	}
}

func TestInsert(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, body := doJSON(t, app, "POST", "/insert", InsertRequest{
		Collection: "docs",
		Vector:     VectorPayload{ID: "v1", Values: []float32{1, 0}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "v1", out["id"])

	// Missing values are rejected.
	resp, _ = doJSON(t, app, "POST", "/insert", InsertRequest{Collection: "docs"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBatchInsertSkipsMalformed(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, body := doJSON(t, app, "POST", "/batch_insert", UpsertRequest{
		Collection: "docs",
		Vectors: []VectorPayload{
			{ID: "good", Values: []float32{1, 0}},
			{ID: "empty"},
			{Values: []float32{0, 1}},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out BatchInsertResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Success)
	assert.Equal(t, 2, out.InsertedCount)
	assert.Equal(t, 3, out.TotalReceived)
}

func TestBatchSearchLegacyRoute(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors:    []VectorPayload{{ID: "a", Values: []float32{1, 0}}},
	})

	resp, body := doJSON(t, app, "POST", "/batch_search", BatchSearchRequest{
		Collection: "docs",
		Queries:    [][]float32{{1, 0}},
		TopK:       1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out BatchSearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "a", out.Results[0].Results[0].ID)
}

func TestSearchWithFilter(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "docs",
		Vectors: []VectorPayload{
			{ID: "b1", Values: []float32{1, 0}, Metadata: map[string]string{"category": "billing"}},
			{ID: "b2", Values: []float32{0.9, 0.1}, Metadata: map[string]string{"category": "billing"}},
			{ID: "s1", Values: []float32{0.95, 0.05}, Metadata: map[string]string{"category": "shipping"}},
		},
	})

	resp, body := doJSON(t, app, "POST", "/search_with_filter", SearchRequest{
		Collection: "docs",
		Vector:     []float32{1, 0},
		TopK:       2,
		Filter:     map[string]string{"category": "billing"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out FilteredSearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 2)
	for _, r := range out.Results {
		assert.Equal(t, "billing", r.Metadata["category"])
	}
	assert.Equal(t, 3, out.TotalCandidates)
}

func TestSaveNamedCollection(t *testing.T) {
	app, _ := newTestApp(t)
	createCollection(t, app, "docs", 2)

	resp, body := doJSON(t, app, "POST", "/save", SaveRequest{Collection: "docs"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "docs", out["collection"])

	resp, _ = doJSON(t, app, "POST", "/save", SaveRequest{Collection: "missing"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/save_all", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTenantSearchCategoryFilter(t *testing.T) {
	app, _ := newTestApp(t)
	doJSON(t, app, "POST", "/tenants/acme/namespaces", CreateNamespaceRequest{
		Namespace: "docs",
		Dimension: 2,
	})
	doJSON(t, app, "POST", "/vectors", UpsertRequest{
		Collection: "acme__docs",
		Vectors: []VectorPayload{
			{ID: "bill", Values: []float32{1, 0}, Metadata: map[string]string{"category": "billing"}},
			{ID: "ship", Values: []float32{0.99, 0.01}, Metadata: map[string]string{"category": "shipping"}},
		},
	})

	// The category shorthand narrows results like an explicit filter.
	_, body := doJSON(t, app, "POST", "/tenants/acme/search", TenantSearchRequest{
		Vector:   []float32{1, 0},
		TopK:     10,
		Category: "shipping",
	})
	var out TenantSearchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "ship", out.Results[0].ID)
	assert.Equal(t, "shipping", out.Results[0].Category)

	// An explicit metadata filter behaves the same.
	_, body = doJSON(t, app, "POST", "/tenants/acme/search", TenantSearchRequest{
		Vector: []float32{1, 0},
		TopK:   10,
		Filter: map[string]string{"category": "billing"},
	})
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "bill", out.Results[0].ID)
}

func TestFAQFlow(t *testing.T) {
	app, _ := newTestApp(t)
	doJSON(t, app, "POST", "/tenants/acme/namespaces", CreateNamespaceRequest{
		Namespace: "support",
		Dimension: 2,
	})

	resp, body := doJSON(t, app, "POST", "/tenants/acme/support/faq", FAQPayload{
		ID:       "f1",
		Question: "How do I reset my password?",
		Answer:   "Use the account settings page.",
		Category: "account",
		Vector:   []float32{1, 0},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "f1", created["id"])

	// Missing vector is rejected.
	resp, _ = doJSON(t, app, "POST", "/tenants/acme/support/faq", FAQPayload{Question: "q"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unknown namespace 404s.
	resp, _ = doJSON(t, app, "POST", "/tenants/acme/nowhere/faq", FAQPayload{Vector: []float32{1, 0}})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/tenants/acme/support/faq/f1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var faq FAQResponse
	require.NoError(t, json.Unmarshal(body, &faq))
	assert.Equal(t, "How do I reset my password?", faq.Question)
	assert.Equal(t, "account", faq.Category)
	assert.Equal(t, "acme", faq.TenantID)

	// Partial update keeps the untouched fields.
	resp, _ = doJSON(t, app, "PUT", "/tenants/acme/support/faq/f1", FAQPayload{
		Answer: "Use the self-service portal.",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, body = doJSON(t, app, "GET", "/tenants/acme/support/faq/f1", nil)
	require.NoError(t, json.Unmarshal(body, &faq))
	assert.Equal(t, "How do I reset my password?", faq.Question)
	assert.Equal(t, "Use the self-service portal.", faq.Answer)

	// FAQ entries surface through tenant search with their text.
	_, body = doJSON(t, app, "POST", "/tenants/acme/search", TenantSearchRequest{
		Vector: []float32{1, 0},
		TopK:   1,
	})
	var searchOut TenantSearchResponse
	require.NoError(t, json.Unmarshal(body, &searchOut))
	require.Len(t, searchOut.Results, 1)
	assert.Equal(t, "How do I reset my password?", searchOut.Results[0].Question)
	assert.Equal(t, "Use the self-service portal.", searchOut.Results[0].Answer)

	resp, _ = doJSON(t, app, "DELETE", "/tenants/acme/support/faq/f1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, "GET", "/tenants/acme/support/faq/f1", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestBulkFAQ(t *testing.T) {
	app, _ := newTestApp(t)
	doJSON(t, app, "POST", "/tenants/acme/namespaces", CreateNamespaceRequest{
		Namespace: "support",
		Dimension: 2,
	})

	resp, body := doJSON(t, app, "POST", "/tenants/acme/support/faq/bulk", BulkFAQRequest{
		Items: []FAQPayload{
			{Question: "a", Answer: "1", Vector: []float32{1, 0}},
			{Question: "b", Answer: "2", Vector: []float32{0, 1}},
			{Question: "no vector"},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, float64(2), out["inserted_count"])
	assert.Equal(t, float64(3), out["total_received"])
}

func TestCreateNamespaceRejectsSeparator(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := doJSON(t, app, "POST", "/tenants/acme/namespaces", CreateNamespaceRequest{
		Namespace: "bad__name",
		Dimension: 2,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
