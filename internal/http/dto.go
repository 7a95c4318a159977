package http

// CreateCollectionRequest creates a named vector space. Metric defaults to
// cosine, index to hnsw.
type CreateCollectionRequest struct {
	Name           string `json:"name"`
	Dimension      int    `json:"dimension"`
	Metric         string `json:"metric"`
	Index          string `json:"index"`
	M              int    `json:"m"`
	EfConstruction int    `json:"ef_construction"`
	EfSearch       int    `json:"ef_search"`
}

type CollectionInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Count     int    `json:"count"`
	Metric    string `json:"metric"`
}

type ListCollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
}

type StatsResponse struct {
	TotalVectors     int    `json:"total_vectors"`
	MemoryUsageBytes uint64 `json:"memory_usage_bytes"`
	Dimension        int    `json:"dimension"`
	Metric           string `json:"metric"`
	Index            string `json:"index"`
}

// VectorPayload is one vector on the wire.
type VectorPayload struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

type UpsertRequest struct {
	Collection string          `json:"collection"`
	Vectors    []VectorPayload `json:"vectors"`
}

type UpsertResponse struct {
	Success       bool     `json:"success"`
	InsertedCount int      `json:"inserted_count"`
	IDs           []string `json:"ids"`
}

// SearchRequest accepts the query under either "vector" or "query"; older
// clients used the latter.
type SearchRequest struct {
	Collection      string            `json:"collection"`
	Vector          []float32         `json:"vector"`
	Query           []float32         `json:"query"`
	TopK            int               `json:"top_k"`
	IncludeMetadata bool              `json:"include_metadata"`
	Filter          map[string]string `json:"filter"`
}

func (r *SearchRequest) queryVector() []float32 {
	if len(r.Vector) > 0 {
		return r.Vector
	}
	return r.Query
}

type SearchResultItem struct {
	ID       string            `json:"id"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Results      []SearchResultItem `json:"results"`
	SearchTimeMs float64            `json:"search_time_ms"`
}

type BatchSearchRequest struct {
	Collection string      `json:"collection"`
	Queries    [][]float32 `json:"queries"`
	TopK       int         `json:"top_k"`
}

type BatchSearchResponse struct {
	Results         []SearchResponse `json:"results"`
	TotalQueries    int              `json:"total_queries"`
	TotalTimeMs     float64          `json:"total_time_ms"`
	AvgTimePerQuery float64          `json:"avg_time_per_query_ms"`
}

type GetVectorResponse struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

type UpdateVectorRequest struct {
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// Tenant routes address collections named "<tenant>__<namespace>".

type CreateNamespaceRequest struct {
	Namespace string `json:"namespace"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

type NamespaceInfo struct {
	Name        string `json:"name"`
	VectorCount int    `json:"vector_count"`
	Dimension   int    `json:"dimension"`
}

type ListNamespacesResponse struct {
	TenantID   string          `json:"tenant_id"`
	Namespaces []NamespaceInfo `json:"namespaces"`
}

type TenantSearchRequest struct {
	Vector     []float32         `json:"vector"`
	Query      []float32         `json:"query"`
	TopK       int               `json:"top_k"`
	Namespaces []string          `json:"namespaces"`
	Filter     map[string]string `json:"filter"`
	Category   string            `json:"category"`
}

// metadataFilter folds the category shorthand into the metadata filter.
func (r *TenantSearchRequest) metadataFilter() map[string]string {
	if r.Category == "" {
		return r.Filter
	}
	filter := make(map[string]string, len(r.Filter)+1)
	for k, v := range r.Filter {
		filter[k] = v
	}
	filter["category"] = r.Category
	return filter
}

func (r *TenantSearchRequest) queryVector() []float32 {
	if len(r.Vector) > 0 {
		return r.Vector
	}
	return r.Query
}

type TenantSearchResultItem struct {
	ID        string            `json:"id"`
	Score     float32           `json:"score"`
	Namespace string            `json:"namespace"`
	Question  string            `json:"question,omitempty"`
	Answer    string            `json:"answer,omitempty"`
	Category  string            `json:"category,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type TenantSearchResponse struct {
	Results            []TenantSearchResultItem `json:"results"`
	SearchTimeMs       float64                  `json:"search_time_ms"`
	TenantID           string                   `json:"tenant_id"`
	NamespacesSearched int                      `json:"namespaces_searched"`
}

type TenantStatsResponse struct {
	TenantID         string          `json:"tenant_id"`
	NamespaceCount   int             `json:"namespace_count"`
	TotalVectors     int             `json:"total_vectors"`
	TotalMemoryBytes uint64          `json:"total_memory_bytes"`
	Namespaces       []NamespaceInfo `json:"namespaces"`
}

// Legacy single-vector routes kept for older clients.

type InsertRequest struct {
	Collection string        `json:"collection"`
	Vector     VectorPayload `json:"vector"`
}

type BatchInsertResponse struct {
	Success       bool `json:"success"`
	InsertedCount int  `json:"inserted_count"`
	TotalReceived int  `json:"total_received"`
}

// FilteredSearchResponse reports how many candidates the index produced
// before metadata filtering trimmed the set.
type FilteredSearchResponse struct {
	Results         []SearchResultItem `json:"results"`
	SearchTimeMs    float64            `json:"search_time_ms"`
	TotalCandidates int                `json:"total_candidates"`
}

type SaveRequest struct {
	Collection string `json:"collection"`
}

// FAQ routes store question/answer pairs as vectors with structured metadata.

type FAQPayload struct {
	ID       string    `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Category string    `json:"category"`
	Vector   []float32 `json:"vector"`
}

type BulkFAQRequest struct {
	Items []FAQPayload `json:"items"`
}

type FAQResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Vector    []float32 `json:"vector,omitempty"`
	TenantID  string    `json:"tenant_id"`
	Namespace string    `json:"namespace"`
}
