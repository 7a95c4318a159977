package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"vectord/internal/metrics"
	"vectord/internal/store"
)

const tenantSeparator = "__"

// tenantCollection builds the backing collection name for a namespace.
func tenantCollection(tenant, namespace string) string {
	return tenant + tenantSeparator + namespace
}

// tenantNamespaces lists the namespaces owned by a tenant, derived from the
// collection naming convention.
func (h *Handler) tenantNamespaces(tenant string) []string {
	prefix := tenant + tenantSeparator
	var out []string
	for _, name := range h.store.List() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, strings.TrimPrefix(name, prefix))
		}
	}
	return out
}

func (h *Handler) CreateNamespace(c *fiber.Ctx) error {
	tenant := c.Params("tenant")

	var req CreateNamespaceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	if req.Namespace == "" {
		return badRequest(c, "namespace is required")
	}
	if strings.Contains(req.Namespace, tenantSeparator) {
		return badRequest(c, "namespace may not contain '__'")
	}

	metric, err := store.ParseMetric(req.Metric)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cfg := store.CollectionConfig{
		Name:      tenantCollection(tenant, req.Namespace),
		Dimension: req.Dimension,
		Metric:    metric,
	}
	if err := h.writes.CreateCollection(cfg); err != nil {
		return errJSON(c, err)
	}

	h.updateGauges()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"tenant_id": tenant,
		"namespace": req.Namespace,
	})
}

func (h *Handler) ListNamespaces(c *fiber.Ctx) error {
	tenant := c.Params("tenant")

	infos := make([]NamespaceInfo, 0)
	for _, ns := range h.tenantNamespaces(tenant) {
		stats, err := h.store.Stats(tenantCollection(tenant, ns))
		if err != nil {
			continue
		}
		infos = append(infos, NamespaceInfo{
			Name:        ns,
			VectorCount: stats.VectorCount,
			Dimension:   stats.Dimension,
		})
	}
	return c.JSON(ListNamespacesResponse{TenantID: tenant, Namespaces: infos})
}

// TenantSearch fans a query out over the tenant's namespaces and merges the
// results into one ranked list.
func (h *Handler) TenantSearch(c *fiber.Ctx) error {
	metrics.SearchRequests.Inc()
	tenant := c.Params("tenant")

	var req TenantSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	query := req.queryVector()
	if len(query) == 0 {
		return badRequest(c, "vector is required")
	}

	namespaces := req.Namespaces
	if len(namespaces) == 0 {
		namespaces = h.tenantNamespaces(tenant)
	}
	names := make([]string, len(namespaces))
	for i, ns := range namespaces {
		names[i] = tenantCollection(tenant, ns)
	}

	start := time.Now()
	merged := h.store.SearchMany(names, query, req.TopK, req.metadataFilter())
	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	prefix := tenant + tenantSeparator
	items := make([]TenantSearchResultItem, len(merged))
	for i, r := range merged {
		items[i] = TenantSearchResultItem{
			ID:        r.ID,
			Score:     r.Score,
			Namespace: strings.TrimPrefix(r.Collection, prefix),
		}
		if r.Record != nil {
			items[i].Metadata = r.Record.Metadata
			items[i].Question = r.Record.Metadata["question"]
			items[i].Answer = r.Record.Metadata["answer"]
			items[i].Category = r.Record.Metadata["category"]
		}
	}

	return c.JSON(TenantSearchResponse{
		Results:            items,
		SearchTimeMs:       float64(elapsed.Microseconds()) / 1000.0,
		TenantID:           tenant,
		NamespacesSearched: len(names),
	})
}

func (h *Handler) NamespaceSearch(c *fiber.Ctx) error {
	metrics.SearchRequests.Inc()
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")

	var req TenantSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	query := req.queryVector()
	if len(query) == 0 {
		return badRequest(c, "vector is required")
	}

	col, err := h.store.Collection(tenantCollection(tenant, namespace))
	if err != nil {
		return errJSON(c, err)
	}

	start := time.Now()
	results, err := col.Search(query, req.TopK, req.metadataFilter())
	if err != nil {
		return errJSON(c, err)
	}
	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	items := make([]TenantSearchResultItem, len(results))
	for i, r := range results {
		items[i] = TenantSearchResultItem{ID: r.ID, Score: r.Score, Namespace: namespace}
		if r.Record != nil {
			items[i].Metadata = r.Record.Metadata
			items[i].Question = r.Record.Metadata["question"]
			items[i].Answer = r.Record.Metadata["answer"]
			items[i].Category = r.Record.Metadata["category"]
		}
	}

	return c.JSON(TenantSearchResponse{
		Results:            items,
		SearchTimeMs:       float64(elapsed.Microseconds()) / 1000.0,
		TenantID:           tenant,
		NamespacesSearched: 1,
	})
}

func (h *Handler) TenantStats(c *fiber.Ctx) error {
	tenant := c.Params("tenant")

	resp := TenantStatsResponse{TenantID: tenant, Namespaces: make([]NamespaceInfo, 0)}
	for _, ns := range h.tenantNamespaces(tenant) {
		stats, err := h.store.Stats(tenantCollection(tenant, ns))
		if err != nil {
			continue
		}
		resp.Namespaces = append(resp.Namespaces, NamespaceInfo{
			Name:        ns,
			VectorCount: stats.VectorCount,
			Dimension:   stats.Dimension,
		})
		resp.TotalVectors += stats.VectorCount
		resp.TotalMemoryBytes += stats.MemoryUsageBytes
	}
	resp.NamespaceCount = len(resp.Namespaces)
	return c.JSON(resp)
}

func (h *Handler) NamespaceStats(c *fiber.Ctx) error {
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")

	stats, err := h.store.Stats(tenantCollection(tenant, namespace))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"tenant_id":          tenant,
		"namespace":          namespace,
		"total_vectors":      stats.VectorCount,
		"memory_usage_bytes": stats.MemoryUsageBytes,
		"dimension":          stats.Dimension,
		"metric":             string(stats.Metric),
	})
}
