package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vectord/internal/metrics"
	"vectord/internal/store"
)

// Writer is the mutation path. Direct deployments use *store.Storage; under
// replication the cluster node proposes mutations through Raft instead.
type Writer interface {
	CreateCollection(cfg store.CollectionConfig) error
	DropCollection(name string) error
	Upsert(collection string, recs []store.VectorRecord) ([]string, error)
	DeleteVector(collection, id string) error
}

type Handler struct {
	store  *store.Storage
	writes Writer
}

// NewHandler wires the handler. A nil writer falls back to direct writes.
func NewHandler(s *store.Storage, w Writer) *Handler {
	if w == nil {
		w = s
	}
	return &Handler{store: s, writes: w}
}

// statusFor maps store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrCollectionNotFound), errors.Is(err, store.ErrVectorNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrCollectionExists):
		return fiber.StatusConflict
	case errors.Is(err, store.ErrDimensionMismatch):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"healthy": true, "version": "1.0.0"})
}

func (h *Handler) CreateCollection(c *fiber.Ctx) error {
	var req CreateCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}

	metric, err := store.ParseMetric(req.Metric)
	if err != nil {
		return badRequest(c, err.Error())
	}

	cfg := store.CollectionConfig{
		Name:      req.Name,
		Dimension: req.Dimension,
		Metric:    metric,
		Index:     store.IndexKind(req.Index),
		HNSW: store.HNSWParams{
			M:              req.M,
			EfConstruction: req.EfConstruction,
			EfSearch:       req.EfSearch,
		},
	}

	if err := h.writes.CreateCollection(cfg); err != nil {
		if errors.Is(err, store.ErrCollectionExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false, "message": "collection already exists",
			})
		}
		return errJSON(c, err)
	}

	h.updateGauges()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true, "message": "collection created",
	})
}

func (h *Handler) ListCollections(c *fiber.Ctx) error {
	names := h.store.List()

	infos := make([]CollectionInfo, 0, len(names))
	for _, name := range names {
		stats, err := h.store.Stats(name)
		if err != nil {
			continue
		}
		infos = append(infos, CollectionInfo{
			Name:      stats.Name,
			Dimension: stats.Dimension,
			Count:     stats.VectorCount,
			Metric:    string(stats.Metric),
		})
	}
	return c.JSON(ListCollectionsResponse{Collections: infos})
}

func (h *Handler) CollectionStats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.Params("name"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(StatsResponse{
		TotalVectors:     stats.VectorCount,
		MemoryUsageBytes: stats.MemoryUsageBytes,
		Dimension:        stats.Dimension,
		Metric:           string(stats.Metric),
		Index:            string(stats.Index),
	})
}

func (h *Handler) DropCollection(c *fiber.Ctx) error {
	if err := h.writes.DropCollection(c.Params("name")); err != nil {
		return errJSON(c, err)
	}
	h.updateGauges()
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) Count(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.Params("name"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"collection": stats.Name, "count": stats.VectorCount})
}

func (h *Handler) Upsert(c *fiber.Ctx) error {
	metrics.InsertRequests.Inc()
	start := time.Now()

	var req UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	if req.Collection == "" || len(req.Vectors) == 0 {
		return badRequest(c, "collection and vectors are required")
	}

	recs := make([]store.VectorRecord, len(req.Vectors))
	for i, v := range req.Vectors {
		if len(v.Values) == 0 {
			return badRequest(c, "vector values are required")
		}
		id := v.ID
		if id == "" {
			// IDs are fixed before the write is proposed so replicas agree.
			id = uuid.NewString()
		}
		recs[i] = store.VectorRecord{ID: id, Values: v.Values, Metadata: v.Metadata}
	}

	ids, err := h.writes.Upsert(req.Collection, recs)
	if err != nil {
		return errJSON(c, err)
	}

	metrics.InsertDuration.Observe(time.Since(start).Seconds())
	h.updateGauges()
	return c.JSON(UpsertResponse{Success: true, InsertedCount: len(ids), IDs: ids})
}

// Insert is the single-vector write kept for older clients.
func (h *Handler) Insert(c *fiber.Ctx) error {
	metrics.InsertRequests.Inc()

	var req InsertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	if req.Collection == "" || len(req.Vector.Values) == 0 {
		return badRequest(c, "collection and vector values are required")
	}

	id := req.Vector.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := h.writes.Upsert(req.Collection, []store.VectorRecord{
		{ID: id, Values: req.Vector.Values, Metadata: req.Vector.Metadata},
	}); err != nil {
		return errJSON(c, err)
	}

	h.updateGauges()
	return c.JSON(fiber.Map{"success": true, "id": id})
}

// BatchInsert skips entries without values instead of rejecting the batch,
// and reports how many of the received vectors landed.
func (h *Handler) BatchInsert(c *fiber.Ctx) error {
	metrics.InsertRequests.Inc()
	start := time.Now()

	var req UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	if req.Collection == "" {
		return badRequest(c, "collection is required")
	}

	recs := make([]store.VectorRecord, 0, len(req.Vectors))
	for _, v := range req.Vectors {
		if len(v.Values) == 0 {
			continue
		}
		id := v.ID
		if id == "" {
			id = uuid.NewString()
		}
		recs = append(recs, store.VectorRecord{ID: id, Values: v.Values, Metadata: v.Metadata})
	}

	ids, err := h.writes.Upsert(req.Collection, recs)
	if err != nil {
		return errJSON(c, err)
	}

	metrics.InsertDuration.Observe(time.Since(start).Seconds())
	h.updateGauges()
	return c.JSON(BatchInsertResponse{
		Success:       true,
		InsertedCount: len(ids),
		TotalReceived: len(req.Vectors),
	})
}

func (h *Handler) Search(c *fiber.Ctx) error {
	metrics.SearchRequests.Inc()

	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	query := req.queryVector()
	if len(query) == 0 {
		return badRequest(c, "vector is required")
	}

	col, err := h.store.Collection(req.Collection)
	if err != nil {
		return errJSON(c, err)
	}

	start := time.Now()
	results, err := col.Search(query, req.TopK, req.Filter)
	if err != nil {
		return errJSON(c, err)
	}
	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	items := make([]SearchResultItem, len(results))
	for i, r := range results {
		items[i] = SearchResultItem{ID: r.ID, Score: r.Score}
		if req.IncludeMetadata && r.Record != nil {
			items[i].Metadata = r.Record.Metadata
		}
	}

	return c.JSON(SearchResponse{
		Results:      items,
		SearchTimeMs: float64(elapsed.Microseconds()) / 1000.0,
	})
}

func (h *Handler) BatchSearch(c *fiber.Ctx) error {
	metrics.SearchRequests.Inc()

	var req BatchSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	if len(req.Queries) == 0 {
		return badRequest(c, "queries are required")
	}

	col, err := h.store.Collection(req.Collection)
	if err != nil {
		return errJSON(c, err)
	}

	start := time.Now()
	batches, err := col.BatchSearch(req.Queries, req.TopK)
	if err != nil {
		return errJSON(c, err)
	}
	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	out := make([]SearchResponse, len(batches))
	for i, results := range batches {
		items := make([]SearchResultItem, len(results))
		for j, r := range results {
			items[j] = SearchResultItem{ID: r.ID, Score: r.Score}
		}
		out[i] = SearchResponse{Results: items}
	}

	totalMs := float64(elapsed.Microseconds()) / 1000.0
	resp := BatchSearchResponse{
		Results:      out,
		TotalQueries: len(req.Queries),
		TotalTimeMs:  totalMs,
	}
	if len(req.Queries) > 0 {
		resp.AvgTimePerQuery = totalMs / float64(len(req.Queries))
	}
	return c.JSON(resp)
}

// SearchWithFilter over-fetches candidates from the index and applies the
// metadata filter on top, reporting how many candidates the index produced.
func (h *Handler) SearchWithFilter(c *fiber.Ctx) error {
	metrics.SearchRequests.Inc()

	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	query := req.queryVector()
	if len(query) == 0 {
		return badRequest(c, "vector is required")
	}

	col, err := h.store.Collection(req.Collection)
	if err != nil {
		return errJSON(c, err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}

	start := time.Now()
	candidates, err := col.Search(query, topK*3, nil)
	if err != nil {
		return errJSON(c, err)
	}
	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	items := make([]SearchResultItem, 0, topK)
	for _, r := range candidates {
		var meta map[string]string
		if r.Record != nil {
			meta = r.Record.Metadata
		}
		if !metadataMatches(meta, req.Filter) {
			continue
		}
		items = append(items, SearchResultItem{ID: r.ID, Score: r.Score, Metadata: meta})
		if len(items) == topK {
			break
		}
	}

	return c.JSON(FilteredSearchResponse{
		Results:         items,
		SearchTimeMs:    float64(elapsed.Microseconds()) / 1000.0,
		TotalCandidates: len(candidates),
	})
}

func metadataMatches(meta, filter map[string]string) bool {
	for k, v := range filter {
		if meta[k] != v {
			return false
		}
	}
	return true
}

func (h *Handler) GetVector(c *fiber.Ctx) error {
	col, err := h.store.Collection(c.Params("collection"))
	if err != nil {
		return errJSON(c, err)
	}
	rec, err := col.Get(c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(GetVectorResponse{ID: rec.ID, Values: rec.Values, Metadata: rec.Metadata})
}

func (h *Handler) UpdateVector(c *fiber.Ctx) error {
	collection := c.Params("collection")
	id := c.Params("id")

	var req UpdateVectorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}

	col, err := h.store.Collection(collection)
	if err != nil {
		return errJSON(c, err)
	}
	existing, err := col.Get(id)
	if err != nil {
		return errJSON(c, err)
	}

	// Partial update: absent fields keep their old value.
	values := req.Values
	if len(values) == 0 {
		values = existing.Values
	}
	meta := req.Metadata
	if meta == nil {
		meta = existing.Metadata
	}

	if _, err := h.writes.Upsert(collection, []store.VectorRecord{
		{ID: id, Values: values, Metadata: meta},
	}); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}

func (h *Handler) DeleteVector(c *fiber.Ctx) error {
	if err := h.writes.DeleteVector(c.Params("collection"), c.Params("id")); err != nil {
		return errJSON(c, err)
	}
	h.updateGauges()
	return c.JSON(fiber.Map{"success": true})
}

// TrainIndex kicks off IVF training in the background on flat collections.
func (h *Handler) TrainIndex(c *fiber.Ctx) error {
	col, err := h.store.Collection(c.Params("name"))
	if err != nil {
		return errJSON(c, err)
	}
	go col.TrainIndex()
	return c.JSON(fiber.Map{"status": "index_creation_started"})
}

// Save accepts an optional body naming a collection. The name is validated
// before the checkpoint, which always covers every collection.
func (h *Handler) Save(c *fiber.Ctx) error {
	var req SaveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "cannot parse json")
		}
	}
	if req.Collection != "" && !h.store.Exists(req.Collection) {
		return errJSON(c, store.ErrCollectionNotFound)
	}

	if err := h.store.SaveAll(); err != nil {
		return errJSON(c, err)
	}

	resp := fiber.Map{"success": true, "message": "all collections saved"}
	if req.Collection != "" {
		resp["collection"] = req.Collection
	}
	return c.JSON(resp)
}

func (h *Handler) SaveAll(c *fiber.Ctx) error {
	if err := h.store.SaveAll(); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "all collections saved"})
}

func (h *Handler) updateGauges() {
	names := h.store.List()
	total := 0
	for _, name := range names {
		if col, err := h.store.Collection(name); err == nil {
			total += col.Count()
		}
	}
	metrics.Collections.Set(float64(len(names)))
	metrics.TotalVectors.Set(float64(total))
}
