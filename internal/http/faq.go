package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vectord/internal/metrics"
	"vectord/internal/store"
)

// FAQ routes store question/answer pairs in a tenant namespace. Each entry is
// an ordinary vector whose metadata carries the question, answer, and
// category, so tenant search surfaces them like any other record.

func faqMetadata(tenant, namespace string, p FAQPayload) map[string]string {
	return map[string]string{
		"question":  p.Question,
		"answer":    p.Answer,
		"category":  p.Category,
		"type":      "faq",
		"tenant_id": tenant,
		"namespace": namespace,
	}
}

func faqNotFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrVectorNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "FAQ not found"})
	}
	return errJSON(c, err)
}

func (h *Handler) AddFAQ(c *fiber.Ctx) error {
	metrics.InsertRequests.Inc()
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")

	name := tenantCollection(tenant, namespace)
	if !h.store.Exists(name) {
		return errJSON(c, store.ErrCollectionNotFound)
	}

	var req FAQPayload
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}
	if len(req.Vector) == 0 {
		return badRequest(c, "vector is required")
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := h.writes.Upsert(name, []store.VectorRecord{{
		ID:       id,
		Values:   req.Vector,
		Metadata: faqMetadata(tenant, namespace, req),
	}}); err != nil {
		return errJSON(c, err)
	}

	h.updateGauges()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "id": id})
}

func (h *Handler) BulkAddFAQ(c *fiber.Ctx) error {
	metrics.InsertRequests.Inc()
	start := time.Now()
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")

	name := tenantCollection(tenant, namespace)
	if !h.store.Exists(name) {
		return errJSON(c, store.ErrCollectionNotFound)
	}

	var req BulkFAQRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}

	recs := make([]store.VectorRecord, 0, len(req.Items))
	for _, item := range req.Items {
		if len(item.Vector) == 0 {
			continue
		}
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		recs = append(recs, store.VectorRecord{
			ID:       id,
			Values:   item.Vector,
			Metadata: faqMetadata(tenant, namespace, item),
		})
	}

	ids, err := h.writes.Upsert(name, recs)
	if err != nil {
		return errJSON(c, err)
	}

	metrics.InsertDuration.Observe(time.Since(start).Seconds())
	h.updateGauges()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"inserted_count": len(ids),
		"total_received": len(req.Items),
	})
}

func (h *Handler) GetFAQ(c *fiber.Ctx) error {
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")

	col, err := h.store.Collection(tenantCollection(tenant, namespace))
	if err != nil {
		return errJSON(c, err)
	}
	rec, err := col.Get(c.Params("id"))
	if err != nil {
		return faqNotFound(c, err)
	}
	return c.JSON(FAQResponse{
		ID:        rec.ID,
		Question:  rec.Metadata["question"],
		Answer:    rec.Metadata["answer"],
		Category:  rec.Metadata["category"],
		Vector:    rec.Values,
		TenantID:  tenant,
		Namespace: namespace,
	})
}

// UpdateFAQ is a partial update: absent fields keep their stored value.
func (h *Handler) UpdateFAQ(c *fiber.Ctx) error {
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")
	id := c.Params("id")

	name := tenantCollection(tenant, namespace)
	col, err := h.store.Collection(name)
	if err != nil {
		return errJSON(c, err)
	}
	existing, err := col.Get(id)
	if err != nil {
		return faqNotFound(c, err)
	}

	var req FAQPayload
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "cannot parse json")
	}

	values := req.Vector
	if len(values) == 0 {
		values = existing.Values
	}
	meta := make(map[string]string, len(existing.Metadata))
	for k, v := range existing.Metadata {
		meta[k] = v
	}
	if req.Question != "" {
		meta["question"] = req.Question
	}
	if req.Answer != "" {
		meta["answer"] = req.Answer
	}
	if req.Category != "" {
		meta["category"] = req.Category
	}

	if _, err := h.writes.Upsert(name, []store.VectorRecord{
		{ID: id, Values: values, Metadata: meta},
	}); err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}

func (h *Handler) DeleteFAQ(c *fiber.Ctx) error {
	tenant := c.Params("tenant")
	namespace := c.Params("namespace")

	err := h.writes.DeleteVector(tenantCollection(tenant, namespace), c.Params("id"))
	if err != nil {
		return faqNotFound(c, err)
	}
	h.updateGauges()
	return c.JSON(fiber.Map{"success": true})
}
