package http

import "github.com/gofiber/fiber/v2"

// Register mounts all API routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	app.Get("/collections", h.ListCollections)
	app.Post("/collections", h.CreateCollection)
	app.Get("/collections/:name", h.CollectionStats)
	app.Delete("/collections/:name", h.DropCollection)
	app.Post("/collections/:name/index", h.TrainIndex)
	app.Get("/count/:name", h.Count)

	app.Post("/vectors", h.Upsert)
	app.Get("/vectors/:collection/:id", h.GetVector)
	app.Put("/vectors/:collection/:id", h.UpdateVector)
	app.Delete("/vectors/:collection/:id", h.DeleteVector)

	// Single-vector routes kept for older clients.
	app.Post("/insert", h.Insert)
	app.Post("/batch_insert", h.BatchInsert)

	app.Post("/search", h.Search)
	app.Post("/search/batch", h.BatchSearch)
	app.Post("/batch_search", h.BatchSearch)
	app.Post("/search_with_filter", h.SearchWithFilter)

	app.Post("/save", h.Save)
	app.Post("/save_all", h.SaveAll)

	app.Get("/tenants/:tenant/namespaces", h.ListNamespaces)
	app.Post("/tenants/:tenant/namespaces", h.CreateNamespace)
	app.Post("/tenants/:tenant/search", h.TenantSearch)
	app.Get("/tenants/:tenant/stats", h.TenantStats)
	app.Post("/tenants/:tenant/:namespace/search", h.NamespaceSearch)
	app.Get("/tenants/:tenant/:namespace/stats", h.NamespaceStats)

	app.Post("/tenants/:tenant/:namespace/faq", h.AddFAQ)
	app.Post("/tenants/:tenant/:namespace/faq/bulk", h.BulkAddFAQ)
	app.Get("/tenants/:tenant/:namespace/faq/:id", h.GetFAQ)
	app.Put("/tenants/:tenant/:namespace/faq/:id", h.UpdateFAQ)
	app.Delete("/tenants/:tenant/:namespace/faq/:id", h.DeleteFAQ)
}
