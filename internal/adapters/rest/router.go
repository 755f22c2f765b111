// Package rest exposes the checklist services over HTTP.
package rest

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/safecase/internal/ports/primary"
)

// Services bundles the primary ports the router serves.
type Services struct {
	Checklists primary.ChecklistService
	Templates  primary.TemplateService
	Gates      primary.GateService
	Logs       primary.LogService
}

// NewRouter creates a chi router with every checklist route mounted under /api/v1.
func NewRouter(svc Services) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Identity)

		r.Route("/cases/{caseId}", func(r chi.Router) {
			r.Get("/checklists", listCaseChecklistsHandler(svc.Checklists))
			r.Post("/checklists/{type}/start", startChecklistHandler(svc.Checklists))
			r.Get("/gates", caseGatesHandler(svc.Gates))
		})

		r.Route("/checklists/{id}", func(r chi.Router) {
			r.Get("/", getChecklistHandler(svc.Checklists))
			r.Post("/responses", recordResponseHandler(svc.Checklists))
			r.Get("/responses/history", responseHistoryHandler(svc.Checklists))
			r.Get("/responses/{itemKey}/history", responseHistoryHandler(svc.Checklists))
			r.Post("/signatures", addSignatureHandler(svc.Checklists))
			r.Post("/complete", completeChecklistHandler(svc.Checklists))
			r.Post("/reviews", asyncReviewHandler(svc.Checklists))
			if svc.Logs != nil {
				r.Get("/events", checklistEventsHandler(svc.Logs))
			}
		})

		r.Get("/reviews/pending", pendingReviewsHandler(svc.Checklists))

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", listTemplatesHandler(svc.Templates))
			r.Get("/{type}", currentTemplateHandler(svc.Templates))
			r.Get("/{type}/versions", listTemplateVersionsHandler(svc.Templates))
			r.Post("/{type}/versions", publishTemplateHandler(svc.Templates))
		})
	})

	return r
}
