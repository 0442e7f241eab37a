package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/counter-ledger/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware журнала продаж.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/ping", h.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.GetOptions)
		r.Get("/dates", h.GetDates)

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", h.CreateSale)
			r.Get("/", h.GetSales)
			r.Delete("/last", h.UndoLast)
			r.Get("/export", h.ExportSales)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
