package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/transferdesk/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.Register)
		r.Post("/user/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/services", func(r chi.Router) {
				r.Post("/", h.CreateService)
				r.Get("/", h.ListServices)
				r.Get("/{id}", h.GetService)
				r.Put("/{id}", h.UpdateService)
				r.Post("/{id}/status", h.ChangeServiceStatus)
				r.Delete("/{id}", h.DeleteService)
			})

			r.Route("/drivers", func(r chi.Router) {
				r.Post("/", h.CreateDriver)
				r.Get("/", h.ListDrivers)
				r.Put("/{id}", h.UpdateDriver)
				r.Delete("/{id}", h.DeleteDriver)
				r.Get("/{id}/report", h.GetDriverReport)
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Post("/", h.CreateSupplier)
				r.Get("/", h.ListSuppliers)
				r.Put("/{id}", h.UpdateSupplier)
				r.Delete("/{id}", h.DeleteSupplier)
				r.Get("/{id}/statement", h.GetSupplierStatement)
				r.Get("/{id}/statement.csv", h.ExportSupplierStatementCSV)
				r.Get("/{id}/statement/print", h.PrintSupplierStatement)
				r.Get("/{id}/net-balance", h.GetSupplierNetBalance)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/summary", h.GetSummary)
				r.Get("/monthly", h.GetMonthlyRollups)
				r.Get("/monthly.csv", h.ExportMonthlyRollupsCSV)
			})
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
