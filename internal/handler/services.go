package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/settlement"
)

// parseWindow разбирает период из query-параметров: либо month=YYYY-MM,
// либо пара from/to в формате RFC 3339. Пустые параметры дают открытый период.
func parseWindow(r *http.Request) (settlement.Window, error) {
	if month := r.URL.Query().Get("month"); month != "" {
		return settlement.ParseMonth(month, time.UTC)
	}

	var w settlement.Window
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return settlement.Window{}, err
		}
		w.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return settlement.Window{}, err
		}
		w.To = t
	}
	return w, nil
}

// CreateService создаёт новую услугу.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	created, err := h.service.CreateService(r.Context(), req.toRecord())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, newServiceResponse(*created))
}

// GetService возвращает услугу с актуальным расчётом.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, newServiceResponse(*rec))
}

// ListServices возвращает услуги периода с актуальными расчётами.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	records, err := h.service.ListServices(r.Context(), window)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]serviceResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, newServiceResponse(rec))
	}

	h.writeJSON(w, resp)
}

// UpdateService обновляет услугу.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	rec := req.toRecord()
	rec.ID = chi.URLParam(r, "id")

	updated, err := h.service.UpdateService(r.Context(), rec)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.writeJSON(w, newServiceResponse(*updated))
}

// ChangeServiceStatus переводит услугу в новый статус жизненного цикла.
func (h *Handler) ChangeServiceStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	err := h.service.ChangeServiceStatus(r.Context(), chi.URLParam(r, "id"), model.ServiceStatus(req.Status))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteService удаляет услугу.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateDriver создаёт нового водителя.
func (h *Handler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req fulfillerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	created, err := h.service.CreateDriver(r.Context(), model.Driver{
		Name:  req.Name,
		Phone: req.Phone,
		Note:  req.Note,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, driverResponse(*created))
}

// ListDrivers возвращает всех водителей.
func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.ListDrivers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]fulfillerResponse, 0, len(drivers))
	for _, d := range drivers {
		resp = append(resp, driverResponse(d))
	}

	h.writeJSON(w, resp)
}

// UpdateDriver обновляет данные водителя.
func (h *Handler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	var req fulfillerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	err := h.service.UpdateDriver(r.Context(), model.Driver{
		ID:    chi.URLParam(r, "id"),
		Name:  req.Name,
		Phone: req.Phone,
		Note:  req.Note,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteDriver удаляет водителя.
func (h *Handler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDriver(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSupplier создаёт нового подрядчика.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req fulfillerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	created, err := h.service.CreateSupplier(r.Context(), model.Supplier{
		Name:  req.Name,
		Phone: req.Phone,
		Note:  req.Note,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, supplierResponse(*created))
}

// ListSuppliers возвращает всех подрядчиков.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	resp := make([]fulfillerResponse, 0, len(suppliers))
	for _, s := range suppliers {
		resp = append(resp, supplierResponse(s))
	}

	h.writeJSON(w, resp)
}

// UpdateSupplier обновляет данные подрядчика.
func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req fulfillerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	err := h.service.UpdateSupplier(r.Context(), model.Supplier{
		ID:    chi.URLParam(r, "id"),
		Name:  req.Name,
		Phone: req.Phone,
		Note:  req.Note,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteSupplier удаляет подрядчика.
func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
