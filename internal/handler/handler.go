// Package handler содержит HTTP-обработчики API сервиса трансферов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/transferdesk/internal/middleware"
	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/repository"
	"github.com/mmeshcher/transferdesk/internal/service"
	"github.com/mmeshcher/transferdesk/internal/settlement"
	"github.com/mmeshcher/transferdesk/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, login, password string) (int64, error)
	AuthenticateUser(ctx context.Context, login, password string) (int64, error)

	CreateService(ctx context.Context, rec model.ServiceRecord) (*model.ServiceRecord, error)
	GetService(ctx context.Context, id string) (*model.ServiceRecord, error)
	UpdateService(ctx context.Context, rec model.ServiceRecord) (*model.ServiceRecord, error)
	ChangeServiceStatus(ctx context.Context, id string, to model.ServiceStatus) error
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context, w settlement.Window) ([]model.ServiceRecord, error)

	CreateDriver(ctx context.Context, d model.Driver) (*model.Driver, error)
	GetDriver(ctx context.Context, id string) (*model.Driver, error)
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	UpdateDriver(ctx context.Context, d model.Driver) error
	DeleteDriver(ctx context.Context, id string) error

	CreateSupplier(ctx context.Context, s model.Supplier) (*model.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	UpdateSupplier(ctx context.Context, s model.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	GetSummary(ctx context.Context, w settlement.Window) (*service.Summary, error)
	GetMonthlyRollups(ctx context.Context, year int) ([]settlement.Rollup, error)
	GetDriverReport(ctx context.Context, driverID string, w settlement.Window) (*service.DriverReport, error)
	GetSupplierStatement(ctx context.Context, supplierID string, w settlement.Window) (*settlement.Statement, error)
	GetSupplierNetBalance(ctx context.Context, supplierID string, w settlement.Window) (*settlement.NetBalance, error)
}

// Handler реализует HTTP-обработчики API сервиса трансферов.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	validate       *validator.Validate
	settings       model.Settings
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, settings model.Settings) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		validate:       validator.New(),
		settings:       settings,
	}
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// respondError сопоставляет доменные ошибки с HTTP-статусами.
// Внутренние ошибки логируются, остальные — нет.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, repository.ErrNameExists),
		errors.Is(err, repository.ErrEntityInUse),
		errors.Is(err, service.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, validation.ErrBothFulfillers),
		errors.Is(err, validation.ErrDepositExceedsPrice),
		errors.Is(err, validation.ErrUnknownPaymentMethod),
		errors.Is(err, validation.ErrNegativeAmount):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrEmptyName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Register обрабатывает регистрацию нового сотрудника.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	userID, err := h.service.RegisterUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("register user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}

// Login выполняет аутентификацию сотрудника и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	userID, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, userID)
	w.WriteHeader(http.StatusOK)
}
