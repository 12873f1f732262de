// Package service реализует бизнес-логику сервиса трансферов.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/notify"
	"github.com/mmeshcher/transferdesk/internal/repository"
	"github.com/mmeshcher/transferdesk/internal/settlement"
	"github.com/mmeshcher/transferdesk/internal/validation"
)

// ErrInvalidTransition возвращается при недопустимом переходе статуса услуги.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyName возвращается при создании водителя или подрядчика без имени.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)

	CreateDriver(ctx context.Context, d model.Driver) error
	GetDriver(ctx context.Context, id string) (*model.Driver, error)
	ListDrivers(ctx context.Context) ([]model.Driver, error)
	UpdateDriver(ctx context.Context, d model.Driver) error
	DeleteDriver(ctx context.Context, id string) error

	CreateSupplier(ctx context.Context, s model.Supplier) error
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
	UpdateSupplier(ctx context.Context, s model.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	CreateService(ctx context.Context, rec model.ServiceRecord) error
	GetService(ctx context.Context, id string) (*model.ServiceRecord, error)
	UpdateService(ctx context.Context, rec model.ServiceRecord) error
	UpdateServiceStatus(ctx context.Context, id string, status model.ServiceStatus) error
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context, from, to time.Time) ([]model.ServiceRecord, error)
	ListServicesDue(ctx context.Context, now time.Time) ([]model.ServiceRecord, error)
}

// Notifier описывает контракт отправки уведомлений водителям.
type Notifier interface {
	SendAssignment(ctx context.Context, ev notify.AssignmentEvent) (time.Duration, error)
}

// Service содержит бизнес-логику сервиса трансферов.
type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом уведомлений.
func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового сотрудника.
func (s *Service) RegisterUser(ctx context.Context, login, password string) (int64, error) {
	hashed := hashPassword(login, password)
	id, err := s.repo.CreateUser(ctx, login, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, repository.ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

// AuthenticateUser проверяет логин и пароль сотрудника и возвращает его идентификатор.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (int64, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}

	hashed := hashPassword(login, password)
	if hex.EncodeToString(hashed) != hex.EncodeToString(u.PasswordHash) {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// CreateService проверяет и сохраняет новую услугу, проставляя значения по умолчанию.
func (s *Service) CreateService(ctx context.Context, rec model.ServiceRecord) (*model.ServiceRecord, error) {
	rec.ID = uuid.NewString()
	if rec.Status == "" {
		rec.Status = model.ServiceStatusPending
	}
	if rec.ClientPaymentStatus == "" {
		rec.ClientPaymentStatus = model.PaymentStatusUnpaid
	}
	if rec.SupplierPaymentStatus == "" {
		rec.SupplierPaymentStatus = model.PaymentStatusUnpaid
	}

	if err := validation.ValidateRecord(rec); err != nil {
		return nil, err
	}

	if err := s.repo.CreateService(ctx, rec); err != nil {
		return nil, err
	}

	if rec.Internal() {
		s.notifyAssignment(ctx, rec)
	}

	return &rec, nil
}

// UpdateService проверяет и сохраняет изменения услуги.
func (s *Service) UpdateService(ctx context.Context, rec model.ServiceRecord) (*model.ServiceRecord, error) {
	if err := validation.ValidateRecord(rec); err != nil {
		return nil, err
	}

	old, err := s.repo.GetService(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateService(ctx, rec); err != nil {
		return nil, err
	}

	if rec.Internal() && (!old.Internal() || *old.DriverID != *rec.DriverID) {
		s.notifyAssignment(ctx, rec)
	}

	rec.Status = old.Status
	rec.CreatedAt = old.CreatedAt
	return &rec, nil
}

// ChangeServiceStatus переводит услугу в новый статус жизненного цикла.
func (s *Service) ChangeServiceStatus(ctx context.Context, id string, to model.ServiceStatus) error {
	rec, err := s.repo.GetService(ctx, id)
	if err != nil {
		return err
	}

	if !rec.Status.CanTransition(to) {
		return ErrInvalidTransition
	}

	return s.repo.UpdateServiceStatus(ctx, id, to)
}

// GetService возвращает услугу по идентификатору.
func (s *Service) GetService(ctx context.Context, id string) (*model.ServiceRecord, error) {
	return s.repo.GetService(ctx, id)
}

// DeleteService удаляет услугу.
func (s *Service) DeleteService(ctx context.Context, id string) error {
	return s.repo.DeleteService(ctx, id)
}

// ListServices возвращает услуги периода.
func (s *Service) ListServices(ctx context.Context, w settlement.Window) ([]model.ServiceRecord, error) {
	return s.repo.ListServices(ctx, w.From, w.To)
}

// CreateDriver сохраняет нового водителя.
func (s *Service) CreateDriver(ctx context.Context, d model.Driver) (*model.Driver, error) {
	if d.Name == "" {
		return nil, ErrEmptyName
	}
	d.ID = uuid.NewString()
	if err := s.repo.CreateDriver(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDriver возвращает водителя по идентификатору.
func (s *Service) GetDriver(ctx context.Context, id string) (*model.Driver, error) {
	return s.repo.GetDriver(ctx, id)
}

// ListDrivers возвращает всех водителей.
func (s *Service) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	return s.repo.ListDrivers(ctx)
}

// UpdateDriver обновляет данные водителя.
func (s *Service) UpdateDriver(ctx context.Context, d model.Driver) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	return s.repo.UpdateDriver(ctx, d)
}

// DeleteDriver удаляет водителя.
func (s *Service) DeleteDriver(ctx context.Context, id string) error {
	return s.repo.DeleteDriver(ctx, id)
}

// CreateSupplier сохраняет нового подрядчика.
func (s *Service) CreateSupplier(ctx context.Context, sup model.Supplier) (*model.Supplier, error) {
	if sup.Name == "" {
		return nil, ErrEmptyName
	}
	sup.ID = uuid.NewString()
	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, err
	}
	return &sup, nil
}

// GetSupplier возвращает подрядчика по идентификатору.
func (s *Service) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers возвращает всех подрядчиков.
func (s *Service) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// UpdateSupplier обновляет данные подрядчика.
func (s *Service) UpdateSupplier(ctx context.Context, sup model.Supplier) error {
	if sup.Name == "" {
		return ErrEmptyName
	}
	return s.repo.UpdateSupplier(ctx, sup)
}

// DeleteSupplier удаляет подрядчика.
func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return s.repo.DeleteSupplier(ctx, id)
}

func (s *Service) notifyAssignment(ctx context.Context, rec model.ServiceRecord) {
	if s.notifier == nil {
		return
	}
	// уведомление не влияет на результат операции
	_, _ = s.notifier.SendAssignment(ctx, notify.AssignmentEvent{
		ServiceID: rec.ID,
		DriverID:  *rec.DriverID,
		Title:     rec.Title,
		StartAt:   rec.StartAt,
	})
}

// StartStatusUpdates запускает фоновый процесс продвижения статусов услуг по времени.
func (s *Service) StartStatusUpdates(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processDueBatch(ctx)
			}
		}
	}()
}

func (s *Service) processDueBatch(ctx context.Context) {
	due, err := s.repo.ListServicesDue(ctx, s.now())
	if err != nil {
		return
	}

	for _, rec := range due {
		var next model.ServiceStatus
		switch rec.Status {
		case model.ServiceStatusConfirmed:
			next = model.ServiceStatusInProgress
		case model.ServiceStatusInProgress:
			next = model.ServiceStatusCompleted
		default:
			continue
		}

		_ = s.repo.UpdateServiceStatus(ctx, rec.ID, next)
	}
}
