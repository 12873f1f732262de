package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/notify"
	"github.com/mmeshcher/transferdesk/internal/repository"
	"github.com/mmeshcher/transferdesk/internal/settlement"
	"github.com/mmeshcher/transferdesk/internal/validation"
)

func strPtr(s string) *string { return &s }

type stubRepo struct {
	createUserID  int64
	createUserErr error

	getUser    *model.User
	getUserErr error

	driver     *model.Driver
	supplier   *model.Supplier
	getService *model.ServiceRecord

	services    []model.ServiceRecord
	servicesErr error

	due []model.ServiceRecord

	createdService *model.ServiceRecord
	updatedStatus  model.ServiceStatus
	statusCalls    int
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error) {
	return s.createUserID, s.createUserErr
}

func (s *stubRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return s.getUser, s.getUserErr
}

func (s *stubRepo) CreateDriver(ctx context.Context, d model.Driver) error { return nil }

func (s *stubRepo) GetDriver(ctx context.Context, id string) (*model.Driver, error) {
	if s.driver == nil {
		return nil, repository.ErrNotFound
	}
	return s.driver, nil
}

func (s *stubRepo) ListDrivers(ctx context.Context) ([]model.Driver, error) { return nil, nil }

func (s *stubRepo) UpdateDriver(ctx context.Context, d model.Driver) error { return nil }

func (s *stubRepo) DeleteDriver(ctx context.Context, id string) error { return nil }

func (s *stubRepo) CreateSupplier(ctx context.Context, sup model.Supplier) error { return nil }

func (s *stubRepo) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	if s.supplier == nil {
		return nil, repository.ErrNotFound
	}
	return s.supplier, nil
}

func (s *stubRepo) ListSuppliers(ctx context.Context) ([]model.Supplier, error) { return nil, nil }

func (s *stubRepo) UpdateSupplier(ctx context.Context, sup model.Supplier) error { return nil }

func (s *stubRepo) DeleteSupplier(ctx context.Context, id string) error { return nil }

func (s *stubRepo) CreateService(ctx context.Context, rec model.ServiceRecord) error {
	s.createdService = &rec
	return nil
}

func (s *stubRepo) GetService(ctx context.Context, id string) (*model.ServiceRecord, error) {
	if s.getService == nil {
		return nil, repository.ErrNotFound
	}
	return s.getService, nil
}

func (s *stubRepo) UpdateService(ctx context.Context, rec model.ServiceRecord) error { return nil }

func (s *stubRepo) UpdateServiceStatus(ctx context.Context, id string, status model.ServiceStatus) error {
	s.updatedStatus = status
	s.statusCalls++
	return nil
}

func (s *stubRepo) DeleteService(ctx context.Context, id string) error { return nil }

func (s *stubRepo) ListServices(ctx context.Context, from, to time.Time) ([]model.ServiceRecord, error) {
	return s.services, s.servicesErr
}

func (s *stubRepo) ListServicesDue(ctx context.Context, now time.Time) ([]model.ServiceRecord, error) {
	return s.due, nil
}

type stubNotifier struct {
	events []notify.AssignmentEvent
}

func (n *stubNotifier) SendAssignment(ctx context.Context, ev notify.AssignmentEvent) (time.Duration, error) {
	n.events = append(n.events, ev)
	return 0, nil
}

func TestHashPasswordDeterministic(t *testing.T) {
	a := hashPassword("user", "pass")
	b := hashPassword("user", "pass")
	c := hashPassword("user", "other")

	if string(a) != string(b) {
		t.Fatalf("hashPassword must be deterministic, got %x and %x", a, b)
	}
	if string(a) == string(c) {
		t.Fatalf("different passwords must produce different hashes")
	}
}

func TestRegisterUser_PropagatesDuplicateError(t *testing.T) {
	repo := &stubRepo{
		createUserErr: repository.ErrUserExists,
	}
	svc := NewService(repo, nil)

	_, err := svc.RegisterUser(context.Background(), "login", "pass")
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	hashed := hashPassword("user", "correct")
	repo := &stubRepo{
		getUser: &model.User{
			ID:           1,
			Login:        "user",
			PasswordHash: hashed,
		},
	}

	svc := NewService(repo, nil)

	_, err := svc.AuthenticateUser(context.Background(), "user", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateService_Defaults(t *testing.T) {
	repo := &stubRepo{}
	notifier := &stubNotifier{}
	svc := NewService(repo, notifier)

	created, err := svc.CreateService(context.Background(), model.ServiceRecord{
		Title:         "Airport transfer",
		StartAt:       time.Now(),
		ClientPrice:   10000,
		PaymentMethod: model.PaymentCash,
		DriverID:      strPtr("drv-1"),
	})
	if err != nil {
		t.Fatalf("CreateService error: %v", err)
	}

	if created.ID == "" {
		t.Fatalf("id must be generated")
	}
	if created.Status != model.ServiceStatusPending {
		t.Fatalf("status = %s, want PENDING", created.Status)
	}
	if created.ClientPaymentStatus != model.PaymentStatusUnpaid {
		t.Fatalf("client payment status = %s, want UNPAID", created.ClientPaymentStatus)
	}
	if repo.createdService == nil || repo.createdService.ID != created.ID {
		t.Fatalf("record was not stored")
	}

	if len(notifier.events) != 1 || notifier.events[0].DriverID != "drv-1" {
		t.Fatalf("driver must be notified, events = %+v", notifier.events)
	}
}

func TestCreateService_InvariantViolations(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	_, err := svc.CreateService(context.Background(), model.ServiceRecord{
		Title:      "Bad",
		DriverID:   strPtr("drv-1"),
		SupplierID: strPtr("sup-1"),
	})
	if !errors.Is(err, validation.ErrBothFulfillers) {
		t.Fatalf("expected ErrBothFulfillers, got %v", err)
	}

	_, err = svc.CreateService(context.Background(), model.ServiceRecord{
		Title:       "Bad deposit",
		ClientPrice: 5000,
		Deposit:     9000,
	})
	if !errors.Is(err, validation.ErrDepositExceedsPrice) {
		t.Fatalf("expected ErrDepositExceedsPrice, got %v", err)
	}
}

func TestChangeServiceStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    model.ServiceStatus
		to      model.ServiceStatus
		wantErr error
	}{
		{"pending to confirmed", model.ServiceStatusPending, model.ServiceStatusConfirmed, nil},
		{"confirmed to in progress", model.ServiceStatusConfirmed, model.ServiceStatusInProgress, nil},
		{"in progress to completed", model.ServiceStatusInProgress, model.ServiceStatusCompleted, nil},
		{"pending to cancelled", model.ServiceStatusPending, model.ServiceStatusCancelled, nil},
		{"pending to completed", model.ServiceStatusPending, model.ServiceStatusCompleted, ErrInvalidTransition},
		{"completed to cancelled", model.ServiceStatusCompleted, model.ServiceStatusCancelled, ErrInvalidTransition},
		{"cancelled to confirmed", model.ServiceStatusCancelled, model.ServiceStatusConfirmed, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{
				getService: &model.ServiceRecord{ID: "svc-1", Status: tt.from},
			}
			svc := NewService(repo, nil)

			err := svc.ChangeServiceStatus(context.Background(), "svc-1", tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if repo.updatedStatus != tt.to {
					t.Fatalf("stored status = %s, want %s", repo.updatedStatus, tt.to)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateDriver_EmptyName(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)
	if _, err := svc.CreateDriver(context.Background(), model.Driver{}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func reportRecords() []model.ServiceRecord {
	start := time.Date(2026, time.July, 10, 12, 0, 0, 0, time.UTC)
	return []model.ServiceRecord{
		{
			ID:            "done",
			StartAt:       start,
			ClientPrice:   10000,
			PaymentMethod: model.PaymentCash,
			Status:        model.ServiceStatusCompleted,
			DriverID:      strPtr("drv-1"),
		},
		{
			ID:            "confirmed",
			StartAt:       start.AddDate(0, 0, 2),
			ClientPrice:   20000,
			SupplierCost:  12000,
			PaymentMethod: model.PaymentToDriver,
			Status:        model.ServiceStatusConfirmed,
			SupplierID:    strPtr("sup-1"),
		},
		{
			ID:            "pending",
			StartAt:       start.AddDate(0, 0, 4),
			ClientPrice:   5000,
			PaymentMethod: model.PaymentPrepaid,
			Status:        model.ServiceStatusPending,
		},
	}
}

func TestGetSummary(t *testing.T) {
	repo := &stubRepo{services: reportRecords()}
	svc := NewService(repo, nil)

	sum, err := svc.GetSummary(context.Background(), settlement.MonthWindow(2026, time.July, time.UTC))
	if err != nil {
		t.Fatalf("GetSummary error: %v", err)
	}

	if sum.CashFlow.ServicesCount != 2 {
		t.Fatalf("cash flow count = %d, want 2", sum.CashFlow.ServicesCount)
	}
	if sum.Profit.ServicesCount != 1 {
		t.Fatalf("profit count = %d, want 1", sum.Profit.ServicesCount)
	}
	if sum.Profit.Profit != 10000 {
		t.Fatalf("recognized profit = %d, want 10000", sum.Profit.Profit)
	}
}

func TestGetDriverReport(t *testing.T) {
	repo := &stubRepo{
		driver:   &model.Driver{ID: "drv-1", Name: "Ivan"},
		services: reportRecords(),
	}
	svc := NewService(repo, nil)

	report, err := svc.GetDriverReport(context.Background(), "drv-1", settlement.MonthWindow(2026, time.July, time.UTC))
	if err != nil {
		t.Fatalf("GetDriverReport error: %v", err)
	}

	if report.Rollup.ServicesCount != 1 {
		t.Fatalf("driver services = %d, want 1", report.Rollup.ServicesCount)
	}
	if report.CashToRemit != 10000 {
		t.Fatalf("cash to remit = %d, want 10000", report.CashToRemit)
	}
}

func TestGetDriverReport_UnknownDriver(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)
	_, err := svc.GetDriverReport(context.Background(), "missing", settlement.Window{})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetSupplierNetBalance_MatchesStatement(t *testing.T) {
	repo := &stubRepo{
		supplier: &model.Supplier{ID: "sup-1", Name: "City Tours"},
		services: reportRecords(),
	}
	svc := NewService(repo, nil)
	w := settlement.MonthWindow(2026, time.July, time.UTC)

	st, err := svc.GetSupplierStatement(context.Background(), "sup-1", w)
	if err != nil {
		t.Fatalf("GetSupplierStatement error: %v", err)
	}
	nb, err := svc.GetSupplierNetBalance(context.Background(), "sup-1", w)
	if err != nil {
		t.Fatalf("GetSupplierNetBalance error: %v", err)
	}

	if *nb != st.Totals {
		t.Fatalf("net balance %+v differs from statement totals %+v", *nb, st.Totals)
	}
	// подрядчик собрал 20000 при стоимости 12000
	if nb.Net != 8000 {
		t.Fatalf("Net = %d, want 8000", nb.Net)
	}
}

func TestProcessDueBatch(t *testing.T) {
	end := time.Date(2026, time.July, 10, 14, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		due: []model.ServiceRecord{
			{ID: "starting", Status: model.ServiceStatusConfirmed},
			{ID: "finishing", Status: model.ServiceStatusInProgress, EndAt: &end},
			{ID: "ignored", Status: model.ServiceStatusPending},
		},
	}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return end }

	svc.processDueBatch(context.Background())

	if repo.statusCalls != 2 {
		t.Fatalf("status updates = %d, want 2", repo.statusCalls)
	}
}
