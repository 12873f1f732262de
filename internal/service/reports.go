package service

import (
	"context"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/settlement"
)

// Summary содержит сводные карточки за период: денежный поток по
// подтверждённым услугам и прибыль по выполненным.
type Summary struct {
	CashFlow settlement.Rollup
	Profit   settlement.Rollup
}

// DriverReport содержит месячный отчёт по водителю.
type DriverReport struct {
	Driver model.Driver
	Rollup settlement.Rollup
	// CashToRemit — наличные, которые водитель обязан сдать агентству.
	CashToRemit int64
}

// GetSummary возвращает сводные показатели за период.
func (s *Service) GetSummary(ctx context.Context, w settlement.Window) (*Summary, error) {
	records, err := s.repo.ListServices(ctx, w.From, w.To)
	if err != nil {
		return nil, err
	}

	return &Summary{
		CashFlow: settlement.AggregateWindow(records, w, settlement.QualifyCashFlow),
		Profit:   settlement.AggregateWindow(records, w, settlement.QualifyProfit),
	}, nil
}

// GetMonthlyRollups возвращает помесячные своды за год, от свежего месяца к старому.
func (s *Service) GetMonthlyRollups(ctx context.Context, year int) ([]settlement.Rollup, error) {
	w := settlement.YearWindow(year, nil)
	records, err := s.repo.ListServices(ctx, w.From, w.To)
	if err != nil {
		return nil, err
	}

	return settlement.Aggregate(records, settlement.ByMonth, settlement.QualifyActive), nil
}

// GetDriverReport возвращает месячный отчёт по водителю.
func (s *Service) GetDriverReport(ctx context.Context, driverID string, w settlement.Window) (*DriverReport, error) {
	driver, err := s.repo.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListServices(ctx, w.From, w.To)
	if err != nil {
		return nil, err
	}

	assigned := records[:0:0]
	for _, rec := range records {
		if rec.Internal() && *rec.DriverID == driverID {
			assigned = append(assigned, rec)
		}
	}

	rollup := settlement.AggregateWindow(assigned, w, settlement.QualifyActive)

	return &DriverReport{
		Driver:      *driver,
		Rollup:      rollup,
		CashToRemit: rollup.CollectedByFulfiller(),
	}, nil
}

// GetSupplierStatement возвращает выписку по взаиморасчётам с подрядчиком за период.
func (s *Service) GetSupplierStatement(ctx context.Context, supplierID string, w settlement.Window) (*settlement.Statement, error) {
	supplier, err := s.repo.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListServices(ctx, w.From, w.To)
	if err != nil {
		return nil, err
	}

	st := settlement.BuildStatement(records, *supplier, w, settlement.QualifyActive)
	return &st, nil
}

// GetSupplierNetBalance возвращает итоговое сальдо взаиморасчётов с подрядчиком.
func (s *Service) GetSupplierNetBalance(ctx context.Context, supplierID string, w settlement.Window) (*settlement.NetBalance, error) {
	st, err := s.GetSupplierStatement(ctx, supplierID, w)
	if err != nil {
		return nil, err
	}

	nb := st.Totals
	return &nb, nil
}
