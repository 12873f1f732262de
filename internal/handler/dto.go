package handler

import (
	"math"
	"time"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/service"
	"github.com/mmeshcher/transferdesk/internal/settlement"
)

// Денежные суммы в API — числа в основной валюте; внутри системы — копейки.
func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

type credentialsRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type serviceRequest struct {
	Title         string     `json:"title" validate:"required"`
	ClientName    string     `json:"client_name"`
	ClientContact string     `json:"client_contact"`
	StartAt       time.Time  `json:"start_at" validate:"required"`
	EndAt         *time.Time `json:"end_at"`

	ClientPrice  float64 `json:"client_price" validate:"gte=0"`
	Deposit      float64 `json:"deposit" validate:"gte=0"`
	SupplierCost float64 `json:"supplier_cost" validate:"gte=0"`
	ExtrasAmount float64 `json:"extras_amount" validate:"gte=0"`
	ExtrasInfo   string  `json:"extras_info"`

	PaymentMethod         string `json:"payment_method"`
	ClientPaymentStatus   string `json:"client_payment_status" validate:"omitempty,oneof=UNPAID PAID PARTIAL"`
	SupplierPaymentStatus string `json:"supplier_payment_status" validate:"omitempty,oneof=UNPAID PAID PARTIAL"`

	DriverID   *string `json:"driver_id"`
	SupplierID *string `json:"supplier_id"`
}

func (r serviceRequest) toRecord() model.ServiceRecord {
	return model.ServiceRecord{
		Title:                 r.Title,
		ClientName:            r.ClientName,
		ClientContact:         r.ClientContact,
		StartAt:               r.StartAt,
		EndAt:                 r.EndAt,
		ClientPrice:           toCents(r.ClientPrice),
		Deposit:               toCents(r.Deposit),
		SupplierCost:          toCents(r.SupplierCost),
		ExtrasAmount:          toCents(r.ExtrasAmount),
		ExtrasInfo:            r.ExtrasInfo,
		PaymentMethod:         model.PaymentMethod(r.PaymentMethod),
		ClientPaymentStatus:   model.PaymentStatus(r.ClientPaymentStatus),
		SupplierPaymentStatus: model.PaymentStatus(r.SupplierPaymentStatus),
		DriverID:              r.DriverID,
		SupplierID:            r.SupplierID,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
}

type fulfillerRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

type fulfillerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Note  string `json:"note,omitempty"`
}

func driverResponse(d model.Driver) fulfillerResponse {
	return fulfillerResponse{ID: d.ID, Name: d.Name, Phone: d.Phone, Note: d.Note}
}

func supplierResponse(s model.Supplier) fulfillerResponse {
	return fulfillerResponse{ID: s.ID, Name: s.Name, Phone: s.Phone, Note: s.Note}
}

type settlementResponse struct {
	BalanceDue           float64 `json:"balance_due"`
	CollectedByFulfiller float64 `json:"collected_by_fulfiller"`
	NetToFulfiller       float64 `json:"net_to_fulfiller"`
	AgencyMargin         float64 `json:"agency_margin"`
	Direction            string  `json:"direction"`
	Amount               float64 `json:"amount"`
}

func newSettlementResponse(s settlement.Settlement) settlementResponse {
	return settlementResponse{
		BalanceDue:           fromCents(s.BalanceDue),
		CollectedByFulfiller: fromCents(s.CollectedByFulfiller),
		NetToFulfiller:       fromCents(s.NetToFulfiller),
		AgencyMargin:         fromCents(s.AgencyMargin),
		Direction:            string(s.FulfillerDirection()),
		Amount:               fromCents(s.FulfillerAmount()),
	}
}

type serviceResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	ClientName    string     `json:"client_name,omitempty"`
	ClientContact string     `json:"client_contact,omitempty"`
	StartAt       string     `json:"start_at"`
	EndAt         *string    `json:"end_at,omitempty"`

	ClientPrice  float64 `json:"client_price"`
	Deposit      float64 `json:"deposit"`
	SupplierCost float64 `json:"supplier_cost"`
	ExtrasAmount float64 `json:"extras_amount"`
	ExtrasInfo   string  `json:"extras_info,omitempty"`

	PaymentMethod         string `json:"payment_method,omitempty"`
	ClientPaymentStatus   string `json:"client_payment_status"`
	SupplierPaymentStatus string `json:"supplier_payment_status"`

	DriverID   *string `json:"driver_id,omitempty"`
	SupplierID *string `json:"supplier_id,omitempty"`

	Status string `json:"status"`

	// Расчёт всегда вычисляется заново при чтении и нигде не хранится.
	Settlement settlementResponse `json:"settlement"`
}

func newServiceResponse(rec model.ServiceRecord) serviceResponse {
	resp := serviceResponse{
		ID:                    rec.ID,
		Title:                 rec.Title,
		ClientName:            rec.ClientName,
		ClientContact:         rec.ClientContact,
		StartAt:               rec.StartAt.Format(time.RFC3339),
		ClientPrice:           fromCents(rec.ClientPrice),
		Deposit:               fromCents(rec.Deposit),
		SupplierCost:          fromCents(rec.SupplierCost),
		ExtrasAmount:          fromCents(rec.ExtrasAmount),
		ExtrasInfo:            rec.ExtrasInfo,
		PaymentMethod:         string(rec.PaymentMethod),
		ClientPaymentStatus:   string(rec.ClientPaymentStatus),
		SupplierPaymentStatus: string(rec.SupplierPaymentStatus),
		DriverID:              rec.DriverID,
		SupplierID:            rec.SupplierID,
		Status:                string(rec.Status),
		Settlement:            newSettlementResponse(settlement.Calculate(rec)),
	}
	if rec.EndAt != nil {
		s := rec.EndAt.Format(time.RFC3339)
		resp.EndAt = &s
	}
	return resp
}

type rollupResponse struct {
	Period        string `json:"period,omitempty"`
	ServicesCount int    `json:"services_count"`

	Revenue      float64 `json:"revenue"`
	Deposits     float64 `json:"deposits"`
	SupplierCost float64 `json:"supplier_cost"`
	Extras       float64 `json:"extras"`

	CashCollected        float64 `json:"cash_collected"`
	ExtrasCollected      float64 `json:"extras_collected"`
	BankReceived         float64 `json:"bank_received"`
	CollectedByFulfiller float64 `json:"collected_by_fulfiller"`

	Profit float64 `json:"profit"`

	ClientOutstanding   float64 `json:"client_outstanding"`
	SupplierOutstanding float64 `json:"supplier_outstanding"`
}

func newRollupResponse(r settlement.Rollup) rollupResponse {
	return rollupResponse{
		Period:               r.Period,
		ServicesCount:        r.ServicesCount,
		Revenue:              fromCents(r.Revenue),
		Deposits:             fromCents(r.Deposits),
		SupplierCost:         fromCents(r.SupplierCost),
		Extras:               fromCents(r.Extras),
		CashCollected:        fromCents(r.CashCollected),
		ExtrasCollected:      fromCents(r.ExtrasCollected),
		BankReceived:         fromCents(r.BankReceived),
		CollectedByFulfiller: fromCents(r.CollectedByFulfiller()),
		Profit:               fromCents(r.Profit),
		ClientOutstanding:    fromCents(r.ClientOutstanding),
		SupplierOutstanding:  fromCents(r.SupplierOutstanding),
	}
}

type summaryResponse struct {
	CashFlow rollupResponse `json:"cash_flow"`
	Profit   rollupResponse `json:"profit"`
}

func newSummaryResponse(s service.Summary) summaryResponse {
	return summaryResponse{
		CashFlow: newRollupResponse(s.CashFlow),
		Profit:   newRollupResponse(s.Profit),
	}
}

type driverReportResponse struct {
	Driver      fulfillerResponse `json:"driver"`
	Rollup      rollupResponse    `json:"rollup"`
	CashToRemit float64           `json:"cash_to_remit"`
}

func newDriverReportResponse(r service.DriverReport) driverReportResponse {
	return driverReportResponse{
		Driver:      driverResponse(r.Driver),
		Rollup:      newRollupResponse(r.Rollup),
		CashToRemit: fromCents(r.CashToRemit),
	}
}

type netBalanceResponse struct {
	SupplierID      string  `json:"supplier_id"`
	TotalPayable    float64 `json:"total_payable"`
	TotalHeld       float64 `json:"total_held"`
	TotalReceivable float64 `json:"total_receivable"`
	Net             float64 `json:"net"`
	Direction       string  `json:"direction"`
	Amount          float64 `json:"amount"`
}

func newNetBalanceResponse(nb settlement.NetBalance) netBalanceResponse {
	return netBalanceResponse{
		SupplierID:      nb.SupplierID,
		TotalPayable:    fromCents(nb.TotalPayable),
		TotalHeld:       fromCents(nb.TotalHeld),
		TotalReceivable: fromCents(nb.TotalReceivable),
		Net:             fromCents(nb.Net),
		Direction:       string(nb.Direction()),
		Amount:          fromCents(nb.Amount()),
	}
}

type statementLineResponse struct {
	ServiceID    string  `json:"service_id"`
	Title        string  `json:"title"`
	StartAt      string  `json:"start_at"`
	ClientName   string  `json:"client_name,omitempty"`
	Side         string  `json:"side"`
	ClientPrice  float64 `json:"client_price"`
	SupplierCost float64 `json:"supplier_cost"`
	Collected    float64 `json:"collected"`
	Net          float64 `json:"net"`
}

type statementResponse struct {
	Supplier fulfillerResponse       `json:"supplier"`
	Lines    []statementLineResponse `json:"lines"`
	Totals   netBalanceResponse      `json:"totals"`
}

func newStatementResponse(st settlement.Statement) statementResponse {
	resp := statementResponse{
		Supplier: supplierResponse(st.Supplier),
		Lines:    make([]statementLineResponse, 0, len(st.Lines)),
		Totals:   newNetBalanceResponse(st.Totals),
	}
	for _, ln := range st.Lines {
		side := "payable"
		if ln.Receivable {
			side = "receivable"
		}
		resp.Lines = append(resp.Lines, statementLineResponse{
			ServiceID:    ln.ServiceID,
			Title:        ln.Title,
			StartAt:      ln.StartAt.Format(time.RFC3339),
			ClientName:   ln.ClientName,
			Side:         side,
			ClientPrice:  fromCents(ln.ClientPrice),
			SupplierCost: fromCents(ln.SupplierCost),
			Collected:    fromCents(ln.Collected),
			Net:          fromCents(ln.Net),
		})
	}
	return resp
}
