package settlement

import (
	"sort"

	"github.com/mmeshcher/transferdesk/internal/model"
)

// Rollup содержит агрегированные финансовые итоги по группе услуг.
type Rollup struct {
	// Period — ключ группы, например "2026-08" или "2026-08/supplier:<id>".
	Period string

	ServicesCount int

	Revenue      int64 // сумма цен для клиентов
	Deposits     int64 // сумма депозитов
	SupplierCost int64 // сумма стоимостей подрядчиков
	Extras       int64 // сумма допсборов

	// CashCollected — остатки, полученные исполнителями наличными на месте.
	CashCollected int64
	// ExtrasCollected — допсборы, полученные исполнителями на месте.
	ExtrasCollected int64
	// BankReceived — поступления напрямую на счёт агентства: предоплаты и депозиты.
	BankReceived int64

	// Profit — суммарная прибыль агентства.
	Profit int64

	// ClientOutstanding — цены услуг, не оплаченных клиентами полностью.
	ClientOutstanding int64
	// SupplierOutstanding — стоимости подрядчиков, не выплаченные полностью.
	SupplierOutstanding int64
}

// CollectedByFulfiller возвращает все наличные на руках исполнителей группы.
func (r Rollup) CollectedByFulfiller() int64 {
	return r.CashCollected + r.ExtrasCollected
}

// Qualifier отбирает услуги, участвующие в агрегации.
type Qualifier func(model.ServiceRecord) bool

// QualifyActive отбирает все неотменённые услуги. Используется по умолчанию.
func QualifyActive(rec model.ServiceRecord) bool {
	return rec.Status != model.ServiceStatusCancelled
}

// QualifyCashFlow отбирает подтверждённые и более поздние услуги —
// для отчётов о движении денег.
func QualifyCashFlow(rec model.ServiceRecord) bool {
	switch rec.Status {
	case model.ServiceStatusConfirmed, model.ServiceStatusInProgress, model.ServiceStatusCompleted:
		return true
	}
	return false
}

// QualifyProfit отбирает только выполненные услуги — для признания прибыли.
func QualifyProfit(rec model.ServiceRecord) bool {
	return rec.Status == model.ServiceStatusCompleted
}

func (r *Rollup) add(rec model.ServiceRecord) {
	s := Calculate(rec)

	r.ServicesCount++
	r.Revenue += rec.ClientPrice
	r.Deposits += rec.Deposit
	r.SupplierCost += rec.SupplierCost
	r.Extras += rec.ExtrasAmount

	if CollectsCash(rec.PaymentMethod) {
		r.CashCollected += s.BalanceDue
	}
	r.ExtrasCollected += rec.ExtrasAmount

	switch rec.PaymentMethod {
	case model.PaymentPrepaid:
		r.BankReceived += rec.ClientPrice
	case model.PaymentFutureInvoice:
		// счёт ещё не выставлен или не оплачен, поступлений нет
	default:
		r.BankReceived += rec.Deposit
	}

	r.Profit += s.AgencyMargin

	if rec.ClientPaymentStatus != model.PaymentStatusPaid {
		r.ClientOutstanding += rec.ClientPrice
	}
	if rec.Outsourced() && rec.SupplierPaymentStatus != model.PaymentStatusPaid {
		r.SupplierOutstanding += rec.SupplierCost
	}
}

// Aggregate разбивает услуги на группы по ключу и суммирует финансовые итоги
// каждой группы. Группы возвращаются от самой свежей к самой старой.
// Нулевой qualify означает отбор всех неотменённых услуг.
func Aggregate(records []model.ServiceRecord, key KeyFunc, qualify Qualifier) []Rollup {
	if key == nil {
		key = ByMonth
	}
	if qualify == nil {
		qualify = QualifyActive
	}

	buckets := make(map[string]*Rollup)
	for _, rec := range records {
		if !qualify(rec) {
			continue
		}
		k := key(rec)
		r, ok := buckets[k]
		if !ok {
			r = &Rollup{Period: k}
			buckets[k] = r
		}
		r.add(rec)
	}

	res := make([]Rollup, 0, len(buckets))
	for _, r := range buckets {
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Period > res[j].Period
	})

	return res
}

// AggregateWindow суммирует финансовые итоги всех подходящих услуг периода
// в один свод. Нулевой qualify означает отбор всех неотменённых услуг.
func AggregateWindow(records []model.ServiceRecord, w Window, qualify Qualifier) Rollup {
	if qualify == nil {
		qualify = QualifyActive
	}

	var r Rollup
	for _, rec := range records {
		if !qualify(rec) || !w.Contains(rec.StartAt) {
			continue
		}
		r.add(rec)
	}
	return r
}
