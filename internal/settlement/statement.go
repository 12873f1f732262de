package settlement

import (
	"sort"
	"time"

	"github.com/mmeshcher/transferdesk/internal/model"
)

// StatementLine описывает одну услугу в выписке по контрагенту.
type StatementLine struct {
	ServiceID  string
	Title      string
	StartAt    time.Time
	ClientName string

	ClientPrice  int64
	SupplierCost int64
	Collected    int64
	Net          int64

	// Receivable отмечает строку дебиторской стороны: подрядчик выступает клиентом.
	Receivable bool
}

// Statement — выписка по взаиморасчётам с подрядчиком за период.
// Числа выписки едины для всех представлений: JSON, CSV и печатной формы.
type Statement struct {
	Supplier model.Supplier
	Window   Window
	Lines    []StatementLine
	Totals   NetBalance
}

// BuildStatement строит выписку по подрядчику за период: построчные расчёты
// и итоговое сальдо через общий резолвер. Нулевой qualify означает отбор всех
// неотменённых услуг.
func BuildStatement(records []model.ServiceRecord, supplier model.Supplier, w Window, qualify Qualifier) Statement {
	if qualify == nil {
		qualify = QualifyActive
	}

	st := Statement{
		Supplier: supplier,
		Window:   w,
		Totals:   ResolveNetBalance(records, supplier.ID, supplier.Name, w, qualify),
	}

	for _, rec := range records {
		if !qualify(rec) || !w.Contains(rec.StartAt) {
			continue
		}

		switch {
		case rec.Outsourced() && *rec.SupplierID == supplier.ID:
			s := Calculate(rec)
			st.Lines = append(st.Lines, StatementLine{
				ServiceID:    rec.ID,
				Title:        rec.Title,
				StartAt:      rec.StartAt,
				ClientName:   rec.ClientName,
				ClientPrice:  rec.ClientPrice,
				SupplierCost: rec.SupplierCost,
				Collected:    s.CollectedByFulfiller,
				Net:          s.NetToFulfiller,
			})
		case supplier.Name != "" && rec.ClientName == supplier.Name:
			st.Lines = append(st.Lines, StatementLine{
				ServiceID:   rec.ID,
				Title:       rec.Title,
				StartAt:     rec.StartAt,
				ClientName:  rec.ClientName,
				ClientPrice: rec.ClientPrice,
				Net:         rec.ClientPrice,
				Receivable:  true,
			})
		}
	}

	sort.Slice(st.Lines, func(i, j int) bool {
		return st.Lines[i].StartAt.Before(st.Lines[j].StartAt)
	})

	return st
}
