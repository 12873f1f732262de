package settlement

import "github.com/mmeshcher/transferdesk/internal/model"

// NetBalance содержит сведённый итог взаиморасчётов с контрагентом за период.
type NetBalance struct {
	SupplierID string

	// TotalPayable — сумма, причитающаяся контрагенту за выполненные им услуги.
	TotalPayable int64
	// TotalHeld — наличные, собранные контрагентом с клиентов агентства.
	TotalHeld int64
	// TotalReceivable — сумма, выставленная контрагенту как клиенту агентства.
	TotalReceivable int64

	// Net = TotalReceivable − TotalPayable + TotalHeld.
	Net int64
}

// Direction возвращает направление итогового платежа: неотрицательное сальдо
// означает долг контрагента перед агентством.
func (n NetBalance) Direction() Direction {
	if n.Net >= 0 {
		return DirectionCounterpartyPays
	}
	return DirectionAgencyPays
}

// Amount возвращает модуль итогового сальдо.
func (n NetBalance) Amount() int64 {
	if n.Net < 0 {
		return -n.Net
	}
	return n.Net
}

// ResolveNetBalance сводит взаимные обязательства с подрядчиком за период.
//
// Кредиторская сторона — услуги, выполненные подрядчиком: сумма его стоимостей
// и собранные им наличные. Дебиторская сторона — услуги, где подрядчик сам
// выступает клиентом агентства (совпадение по имени клиента). Формула сальдо
// одна на всю систему; выписка, CSV и печатная форма используют её результат,
// а не пересчитывают заново. Нулевой qualify означает отбор всех неотменённых
// услуг.
func ResolveNetBalance(records []model.ServiceRecord, supplierID, supplierName string, w Window, qualify Qualifier) NetBalance {
	if qualify == nil {
		qualify = QualifyActive
	}

	nb := NetBalance{SupplierID: supplierID}
	for _, rec := range records {
		if !qualify(rec) || !w.Contains(rec.StartAt) {
			continue
		}

		if rec.Outsourced() && *rec.SupplierID == supplierID {
			s := Calculate(rec)
			nb.TotalPayable += rec.SupplierCost
			nb.TotalHeld += s.CollectedByFulfiller
			continue
		}

		if supplierName != "" && rec.ClientName == supplierName {
			nb.TotalReceivable += rec.ClientPrice
		}
	}

	nb.Net = nb.TotalReceivable - nb.TotalPayable + nb.TotalHeld
	return nb
}
