// Package settlement реализует расчётный движок: финансовый расчёт по услуге,
// агрегацию по периодам и сведение взаимных обязательств с контрагентом.
// Все функции детерминированы и не выполняют ввод-вывод; суммы — в копейках.
package settlement

import "github.com/mmeshcher/transferdesk/internal/model"

// Settlement содержит результат финансового расчёта по одной услуге.
type Settlement struct {
	// BalanceDue — остаток, который клиент должен на месте оказания услуги.
	BalanceDue int64
	// CollectedByFulfiller — наличные, оказавшиеся на руках у исполнителя.
	CollectedByFulfiller int64
	// NetToFulfiller — итог взаиморасчёта с исполнителем: положительное значение
	// означает долг агентства перед исполнителем, отрицательное — долг исполнителя.
	NetToFulfiller int64
	// AgencyMargin — прибыль агентства по услуге.
	AgencyMargin int64
}

// Direction указывает направление платежа между агентством и контрагентом.
type Direction string

const (
	// DirectionAgencyPays — агентство платит контрагенту.
	DirectionAgencyPays Direction = "AGENCY_PAYS_COUNTERPARTY"
	// DirectionCounterpartyPays — контрагент платит агентству.
	DirectionCounterpartyPays Direction = "COUNTERPARTY_PAYS_AGENCY"
)

// CollectsCash сообщает, получает ли исполнитель деньги от клиента на месте.
// Неизвестный или пустой способ оплаты считается безналичным: наличные на руках
// исполнителя не предполагаются.
func CollectsCash(m model.PaymentMethod) bool {
	switch m {
	case model.PaymentToDriver, model.PaymentDepositBalance, model.PaymentCash:
		return true
	}
	return false
}

// Calculate выполняет финансовый расчёт по одной услуге.
//
// Остаток к оплате на месте равен цене за вычетом депозита; при предоплате и
// отложенном счёте клиент рассчитывается вне места оказания услуги, и остаток
// равен нулю. Допсбор всегда считается полученным исполнителем на месте.
// Взаиморасчёт с исполнителем считается единообразно: для своей услуги
// стоимость подрядчика равна нулю, и весь остаток сводится к тому, что
// водитель сдаёт собранные наличные агентству.
func Calculate(rec model.ServiceRecord) Settlement {
	var balanceDue int64
	switch rec.PaymentMethod {
	case model.PaymentPrepaid, model.PaymentFutureInvoice:
		balanceDue = 0
	default:
		balanceDue = rec.ClientPrice - rec.Deposit
		if balanceDue < 0 {
			// депозит больше цены — некорректные данные, но не отрицательный долг
			balanceDue = 0
		}
	}

	collected := rec.ExtrasAmount
	if CollectsCash(rec.PaymentMethod) {
		collected += balanceDue
	}

	return Settlement{
		BalanceDue:           balanceDue,
		CollectedByFulfiller: collected,
		NetToFulfiller:       rec.SupplierCost - collected,
		AgencyMargin:         rec.ClientPrice - rec.SupplierCost + rec.ExtrasAmount,
	}
}

// FulfillerDirection возвращает направление платежа по итогу взаиморасчёта
// с исполнителем: неотрицательный итог — агентство доплачивает исполнителю.
func (s Settlement) FulfillerDirection() Direction {
	if s.NetToFulfiller >= 0 {
		return DirectionAgencyPays
	}
	return DirectionCounterpartyPays
}

// FulfillerAmount возвращает модуль итога взаиморасчёта с исполнителем.
func (s Settlement) FulfillerAmount() int64 {
	if s.NetToFulfiller < 0 {
		return -s.NetToFulfiller
	}
	return s.NetToFulfiller
}
