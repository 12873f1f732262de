// Package validation содержит проверки входных данных на границе системы.
package validation

import (
	"errors"

	"github.com/mmeshcher/transferdesk/internal/model"
)

// ErrBothFulfillers возвращается, если услуге назначены и водитель, и подрядчик.
var (
	ErrBothFulfillers = errors.New("driver and supplier are mutually exclusive")
	// ErrDepositExceedsPrice возвращается, если депозит превышает цену услуги.
	ErrDepositExceedsPrice = errors.New("deposit exceeds client price")
	// ErrUnknownPaymentMethod возвращается при неизвестном способе оплаты.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	// ErrNegativeAmount возвращается при отрицательной денежной сумме.
	ErrNegativeAmount = errors.New("money amount must not be negative")
)

// KnownPaymentMethod сообщает, входит ли способ оплаты в допустимый набор.
func KnownPaymentMethod(m model.PaymentMethod) bool {
	for _, known := range model.PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ValidateRecord проверяет инварианты услуги при вводе. Расчётный движок
// не перепроверяет их и обязан переживать нарушения, поэтому единственное
// место контроля — здесь.
func ValidateRecord(rec model.ServiceRecord) error {
	if rec.Internal() && rec.Outsourced() {
		return ErrBothFulfillers
	}
	if rec.ClientPrice < 0 || rec.Deposit < 0 || rec.SupplierCost < 0 || rec.ExtrasAmount < 0 {
		return ErrNegativeAmount
	}
	if rec.Deposit > rec.ClientPrice {
		return ErrDepositExceedsPrice
	}
	if rec.PaymentMethod != "" && !KnownPaymentMethod(rec.PaymentMethod) {
		return ErrUnknownPaymentMethod
	}
	return nil
}
