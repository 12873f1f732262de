// Package model содержит доменные сущности сервиса трансферов.
package model

import "time"

// User представляет сотрудника бэк-офиса с доступом к системе.
type User struct {
	ID           int64
	Login        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// PaymentMethod описывает способ оплаты услуги клиентом.
// Значения совпадают с тем, что хранится в БД и передаётся по API.
type PaymentMethod string

const (
	PaymentPrepaid        PaymentMethod = "Prepaid"
	PaymentToDriver       PaymentMethod = "Pay to the driver"
	PaymentDepositBalance PaymentMethod = "Paid deposit + balance to the driver"
	PaymentFutureInvoice  PaymentMethod = "Future Invoice"
	PaymentCash           PaymentMethod = "Cash"
)

// PaymentMethods перечисляет допустимые способы оплаты.
var PaymentMethods = []PaymentMethod{
	PaymentPrepaid,
	PaymentToDriver,
	PaymentDepositBalance,
	PaymentFutureInvoice,
	PaymentCash,
}

// PaymentStatus описывает состояние оплаты со стороны клиента или подрядчика.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
)

// ServiceStatus описывает статус жизненного цикла услуги.
type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "PENDING"
	ServiceStatusConfirmed  ServiceStatus = "CONFIRMED"
	ServiceStatusInProgress ServiceStatus = "IN_PROGRESS"
	ServiceStatusCompleted  ServiceStatus = "COMPLETED"
	ServiceStatusCancelled  ServiceStatus = "CANCELLED"
)

// CanTransition сообщает, допустим ли переход статуса услуги.
// Отмена возможна из любого незавершённого состояния.
func (s ServiceStatus) CanTransition(to ServiceStatus) bool {
	if s == to {
		return false
	}
	switch to {
	case ServiceStatusCancelled:
		return s != ServiceStatusCompleted && s != ServiceStatusCancelled
	case ServiceStatusConfirmed:
		return s == ServiceStatusPending
	case ServiceStatusInProgress:
		return s == ServiceStatusConfirmed
	case ServiceStatusCompleted:
		return s == ServiceStatusInProgress
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s ServiceStatus) Terminal() bool {
	return s == ServiceStatusCompleted || s == ServiceStatusCancelled
}

// ServiceRecord описывает одну заказанную услугу: трансфер или экскурсию.
// Все денежные поля хранятся в копейках; отсутствующее значение равно нулю.
type ServiceRecord struct {
	ID            string
	Title         string
	ClientName    string
	ClientContact string

	StartAt time.Time
	EndAt   *time.Time

	ClientPrice  int64
	Deposit      int64
	SupplierCost int64
	ExtrasAmount int64
	ExtrasInfo   string

	PaymentMethod         PaymentMethod
	ClientPaymentStatus   PaymentStatus
	SupplierPaymentStatus PaymentStatus

	// Исполнитель: либо свой водитель, либо сторонний подрядчик, но не оба сразу.
	DriverID   *string
	SupplierID *string

	Status    ServiceStatus
	CreatedAt time.Time
}

// Outsourced сообщает, передана ли услуга стороннему подрядчику.
func (r ServiceRecord) Outsourced() bool {
	return r.SupplierID != nil && *r.SupplierID != ""
}

// Internal сообщает, закреплена ли услуга за своим водителем.
func (r ServiceRecord) Internal() bool {
	return r.DriverID != nil && *r.DriverID != ""
}

// Driver представляет своего водителя агентства.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	Note      string
	CreatedAt time.Time
}

// Supplier представляет стороннего подрядчика. Подрядчик может одновременно
// быть исполнителем услуг агентства и его клиентом.
type Supplier struct {
	ID        string
	Name      string
	Phone     string
	Note      string
	CreatedAt time.Time
}

// Settings содержит настройки форматирования отчётов и выписок.
// Передаются явно, без чтения глобального состояния.
type Settings struct {
	Currency   string
	DateLayout string
}

// DefaultSettings возвращает настройки форматирования по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		Currency:   "$",
		DateLayout: "02.01.2006",
	}
}
