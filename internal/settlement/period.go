package settlement

import (
	"fmt"
	"time"

	"github.com/mmeshcher/transferdesk/internal/model"
)

// Window задаёт отчётный период как полуинтервал [From, To).
// Нулевое значение границы означает её отсутствие.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains сообщает, попадает ли момент времени в период.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// MonthWindow возвращает период, совпадающий с календарным месяцем.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{From: from, To: from.AddDate(0, 1, 0)}
}

// YearWindow возвращает период, совпадающий с календарным годом.
func YearWindow(year int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return Window{From: from, To: from.AddDate(1, 0, 0)}
}

// ParseMonth разбирает месяц в формате "2006-01" и возвращает его период.
func ParseMonth(s string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return Window{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthWindow(t.Year(), t.Month(), loc), nil
}

// MonthKey возвращает ключ календарного месяца услуги в формате "2006-01".
// Лексикографический порядок ключей совпадает с хронологическим.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// KeyFunc возвращает ключ группы для услуги при агрегации.
type KeyFunc func(model.ServiceRecord) string

// ByMonth группирует услуги по календарному месяцу начала.
func ByMonth(rec model.ServiceRecord) string {
	return MonthKey(rec.StartAt)
}

// ByMonthAndFulfiller группирует услуги по месяцу и исполнителю.
func ByMonthAndFulfiller(rec model.ServiceRecord) string {
	entity := ""
	switch {
	case rec.Outsourced():
		entity = "supplier:" + *rec.SupplierID
	case rec.Internal():
		entity = "driver:" + *rec.DriverID
	}
	return MonthKey(rec.StartAt) + "/" + entity
}
