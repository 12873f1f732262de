package settlement

import (
	"testing"
	"time"

	"github.com/mmeshcher/transferdesk/internal/model"
)

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(2026, time.August, time.UTC)

	if !w.Contains(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first instant of month must be inside")
	}
	if !w.Contains(time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("last instant of month must be inside")
	}
	if w.Contains(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("next month start must be outside")
	}
	if w.Contains(time.Date(2026, time.July, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("previous month must be outside")
	}
}

func TestWindow_OpenBounds(t *testing.T) {
	var unbounded Window
	if !unbounded.Contains(time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("zero window must contain everything")
	}

	onlyFrom := Window{From: date(2026, time.July, 1)}
	if onlyFrom.Contains(date(2026, time.June, 30)) {
		t.Fatalf("instant before From must be outside")
	}
	if !onlyFrom.Contains(date(2030, time.January, 1)) {
		t.Fatalf("upper bound is open")
	}
}

func TestParseMonth(t *testing.T) {
	w, err := ParseMonth("2026-02", time.UTC)
	if err != nil {
		t.Fatalf("ParseMonth error: %v", err)
	}
	if !w.From.Equal(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("From = %v", w.From)
	}
	if !w.To.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("To = %v", w.To)
	}

	if _, err := ParseMonth("02.2026", time.UTC); err == nil {
		t.Fatalf("expected error for wrong format")
	}
	if _, err := ParseMonth("", time.UTC); err == nil {
		t.Fatalf("expected error for empty string")
	}
}

func TestYearWindow(t *testing.T) {
	w := YearWindow(2026, time.UTC)
	if !w.Contains(date(2026, time.January, 1)) || !w.Contains(date(2026, time.December, 31)) {
		t.Fatalf("year bounds are wrong: %+v", w)
	}
	if w.Contains(date(2027, time.January, 1)) {
		t.Fatalf("next year must be outside")
	}
}

func TestByMonthAndFulfiller_Keys(t *testing.T) {
	rec := model.ServiceRecord{StartAt: date(2026, time.August, 5)}

	if got := ByMonthAndFulfiller(rec); got != "2026-08/" {
		t.Fatalf("unassigned key = %q", got)
	}

	rec.DriverID = strPtr("drv-9")
	if got := ByMonthAndFulfiller(rec); got != "2026-08/driver:drv-9" {
		t.Fatalf("driver key = %q", got)
	}

	rec.DriverID = nil
	rec.SupplierID = strPtr("sup-9")
	if got := ByMonthAndFulfiller(rec); got != "2026-08/supplier:sup-9" {
		t.Fatalf("supplier key = %q", got)
	}
}
