// Package export форматирует результаты расчётного движка: CSV-выгрузки и
// печатные выписки. Пакет ничего не пересчитывает — только представляет
// готовые числа движка.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/settlement"
)

const csvBufferSize = 32 * 1024

type csvStreamer struct {
	buf *bufio.Writer
	csv *csv.Writer
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer}
}

func (s *csvStreamer) writeComment(line string) error {
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	return s.csv.Write(row)
}

func (s *csvStreamer) Close() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	return s.buf.Flush()
}

// Amount форматирует сумму в копейках как десятичное число с двумя знаками.
func Amount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func directionPhrase(d settlement.Direction) string {
	if d == settlement.DirectionAgencyPays {
		return "agency pays counterparty"
	}
	return "counterparty pays agency"
}

func windowLabel(w settlement.Window, settings model.Settings) string {
	layout := settings.DateLayout
	if layout == "" {
		layout = "02.01.2006"
	}
	from := ""
	if !w.From.IsZero() {
		from = w.From.Format(layout)
	}
	to := ""
	if !w.To.IsZero() {
		// верхняя граница полуинтервала — показываем последний включённый день
		to = w.To.AddDate(0, 0, -1).Format(layout)
	}
	return from + " - " + to
}

// WriteStatementCSV выгружает выписку по подрядчику в CSV.
func WriteStatementCSV(w io.Writer, st settlement.Statement, settings model.Settings) error {
	streamer := newCSVStreamer(w)

	if err := streamer.writeComment("# Supplier statement: " + st.Supplier.Name); err != nil {
		return err
	}
	if err := streamer.writeComment("# Period: " + windowLabel(st.Window, settings)); err != nil {
		return err
	}
	if err := streamer.writeComment("# Currency: " + settings.Currency); err != nil {
		return err
	}

	header := []string{"Date", "Service", "Client", "Side", "Client Price", "Supplier Cost", "Collected", "Net"}
	if err := streamer.writeRow(header); err != nil {
		return err
	}

	layout := settings.DateLayout
	if layout == "" {
		layout = "02.01.2006"
	}

	for _, ln := range st.Lines {
		side := "payable"
		if ln.Receivable {
			side = "receivable"
		}
		row := []string{
			ln.StartAt.Format(layout),
			ln.Title,
			ln.ClientName,
			side,
			Amount(ln.ClientPrice),
			Amount(ln.SupplierCost),
			Amount(ln.Collected),
			Amount(ln.Net),
		}
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}

	if err := streamer.writeRow([]string{"", "", "", "", "", "", "", ""}); err != nil {
		return err
	}

	totals := [][]string{
		{"Totals", "", "", "Payable", "", Amount(st.Totals.TotalPayable), "", ""},
		{"Totals", "", "", "Held", "", Amount(st.Totals.TotalHeld), "", ""},
		{"Totals", "", "", "Receivable", "", Amount(st.Totals.TotalReceivable), "", ""},
		{"Totals", "", "", "Net (" + directionPhrase(st.Totals.Direction()) + ")", "", Amount(st.Totals.Amount()), "", ""},
	}
	for _, row := range totals {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}

	return streamer.Close()
}

// WriteRollupsCSV выгружает помесячные своды в CSV.
func WriteRollupsCSV(w io.Writer, rollups []settlement.Rollup, settings model.Settings) error {
	streamer := newCSVStreamer(w)

	if err := streamer.writeComment("# Monthly rollups"); err != nil {
		return err
	}
	if err := streamer.writeComment("# Currency: " + settings.Currency); err != nil {
		return err
	}

	header := []string{
		"Period", "Services", "Revenue", "Deposits", "Supplier Cost", "Extras",
		"Cash Collected", "Bank Received", "Profit", "Client Outstanding", "Supplier Outstanding",
	}
	if err := streamer.writeRow(header); err != nil {
		return err
	}

	for _, r := range rollups {
		row := []string{
			r.Period,
			fmt.Sprintf("%d", r.ServicesCount),
			Amount(r.Revenue),
			Amount(r.Deposits),
			Amount(r.SupplierCost),
			Amount(r.Extras),
			Amount(r.CollectedByFulfiller()),
			Amount(r.BankReceived),
			Amount(r.Profit),
			Amount(r.ClientOutstanding),
			Amount(r.SupplierOutstanding),
		}
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}

	return streamer.Close()
}
