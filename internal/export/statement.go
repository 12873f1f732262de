package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/mmeshcher/transferdesk/internal/settlement"
)

// RenderStatementText печатает выписку по подрядчику в текстовом виде.
// Числа идентичны CSV-выгрузке и JSON-ответу: все три представления
// берут их из одной структуры settlement.Statement.
func RenderStatementText(w io.Writer, st settlement.Statement, settings model.Settings) error {
	cur := settings.Currency
	layout := settings.DateLayout
	if layout == "" {
		layout = "02.01.2006"
	}

	if _, err := fmt.Fprintf(w, "SUPPLIER STATEMENT\n\nSupplier: %s\nPeriod:   %s\n\n",
		st.Supplier.Name, windowLabel(st.Window, settings)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tService\tClient\tSide\tPrice\tCost\tCollected\tNet")

	for _, ln := range st.Lines {
		side := "payable"
		if ln.Receivable {
			side = "receivable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%s\t%s%s\t%s%s\t%s%s\n",
			ln.StartAt.Format(layout), ln.Title, ln.ClientName, side,
			cur, Amount(ln.ClientPrice),
			cur, Amount(ln.SupplierCost),
			cur, Amount(ln.Collected),
			cur, Amount(ln.Net),
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nPayable to supplier:    %s%s\nHeld by supplier:       %s%s\nBilled to supplier:     %s%s\n\nNet balance: %s%s (%s)\n",
		cur, Amount(st.Totals.TotalPayable),
		cur, Amount(st.Totals.TotalHeld),
		cur, Amount(st.Totals.TotalReceivable),
		cur, Amount(st.Totals.Amount()),
		directionPhrase(st.Totals.Direction()),
	)
	return err
}
