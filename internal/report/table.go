package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// WriteTable renders rep as a terminal table with the summary in the
// footer.
func WriteTable(w io.Writer, rep Report) error {
	fmt.Fprintf(w, "%s\nGenerated %s\n\n", rep.Title, rep.GeneratedAt.Format("2006-01-02 15:04"))

	table := tablewriter.NewWriter(w)
	cols := columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)

	for _, row := range rep.Rows {
		if err := table.Append(row.cells()); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}

	s := rep.Summary
	table.Footer(
		fmt.Sprintf("%s orders", humanize.Comma(int64(s.Orders))), "", "", "",
		humanize.Comma(s.Items), "", money(s.Value),
		fmt.Sprintf("%d/%d", s.Paid, s.Orders),
	)
	return table.Render()
}

// WriteCSV writes one line per record plus a header line.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "group", "customer", "size", "color", "model", "quantity", "addon", "total", "paid", "created_at"}); err != nil {
		return err
	}
	for _, r := range rep.Rows {
		err := cw.Write([]string{
			r.ID.String(),
			r.GroupKey,
			r.CustomerName,
			r.Size,
			r.Color,
			r.VariantName,
			strconv.Itoa(int(r.Quantity)),
			r.AddonLabel,
			r.Total.StringFixed(2),
			strconv.FormatBool(r.Paid),
			r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
