package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var colWidths = []float64{58, 16, 24, 52, 14, 36, 32, 18}

// WritePDF renders rep as a paginated landscape A4 document with the
// title, generation time, summary block, record table and page footer.
func WritePDF(w io.Writer, rep Report) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(rep.Title, true)
	pdf.SetCreationDate(rep.GeneratedAt)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(rep.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, "Generated "+rep.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	s := rep.Summary
	for _, line := range []string{
		fmt.Sprintf("Total orders: %d", s.Orders),
		fmt.Sprintf("Total items: %d", s.Items),
		"Total value (with add-ons): " + money(s.Value),
		fmt.Sprintf("Paid: %d    Unpaid: %d", s.Paid, s.Unpaid),
	} {
		pdf.CellFormat(0, 5.5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(40, 40, 40)
		pdf.SetTextColor(255, 255, 255)
		for i, col := range columns() {
			pdf.CellFormat(colWidths[i], 7, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, row := range rep.Rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		fill := i%2 == 1
		pdf.SetFillColor(242, 242, 242)
		for c, cell := range row.cells() {
			align := "L"
			if c >= 4 {
				align = "C"
			}
			pdf.CellFormat(colWidths[c], 6, tr(cell), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return fmt.Errorf("render pdf: %w", pdf.Error())
	}
	return pdf.Output(w)
}

// Filename is the download name for a report generated at rep.GeneratedAt.
func Filename(rep Report, ext string) string {
	return "orders-report-" + rep.GeneratedAt.Format("2006-01-02") + "." + ext
}

