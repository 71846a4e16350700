package export

import (
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 14.0
	pdfRowHeight = 7.0
	pdfPageLimit = 280.0
)

var pdfColumnWidths = []float64{30, 30, 60, 30, 32}

type PDFOptions struct {
	Title string
	// CreatedAt pins the document date; zero means now.
	CreatedAt time.Time
}

// WritePDF writes an A4 history document: title, coloured totals and the
// rows as a table that continues across pages with a repeated header.
func WritePDF(w io.Writer, ts []core.Transaction, summary core.Summary, opts PDFOptions) error {
	if len(ts) == 0 {
		return ErrNothingToExport
	}
	if opts.Title == "" {
		opts.Title = "Transaction History"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	if !opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(opts.CreatedAt)
	}
	pdf.SetTitle(opts.Title, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pdfMargin, 20, opts.Title)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 128, 0)
	pdf.Text(pdfMargin, 30, "Total Income: $"+summary.TotalIncome.String())
	pdf.SetTextColor(200, 0, 0)
	pdf.Text(pdfMargin, 37, "Total Expenses: $"+summary.TotalExpenses.String())
	pdf.SetTextColor(0, 0, 200)
	pdf.Text(pdfMargin, 44, "Balance: $"+summary.Balance.String())
	pdf.SetTextColor(0, 0, 0)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetY(50)
	tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 10)
	for i, t := range core.Normalized(ts) {
		if pdf.GetY()+pdfRowHeight > pdfPageLimit {
			pdf.AddPage()
			tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 10)
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for j, cell := range row(t, "$") {
			align := "L"
			if j == len(columns)-1 {
				align = "R"
			}
			pdf.CellFormat(pdfColumnWidths[j], pdfRowHeight, tr(cell), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	for i, c := range columns {
		pdf.CellFormat(pdfColumnWidths[i], pdfRowHeight, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}
