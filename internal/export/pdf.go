// Package export renders a portfolio view into an A4 portrait PDF document.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Stock-Portfolio-Tracker/internal/model"
)

const (
	pageMargin  = 15.0 // mm
	rowHeight   = 7.0
	chartHeight = 80.0
)

// column describes one table column; widths add up to the printable A4 width.
type column struct {
	title string
	width float64
	align string
	value func(r model.HoldingRow) string
}

var columns = []column{
	{"Name", 38, "L", func(r model.HoldingRow) string { return r.Name }},
	{"Purchase", 22, "R", func(r model.HoldingRow) string { return formatAmount(r.PurchasePrice) }},
	{"Current", 22, "R", func(r model.HoldingRow) string { return formatAmount(r.CurrentPrice) }},
	{"Target", 22, "R", func(r model.HoldingRow) string {
		if r.TargetPrice == nil {
			return "-"
		}
		return formatAmount(*r.TargetPrice)
	}},
	{"Quantity", 20, "R", func(r model.HoldingRow) string { return formatAmount(r.Amount) }},
	{"Purchased", 24, "C", func(r model.HoldingRow) string { return r.PurchaseDate.String() }},
	{"Profit", 32, "R", func(r model.HoldingRow) string { return formatAmount(r.Profit) }},
}

// PDFRenderer renders portfolio views as PDF documents.
type PDFRenderer struct {
	Title string
}

// NewPDFRenderer creates a renderer using title as the document heading.
func NewPDFRenderer(title string) *PDFRenderer {
	if title == "" {
		title = "Investment Portfolio"
	}
	return &PDFRenderer{Title: title}
}

// Render writes view as a PDF to w. Errors wrap apperrors.ErrExport.
func (r *PDFRenderer) Render(view model.PortfolioView, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("stock-portfolio-tracker", false)
	pdf.SetCreationDate(view.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, "Generated "+view.GeneratedAt.Format(time.DateTime), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	drawTable(pdf, tr, view)
	pdf.Ln(8)
	drawChart(pdf, view.MonthlySeries)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrExport, err)
	}
	return nil
}

// WriteFile renders view into dir as portfolio-YYYYMMDD-HHMMSS.pdf and returns the file path.
// A partially written file is removed on failure.
func (r *PDFRenderer) WriteFile(view model.PortfolioView, dir string) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrExport, err)
	}

	path = filepath.Join(dir, "portfolio-"+view.GeneratedAt.Format("20060102-150405")+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrExport, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", apperrors.ErrExport, cerr)
		}
		if err != nil {
			os.Remove(path)
			path = ""
		}
	}()

	if err := r.Render(view, f); err != nil {
		return "", err
	}
	return path, nil
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, view model.PortfolioView) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 236, 245)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i, row := range view.Rows {
		// striped rows
		if i%2 == 1 {
			pdf.SetFillColor(247, 247, 247)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for _, c := range columns {
			pdf.CellFormat(c.width, rowHeight, tr(c.value(row)), "1", 0, c.align, true, 0, "")
		}
		pdf.Ln(-1)
	}

	var labelWidth float64
	for _, c := range columns[:len(columns)-1] {
		labelWidth += c.width
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 236, 245)
	pdf.CellFormat(labelWidth, rowHeight, "Total profit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(columns[len(columns)-1].width, rowHeight, formatAmount(view.TotalProfit), "1", 1, "R", true, 0, "")
}

// drawChart draws the monthly profit series as a line chart with a zero axis.
func drawChart(pdf *fpdf.Fpdf, series []model.MonthlyProfitPoint) {
	pageWidth, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+chartHeight+12 > pageHeight-pageMargin {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Monthly profit", "", 1, "L", false, 0, "")

	left, top := pageMargin+14, pdf.GetY()
	width := pageWidth - 2*pageMargin - 14
	bottom := top + chartHeight

	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Rect(left, top, width, chartHeight, "D")

	pdf.SetFont("Helvetica", "", 8)
	if len(series) == 0 {
		pdf.Text(left+4, top+chartHeight/2, "No holdings")
		return
	}

	lo, hi := 0.0, 0.0
	for _, p := range series {
		lo = math.Min(lo, p.Profit)
		hi = math.Max(hi, p.Profit)
	}
	if hi == lo {
		hi = lo + 1
	}
	y := func(v float64) float64 { return bottom - (v-lo)/(hi-lo)*chartHeight }
	x := func(i int) float64 {
		if len(series) == 1 {
			return left + width/2
		}
		return left + 6 + float64(i)*(width-12)/float64(len(series)-1)
	}

	// zero line and axis labels
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(left, y(0), left+width, y(0))
	pdf.Text(pageMargin, y(hi)+3, formatAmount(hi))
	pdf.Text(pageMargin, y(lo), formatAmount(lo))

	pdf.SetDrawColor(54, 162, 235)
	pdf.SetFillColor(54, 162, 235)
	pdf.SetLineWidth(0.6)
	for i, p := range series {
		if i > 0 {
			pdf.Line(x(i-1), y(series[i-1].Profit), x(i), y(p.Profit))
		}
		pdf.Circle(x(i), y(p.Profit), 0.9, "F")
		pdf.Text(x(i)-5, bottom+4, p.Month)
	}
	pdf.SetLineWidth(0.2)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
