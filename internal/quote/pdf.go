// Package quote renders an order quote as a paginated PDF document.
package quote

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Filename is the fixed attachment name for generated quotes.
const Filename = "pedido.pdf"

// Item is one quoted line: a product and the quantity ordered.
type Item struct {
	Codigo      string  `json:"codigo"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Cantidad    int     `json:"cantidad"`
}

// Subtotal returns precio × cantidad with decimal precision.
func (it Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(it.Precio).Mul(decimal.NewFromInt(int64(it.Cantidad)))
}

// Total sums the subtotals of all items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Layout constants, in points on an A4 portrait page.
const (
	marginLeft   = 40.0
	topStart     = 40.0
	bottomMargin = 60.0
	itemIndent   = 60.0
)

// Render writes the quote PDF for a tenant name and its line items.
func Render(w io.Writer, empresa string, items []Item) error {
	pdf := build(empresa, items)
	return pdf.Output(w)
}

func build(empresa string, items []Item) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	_, pageHeight := pdf.GetPageSize()

	y := topStart
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(marginLeft, y, empresa)
	y += 40

	pdf.SetFont("Helvetica", "", 11)
	total := decimal.Zero

	for _, it := range items {
		precio := decimal.NewFromFloat(it.Precio)
		subtotal := it.Subtotal()

		pdf.Text(marginLeft, y, fmt.Sprintf("%dx  %s  -  %s", it.Cantidad, it.Codigo, it.Descripcion))
		y += 18

		pdf.Text(itemIndent, y, fmt.Sprintf("Precio: $%s   Subtotal: $%s",
			precio.StringFixed(2), subtotal.StringFixed(2)))
		y += 22

		total = total.Add(subtotal)

		// New page once the cursor nears the bottom margin; the body
		// font does not survive AddPage and must be re-applied.
		if y > pageHeight-bottomMargin {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 11)
			y = topStart
		}
	}

	y += 20
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(marginLeft, y, "TOTAL: $"+total.StringFixed(2))

	return pdf
}
