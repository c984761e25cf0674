// Package receipt renders a printable PDF receipt for a placed order.
package receipt

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/01moynul/hidaaya-golang/internal/format"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

// Write renders order as an A4 PDF into w. The core fonts only cover Latin-1,
// so amounts use the currency code rather than its symbol.
func Write(w io.Writer, order models.Order, store models.StoreSettings) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s receipt #%d", store.StoreName, order.ID), true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(store.StoreName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{store.Address, store.ContactEmail, store.ContactPhone} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Receipt", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	meta := [][2]string{
		{"Order", "#" + strconv.FormatInt(order.ID, 10)},
		{"Date", format.OrderDate(order.CreatedAt)},
		{"Status", order.Status.Label()},
	}
	if order.PaymentReference != "" {
		meta = append(meta, [2]string{"Payment reference", order.PaymentReference})
	}
	for _, m := range meta {
		pdf.CellFormat(40, 6, m[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(m[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	c := order.Customer
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Billed to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s\n%s\n%s\n%s, %s, %s", c.FullName(), c.Email, c.PhoneNumber, c.Address, c.City, c.State)), "", "L", false)
	pdf.Ln(4)

	// Items
	widths := []float64{88, 18, 34, 34}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 235, 229)
	for i, h := range []string{"Item", "Qty", "Price", "Subtotal"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(widths[0], 7, tr(item.ProductName), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, format.PlainCurrency(item.ProductPrice, store.Currency), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, format.PlainCurrency(item.Subtotal, store.Currency), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	totals := [][2]string{{"Subtotal", format.PlainCurrency(order.Subtotal, store.Currency)}}
	if order.Tax > 0 {
		totals = append(totals, [2]string{"Tax", format.PlainCurrency(order.Tax, store.Currency)})
	}
	totals = append(totals, [2]string{"Total", format.PlainCurrency(order.Total, store.Currency)})
	for i, t := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, t[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, t[1], "", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, tr("Thank you for shopping with "+store.StoreName+"."), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}
