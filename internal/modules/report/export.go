package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/georgemunganga/cafepos/internal/modules/inventory"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// table is the format-neutral shape every export is built from.
type table struct {
	title   string
	period  string
	header  []string
	rows    [][]string
	summary []string
}

const day = "2006-01-02"

func periodOf(rg web.Range) string {
	// To is exclusive.
	return fmt.Sprintf("%s to %s", rg.From.Format(day), rg.To.Add(-1).Format(day))
}

func salesTable(orders []*OrderRow, sum *SalesSummary, rg web.Range) *table {
	t := &table{
		title:  "Sales Report",
		period: periodOf(rg),
		header: []string{"Order", "Date", "Status", "Type", "Channel", "Payment", "Subtotal", "Discount", "Tax", "Total"},
	}
	for _, o := range orders {
		t.rows = append(t.rows, []string{
			o.Number, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, o.OrderType, o.Channel, o.PaymentStatus,
			o.Subtotal.StringFixed(2), o.Discount.StringFixed(2), o.Tax.StringFixed(2), o.Total.StringFixed(2),
		})
	}
	t.summary = []string{
		fmt.Sprintf("Orders: %d", sum.OrderCount),
		fmt.Sprintf("Net sales: %s", sum.Net.StringFixed(2)),
		fmt.Sprintf("Tax: %s", sum.Tax.StringFixed(2)),
		fmt.Sprintf("Total: %s", sum.Total.StringFixed(2)),
		fmt.Sprintf("Average ticket: %s", sum.AverageTicket.StringFixed(2)),
	}
	for _, m := range sum.ByMethod {
		t.summary = append(t.summary, fmt.Sprintf("%s: %s (%d)", m.Method, m.Amount.StringFixed(2), m.Count))
	}
	return t
}

func productsTable(rows []*ProductRow) *table {
	t := &table{
		title:  "Products",
		header: []string{"Name", "SKU", "Category", "Price", "Cost", "Stock", "Unit", "Active"},
	}
	for _, p := range rows {
		t.rows = append(t.rows, []string{
			p.Name, p.SKU, p.Category, p.Price.StringFixed(2), p.Cost.StringFixed(2),
			p.Stock.String(), p.Unit, strconv.FormatBool(p.Active),
		})
	}
	return t
}

func inventoryTable(v *Valuation) *table {
	t := &table{
		title:  "Inventory Valuation",
		header: []string{"Type", "Name", "Quantity", "Unit", "Unit cost", "Value"},
	}
	for _, l := range v.Lines {
		t.rows = append(t.rows, []string{
			l.ItemType, l.Name, l.Quantity.String(), l.Unit, l.UnitCost.StringFixed(2), l.Value.StringFixed(2),
		})
	}
	t.summary = []string{fmt.Sprintf("Total value: %s", v.Total.StringFixed(2))}
	return t
}

func customersTable(rows []*CustomerRow) *table {
	t := &table{
		title:  "Customers",
		header: []string{"Name", "Email", "Phone", "Loyalty points", "Total spent", "Since"},
	}
	for _, c := range rows {
		t.rows = append(t.rows, []string{
			c.Name, c.Email, c.Phone, strconv.FormatInt(c.LoyaltyPoints, 10), c.TotalSpent.StringFixed(2),
			c.CreatedAt.Format(day),
		})
	}
	return t
}

func lowStockTable(items []*inventory.LowStockItem) *table {
	t := &table{
		title:  "Low Stock",
		header: []string{"Type", "Name", "In stock", "Threshold", "Unit"},
	}
	for _, it := range items {
		t.rows = append(t.rows, []string{
			it.ItemType, it.Name, it.StockQuantity.String(), it.LowStockThreshold.String(), it.Unit,
		})
	}
	t.summary = []string{fmt.Sprintf("Items needing restock: %d", len(items))}
	return t
}

func (t *table) csv() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *table) pdf() ([]byte, error) {
	orientation := "P"
	if len(t.header) > 6 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, t.title, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 11)
	if t.period != "" {
		pdf.CellFormat(0, 8, "Period: "+t.period, "", 1, "L", false, 0, "")
	}
	for _, line := range t.summary {
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(t.header))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range t.header {
		pdf.CellFormat(colW, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.rows {
		for _, cell := range row {
			pdf.CellFormat(colW, 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(t.rows) == 0 {
		pdf.CellFormat(0, 8, "No data for this report.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
