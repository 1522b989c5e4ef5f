package reports

import (
	"io"
	"strconv"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

var orderHeaders = []string{
	"Order ID", "User ID", "Email", "Customer", "Phone", "Date", "Items",
	"Subtotal", "Shipping", "Total", "Payment Method", "Payment Status", "Status", "Delivered At",
}

func boldStyle() *xlsx.Style {
	style := xlsx.NewStyle()
	font := xlsx.DefaultFont()
	font.Bold = true
	style.Font = *font
	return style
}

// WriteOrdersXLSX writes one row per order followed by a summary block.
func WriteOrdersXLSX(w io.Writer, brand Brand, orders []models.Order, generatedAt time.Time) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	title := sheet.AddRow().AddCell()
	title.SetString(brand.Name + " - Orders")
	title.SetStyle(boldStyle())
	sheet.AddRow().AddCell().SetString("Generated: " + generatedAt.Format("2006-01-02 15:04"))
	sheet.AddRow()

	header := sheet.AddRow()
	for _, h := range orderHeaders {
		cell := header.AddCell()
		cell.SetString(h)
		cell.SetStyle(boldStyle())
	}

	revenue := decimal.Zero
	items := 0
	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(o.ID)
		row.AddCell().SetString(o.UserID)
		row.AddCell().SetString(o.UserEmail)
		row.AddCell().SetString(o.ShippingAddress.FullName)
		row.AddCell().SetString(o.ShippingAddress.Phone)
		row.AddCell().SetString(o.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetInt(o.ItemCount())
		row.AddCell().SetFloat(o.Subtotal.InexactFloat64())
		row.AddCell().SetFloat(o.Shipping.InexactFloat64())
		row.AddCell().SetFloat(o.Total.InexactFloat64())
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(string(o.PaymentStatus))
		row.AddCell().SetString(string(o.Status))
		delivered := ""
		if o.DeliveredAt != nil {
			delivered = o.DeliveredAt.Format("2006-01-02 15:04")
		}
		row.AddCell().SetString(delivered)

		items += o.ItemCount()
		if o.PaymentStatus == models.PaymentStatusCompleted {
			revenue = revenue.Add(o.Total)
		}
	}

	sheet.AddRow()
	summary := sheet.AddRow().AddCell()
	summary.SetString("Summary")
	summary.SetStyle(boldStyle())
	for _, kv := range [][2]string{
		{"Total Orders", strconv.Itoa(len(orders))},
		{"Total Items", strconv.Itoa(items)},
		{"Collected Revenue", revenue.StringFixed(2)},
	} {
		row := sheet.AddRow()
		row.AddCell().SetString(kv[0])
		row.AddCell().SetString(kv[1])
	}

	return file.Write(w)
}
