// Package reports renders order documents: the customer PDF invoice and the
// admin spreadsheet export.
package reports

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/utils"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Brand is the seller block printed on documents.
type Brand struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

// DefaultBrand is used when no brand details are configured.
func DefaultBrand(name string) Brand {
	if name == "" {
		name = "Clomora"
	}
	return Brand{Name: name, Email: "support@clomora.in"}
}

// money formats major units for the core PDF fonts, which lack the rupee sign.
func money(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

// WriteInvoice renders the order as a one-page A4 PDF invoice.
func WriteInvoice(w io.Writer, brand Brand, order models.Order) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, tr(brand.Name))
	pdf.SetFont("Arial", "", 11)
	pdf.Ln(8)
	if brand.Address != "" {
		pdf.Cell(100, 7, tr(brand.Address))
		pdf.Ln(6)
	}
	contact := "Email: " + brand.Email
	if brand.Phone != "" {
		contact += " | Phone: " + brand.Phone
	}
	pdf.Cell(100, 7, contact)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Order ID: "+order.ID)
	pdf.Ln(6)
	pdf.Cell(95, 7, "Order Date: "+order.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Cell(95, 7, "Status: "+utils.Title(string(order.Status)))
	pdf.Ln(6)
	pdf.Cell(95, 7, "Payment: "+paymentLabel(order.PaymentMethod))
	pdf.Cell(95, 7, "Payment Status: "+utils.Title(string(order.PaymentStatus)))
	pdf.Ln(6)
	if order.RazorpayPaymentID != "" {
		pdf.Cell(0, 7, "Payment ID: "+order.RazorpayPaymentID)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	addr := order.ShippingAddress
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(100, 8, "Ship To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	lines := []string{addr.FullName, addr.AddressLine1, addr.AddressLine2, addr.Landmark,
		fmt.Sprintf("%s, %s - %s", addr.City, addr.State, addr.Pincode), "Phone: " + addr.Phone}
	for _, l := range lines {
		if l == "" {
			continue
		}
		pdf.Cell(0, 6, tr(l))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(70, 8, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Variant", "1", 0, "C", false, 0, "")
	pdf.CellFormat(15, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 11)
	for _, item := range order.Items {
		variant := item.Size
		if item.Color != "" {
			if variant != "" {
				variant += " / "
			}
			variant += item.Color
		}
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		pdf.CellFormat(70, 8, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, tr(variant), "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, money(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, money(lineTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	summary := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal:", order.Subtotal},
		{"Shipping:", order.Shipping},
		{"Tax:", order.Tax},
	}
	for _, s := range summary {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(150, 8, s.label, "", 0, "R", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(35, 8, money(s.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(150, 10, "Grand Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, money(order.Total), "", 1, "R", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 11)
	pdf.Cell(0, 10, tr("Thank you for shopping with "+brand.Name+"!"))

	return pdf.Output(w)
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentMethodCOD:
		return "Cash on Delivery"
	case models.PaymentMethodRazorpay:
		return "Razorpay"
	}
	return string(m)
}
