package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func sampleOrder(id string, status models.PaymentStatus) models.Order {
	created := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	return models.Order{
		ID:        id,
		UserID:    "u1",
		UserEmail: "asha@example.com",
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Linen Shirt", Price: decimal.NewFromInt(500), Quantity: 2, Size: "M", Color: "White"},
		},
		Subtotal:      decimal.NewFromInt(1000),
		Shipping:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         decimal.NewFromInt(1000),
		Status:        models.OrderStatusPlaced,
		PaymentMethod: models.PaymentMethodRazorpay,
		PaymentStatus: status,
		ShippingAddress: models.ShippingAddress{
			FullName: "Asha Rao", Phone: "9876543210", AddressLine1: "12 MG Road",
			City: "Bengaluru", State: "Karnataka", Pincode: "560001",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestWriteInvoice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoice(&buf, DefaultBrand(""), sampleOrder("o1", models.PaymentStatusCompleted)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWriteOrdersXLSX(t *testing.T) {
	orders := []models.Order{
		sampleOrder("o1", models.PaymentStatusCompleted),
		sampleOrder("o2", models.PaymentStatusPending),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersXLSX(&buf, DefaultBrand("Clomora"), orders, time.Now()))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows

	assert.Equal(t, "Clomora - Orders", rows[0].Cells[0].Value)
	assert.Equal(t, "Order ID", rows[3].Cells[0].Value)
	assert.Equal(t, "o1", rows[4].Cells[0].Value)
	assert.Equal(t, "o2", rows[5].Cells[0].Value)

	last := rows[len(rows)-1]
	assert.Equal(t, "Collected Revenue", last.Cells[0].Value)
	assert.Equal(t, "1000.00", last.Cells[1].Value, "pending payments are not revenue")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "Rs. 1098.50", money(decimal.RequireFromString("1098.5")))
}
