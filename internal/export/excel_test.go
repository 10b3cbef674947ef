package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "N/A", FormatAddress(nil))

	addr := &model.ShippingAddress{Line1: "12 MG Road", City: "Chennai", Pincode: "600001"}
	assert.Equal(t, "12 MG Road, Chennai, 600001", FormatAddress(addr))
}

func TestFormatItems(t *testing.T) {
	assert.Equal(t, "N/A", FormatItems(nil))

	items := []model.OrderItem{
		{ProductName: "Silk Saree", Quantity: 2, Price: 899, SelectedColor: "Red", SelectedSize: "M"},
		{ProductName: "Cotton Kurti", Quantity: 1, Price: 450},
	}
	got := FormatItems(items)
	assert.Equal(t, "Silk Saree (x2) [Red M] - ₹899\nCotton Kurti (x1) - ₹450", got)
}

func TestFormatItems_ColorOnly(t *testing.T) {
	items := []model.OrderItem{
		{ProductName: "Dupatta", Quantity: 3, Price: 199.5, SelectedColor: "Green"},
	}
	assert.Equal(t, "Dupatta (x3) [Green] - ₹199.5", FormatItems(items))
}

func TestOrderExporter_Workbook(t *testing.T) {
	paidAt := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	created := time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)

	orders := []model.Order{
		{
			ID:            uuid.New(),
			Status:        model.OrderStatusConfirmed,
			PaymentStatus: model.PaymentStatusSuccess,
			PaymentMethod: "upi",
			TotalPrice:    1798,
			PaymentInfo:   &model.PaymentInfo{TransactionID: "txn_1", Method: "upi", PaidAt: &paidAt},
			ShippingAddress: &model.ShippingAddress{
				Line1: "12 MG Road", City: "Chennai", Pincode: "600001",
			},
			Items: []model.OrderItem{
				{ProductName: "Silk Saree", Quantity: 2, Price: 899, SelectedColor: "Red"},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
		{
			ID:            uuid.New(),
			Status:        model.OrderStatusPending,
			PaymentStatus: model.PaymentStatusPending,
			PaymentMethod: "cod",
			TotalPrice:    450,
			CreatedAt:     created,
			UpdatedAt:     created,
		},
	}

	exporter := NewOrderExporter(zerolog.Nop())
	data, err := exporter.Workbook(orders)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, "Order Items", rows[0][9])

	assert.Equal(t, orders[0].ID.String(), rows[1][0])
	assert.Equal(t, "confirmed", rows[1][1])
	assert.Equal(t, "success", rows[1][2])
	assert.Equal(t, "2026-03-14 10:30:00", rows[1][5])
	assert.Equal(t, "12 MG Road, Chennai, 600001", rows[1][8])
	assert.Equal(t, "Silk Saree (x2) [Red] - ₹899", rows[1][9])

	// Pending order without payment or address falls back to N/A.
	assert.Equal(t, "N/A", rows[2][5])
	assert.Equal(t, "N/A", rows[2][8])
	assert.Equal(t, "N/A", rows[2][9])
}

func TestOrderExporter_Workbook_Empty(t *testing.T) {
	exporter := NewOrderExporter(zerolog.Nop())
	data, err := exporter.Workbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
}
