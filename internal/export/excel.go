// Package export renders admin order listings as spreadsheet downloads.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName  = "Orders"
	timeLayout = "2006-01-02 15:04:05"
)

var headers = []string{
	"Order ID",
	"Status",
	"Payment Status",
	"Payment Method",
	"Total Price",
	"Paid At",
	"Created At",
	"Updated At",
	"Shipping Address",
	"Order Items",
}

// OrderExporter writes order listings into xlsx workbooks.
type OrderExporter struct {
	logger zerolog.Logger
}

// NewOrderExporter creates an exporter.
func NewOrderExporter(logger zerolog.Logger) *OrderExporter {
	return &OrderExporter{
		logger: logger.With().Str("component", "order-exporter").Logger(),
	}
}

// Workbook renders the orders into a single-sheet xlsx workbook and
// returns the serialized bytes.
func (e *OrderExporter) Workbook(orders []model.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", header, err)
		}
	}

	for i, order := range orders {
		row := i + 2
		values := []any{
			order.ID.String(),
			order.Status,
			order.PaymentStatus,
			order.PaymentMethod,
			order.TotalPrice,
			formatPaidAt(order.PaymentInfo),
			order.CreatedAt.Format(timeLayout),
			order.UpdatedAt.Format(timeLayout),
			FormatAddress(order.ShippingAddress),
			FormatItems(order.Items),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Info().Int("orders", len(orders)).Int("bytes", buf.Len()).Msg("order export generated")
	return buf.Bytes(), nil
}

// FormatAddress flattens a shipping address into a single cell value.
func FormatAddress(addr *model.ShippingAddress) string {
	if addr == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s, %s, %s", addr.Line1, addr.City, addr.Pincode)
}

// FormatItems renders line items one per line, e.g.
// "Silk Saree (x2) [Red M] - ₹899".
func FormatItems(items []model.OrderItem) string {
	if len(items) == 0 {
		return "N/A"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		fmt.Fprintf(&b, "%s (x%d)", item.ProductName, item.Quantity)

		var attrs []string
		if item.SelectedColor != "" {
			attrs = append(attrs, item.SelectedColor)
		}
		if item.SelectedSize != "" {
			attrs = append(attrs, item.SelectedSize)
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(attrs, " "))
		}

		fmt.Fprintf(&b, " - ₹%g", item.Price)
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func formatPaidAt(info *model.PaymentInfo) string {
	if info == nil || info.PaidAt == nil {
		return "N/A"
	}
	return info.PaidAt.Format(timeLayout)
}
