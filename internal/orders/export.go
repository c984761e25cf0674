package orders

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// exportRow is one CSV line of the back-office order export.
type exportRow struct {
	OrderID          string `csv:"order_id"`
	CreatedAt        string `csv:"created_at"`
	Status           string `csv:"status"`
	CustomerName     string `csv:"customer_name"`
	Email            string `csv:"email"`
	Phone            string `csv:"phone_number"`
	City             string `csv:"city"`
	State            string `csv:"state"`
	Items            string `csv:"items"`
	Subtotal         int64  `csv:"subtotal"`
	Tax              int64  `csv:"tax"`
	Total            int64  `csv:"total"`
	PaymentReference string `csv:"payment_reference"`
}

// WriteCSV writes orders as CSV with a header line.
func WriteCSV(w io.Writer, orders []models.Order) error {
	rows := make([]*exportRow, 0, len(orders))
	for _, o := range orders {
		lines := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			lines = append(lines, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
		}
		rows = append(rows, &exportRow{
			OrderID:          fmt.Sprint(o.ID),
			CreatedAt:        o.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			Status:           string(o.Status),
			CustomerName:     o.Customer.FullName(),
			Email:            o.Customer.Email,
			Phone:            o.Customer.PhoneNumber,
			City:             o.Customer.City,
			State:            o.Customer.State,
			Items:            strings.Join(lines, "; "),
			Subtotal:         o.Subtotal,
			Tax:              o.Tax,
			Total:            o.Total,
			PaymentReference: o.PaymentReference,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write orders csv: %w", err)
	}
	return nil
}
