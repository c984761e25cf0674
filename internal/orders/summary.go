package orders

import (
	"context"
	"sort"
	"time"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// ProductSales is one row of a sales summary.
type ProductSales struct {
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Revenue     int64  `json:"revenue"`
}

// Summary aggregates the orders placed in a period. Canceled orders are
// counted in ByStatus but excluded from revenue and product totals.
type Summary struct {
	From        time.Time                  `json:"from"`
	To          time.Time                  `json:"to"`
	OrderCount  int                        `json:"orderCount"`
	Revenue     int64                      `json:"revenue"`
	ItemsSold   int                        `json:"itemsSold"`
	ByStatus    map[models.OrderStatus]int `json:"byStatus"`
	TopProducts []ProductSales             `json:"topProducts"`
}

// Summarize computes a Summary from already loaded orders.
func Summarize(from, to time.Time, orders []models.Order) Summary {
	sum := Summary{From: from, To: to, ByStatus: map[models.OrderStatus]int{}}
	byProduct := map[string]*ProductSales{}

	for _, o := range orders {
		sum.OrderCount++
		sum.ByStatus[o.Status]++
		if o.Status == models.OrderStatusCanceled {
			continue
		}
		sum.Revenue += o.Total
		for _, item := range o.Items {
			sum.ItemsSold += item.Quantity
			ps, ok := byProduct[item.ProductName]
			if !ok {
				ps = &ProductSales{ProductName: item.ProductName}
				byProduct[item.ProductName] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue += item.Subtotal
		}
	}

	for _, ps := range byProduct {
		sum.TopProducts = append(sum.TopProducts, *ps)
	}
	sort.Slice(sum.TopProducts, func(i, j int) bool {
		a, b := sum.TopProducts[i], sum.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductName < b.ProductName
	})
	if len(sum.TopProducts) > 5 {
		sum.TopProducts = sum.TopProducts[:5]
	}
	return sum
}

// DailySummary summarizes the calendar day containing day, in day's location.
func (s *Store) DailySummary(ctx context.Context, day time.Time) (Summary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	orders, err := s.ListBetween(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(from, to, orders), nil
}
