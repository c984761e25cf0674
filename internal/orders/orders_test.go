package orders

import (
	"bytes"
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var (
	now      = time.Date(2025, 4, 2, 14, 5, 0, 0, time.UTC)
	customer = models.Customer{
		FirstName:   "Aisha",
		LastName:    "Bello",
		Email:       "aisha@example.com",
		PhoneNumber: "08030000000",
		Address:     "12 Marina Road",
		City:        "Lagos",
		State:       "Lagos",
	}
	orderCols = []string{"id", "user_id", "first_name", "last_name", "email", "phone_number", "address", "city", "state",
		"status", "subtotal", "tax", "total", "payment_reference", "created_at", "updated_at",
		"p_id", "p_first_name", "p_last_name", "p_email"}
	itemCols = []string{"id", "order_id", "product_id", "product_name", "product_price", "quantity", "subtotal"}
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s, err := NewStore(db, 1, nil)
	require.NoError(t, err)
	s.Now = func() time.Time { return now }
	return s, mock
}

func expectCreate(mock sqlmock.Sqlmock, reference string) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Aisha", "Bello", "aisha@example.com", "08030000000", "12 Marina Road", "Lagos", "Lagos",
			"pending", int64(10400), int64(0), int64(10400), reference, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "p-scarf", "Shadow Jersey Scarf", int64(5200), int64(2), int64(10400)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestCreatePersistsOrderAndItemsTogether(t *testing.T) {
	s, mock := newMockStore(t)
	expectCreate(mock, "HIDAAYA_123")

	order, err := s.Create(context.Background(),
		models.Order{Customer: customer, PaymentReference: "HIDAAYA_123"},
		[]models.OrderItem{models.NewOrderItem("p-scarf", "Shadow Jersey Scarf", 5200, 2)},
	)
	require.NoError(t, err)

	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(10400), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.Equal(t, int64(5200), order.Items[0].ProductPrice)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(10400), order.Items[0].Subtotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackWhenItemInsertFails(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := s.Create(context.Background(),
		models.Order{Customer: customer},
		[]models.OrderItem{models.NewOrderItem("p-scarf", "Shadow Jersey Scarf", 5200, 2)},
	)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSameReferenceTwiceMakesTwoOrders(t *testing.T) {
	s, mock := newMockStore(t)
	expectCreate(mock, "HIDAAYA_123")
	expectCreate(mock, "HIDAAYA_123")

	items := []models.OrderItem{models.NewOrderItem("p-scarf", "Shadow Jersey Scarf", 5200, 2)}
	first, err := s.Create(context.Background(), models.Order{Customer: customer, PaymentReference: "HIDAAYA_123"}, items)
	require.NoError(t, err)
	second, err := s.Create(context.Background(), models.Order{Customer: customer, PaymentReference: "HIDAAYA_123"}, items)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithoutItems(t *testing.T) {
	s, _ := newMockStore(t)
	_, err := s.Create(context.Background(), models.Order{Customer: customer}, nil)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestListAttachesProfilesAndItems(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN profiles p ON p.id = o.user_id")).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(int64(2), "u-1", "Aisha", "Bello", "aisha@example.com", "0803", "12 Marina", "Lagos", "Lagos",
				"processing", int64(10400), int64(0), int64(10400), "HIDAAYA_1", now, now,
				"u-1", "Aisha", "Bello", "aisha@account.com").
			AddRow(int64(1), nil, "Guest", "Buyer", "guest@example.com", "0804", "3 Allen", "Ikeja", "Lagos",
				"pending", int64(4500), int64(0), int64(4500), nil, now, now,
				nil, nil, nil, nil))
	mock.ExpectQuery("FROM order_items").
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(int64(10), int64(1), "p-chiffon", "Chiffon Scarf", int64(4500), 1, int64(4500)).
			AddRow(int64(11), int64(2), "p-scarf", "Shadow Jersey Scarf", int64(5200), 2, int64(10400)))

	orders, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	require.NotNil(t, orders[0].Profile)
	assert.Equal(t, "aisha@account.com", orders[0].Profile.Email)
	assert.Equal(t, "HIDAAYA_1", orders[0].PaymentReference)
	assert.Len(t, orders[0].Items, 1)

	assert.Nil(t, orders[1].Profile)
	assert.Nil(t, orders[1].UserID)
	assert.Equal(t, "", orders[1].PaymentReference)
	assert.Equal(t, "Chiffon Scarf", orders[1].Items[0].ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func anyArgs(n int) []driver.Value {
	out := make([]driver.Value, n)
	for i := range out {
		out[i] = sqlmock.AnyArg()
	}
	return out
}

func TestListLoadsItemsInBatches(t *testing.T) {
	s, mock := newMockStore(t)

	const total = 2*itemBatchSize + 500
	rows := sqlmock.NewRows(orderCols)
	for id := int64(total); id >= 1; id-- {
		rows.AddRow(id, nil, "Guest", "Buyer", "guest@example.com", "0804", "3 Allen", "Ikeja", "Lagos",
			"pending", int64(4500), int64(0), int64(4500), nil, now, now,
			nil, nil, nil, nil)
	}
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN profiles p ON p.id = o.user_id")).WillReturnRows(rows)

	// Orders come back newest first, so each batch starts at the highest id it holds.
	for _, batch := range []struct {
		size  int
		first int64
	}{{itemBatchSize, total}, {itemBatchSize, total - itemBatchSize}, {500, 500}} {
		mock.ExpectQuery("FROM order_items").
			WithArgs(anyArgs(batch.size)...).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow(batch.first*10, batch.first, "p-chiffon", "Chiffon Scarf", int64(4500), 1, int64(4500)))
	}

	orders, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, total)
	assert.Len(t, orders[0].Items, 1)
	assert.Len(t, orders[itemBatchSize].Items, 1)
	assert.Len(t, orders[2*itemBatchSize].Items, 1)
	assert.Empty(t, orders[1].Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = ?")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(orderCols))

	_, err := s.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusReturnsPrevious(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM orders WHERE id = ? FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?")).
		WithArgs("processing", now, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	previous, err := s.UpdateStatus(context.Background(), 5, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, previous)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("delivered"))
	mock.ExpectRollback()

	_, err := s.UpdateStatus(context.Background(), 5, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordNotification(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(int64(5), "confirmation", "limited", "customer: mailbox unavailable", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.RecordNotification(context.Background(), 5, models.NotificationConfirmation, "limited", "customer: mailbox unavailable")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummarizeSkipsCanceledRevenue(t *testing.T) {
	orders := []models.Order{
		{Status: models.OrderStatusPending, Total: 10400, Items: []models.OrderItem{
			models.NewOrderItem("p-scarf", "Shadow Jersey Scarf", 5200, 2),
		}},
		{Status: models.OrderStatusCanceled, Total: 9500, Items: []models.OrderItem{
			models.NewOrderItem("p-prayer", "Prayer Set", 9500, 1),
		}},
		{Status: models.OrderStatusDelivered, Total: 1500, Items: []models.OrderItem{
			models.NewOrderItem("p-pins", "Magnetic Pins", 1500, 1),
		}},
	}

	sum := Summarize(now, now.Add(24*time.Hour), orders)
	assert.Equal(t, 3, sum.OrderCount)
	assert.Equal(t, int64(11900), sum.Revenue)
	assert.Equal(t, 3, sum.ItemsSold)
	assert.Equal(t, 1, sum.ByStatus[models.OrderStatusCanceled])
	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "Shadow Jersey Scarf", sum.TopProducts[0].ProductName)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.Order{{
		ID:               42,
		Customer:         customer,
		Status:           models.OrderStatusShipped,
		Subtotal:         10400,
		Total:            10400,
		PaymentReference: "HIDAAYA_123",
		CreatedAt:        now,
		Items:            []models.OrderItem{models.NewOrderItem("p-scarf", "Shadow Jersey Scarf", 5200, 2)},
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "order_id,created_at,status"))
	assert.Contains(t, lines[1], "42,2025-04-02 14:05:00,shipped,Aisha Bello")
	assert.Contains(t, lines[1], "Shadow Jersey Scarf x2")
	assert.Contains(t, lines[1], "HIDAAYA_123")
}
