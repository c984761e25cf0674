// Package orders persists checkout orders and serves them to the back-office.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/database"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

var (
	ErrNotFound          = errors.New("orders: order not found")
	ErrNoItems           = errors.New("orders: an order needs at least one item")
	ErrInvalidTransition = errors.New("orders: status change not allowed")
)

const orderColumns = `o.id, o.user_id, o.first_name, o.last_name, o.email, o.phone_number, o.address, o.city, o.state,
	o.status, o.subtotal, o.tax, o.total, o.payment_reference, o.created_at, o.updated_at,
	p.id, p.first_name, p.last_name, p.email`

const orderFrom = ` FROM orders o LEFT JOIN profiles p ON p.id = o.user_id`

type Store struct {
	DB     *sql.DB
	Node   *snowflake.Node
	Logger *zap.Logger
	Now    func() time.Time
}

// NewStore returns an order store generating ids on snowflake node nodeID.
func NewStore(db *sql.DB, nodeID int64, logger *zap.Logger) (*Store, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{DB: db, Node: node, Logger: logger, Now: time.Now}, nil
}

// Create inserts the order and all of its items in one transaction, so a
// failure part way leaves nothing behind. The order is always created pending.
// Totals are derived from the item snapshots plus order.Tax.
func (s *Store) Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, error) {
	if len(items) == 0 {
		return models.Order{}, ErrNoItems
	}

	// 1. --- Snapshot & Totals ---
	now := s.Now()
	order.ID = s.Node.Generate().Int64()
	order.Status = models.OrderStatusPending
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Subtotal = 0
	order.Items = make([]models.OrderItem, len(items))
	for i, item := range items {
		item = models.NewOrderItem(item.ProductID, item.ProductName, item.ProductPrice, item.Quantity)
		item.ID = s.Node.Generate().Int64()
		item.OrderID = order.ID
		order.Items[i] = item
		order.Subtotal += item.Subtotal
	}
	order.Total = order.Subtotal + order.Tax

	// 2. --- Start Transaction ---
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, fmt.Errorf("begin order create: %w", err)
	}
	defer tx.Rollback()

	// 3. --- Insert Order Row ---
	var reference any
	if order.PaymentReference != "" {
		reference = order.PaymentReference
	}
	c := order.Customer
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, first_name, last_name, email, phone_number, address, city, state,
			status, subtotal, tax, total, payment_reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Address, c.City, c.State,
		string(order.Status), order.Subtotal, order.Tax, order.Total, reference, now, now,
	)
	if err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}

	// 4. --- Insert Item Rows ---
	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductPrice, item.Quantity, item.Subtotal,
		)
		if err != nil {
			return models.Order{}, fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}

	// 5. --- Commit ---
	if err := tx.Commit(); err != nil {
		return models.Order{}, fmt.Errorf("commit order: %w", err)
	}
	return order, nil
}

// List returns every order, newest first, with items and the buyer profile attached.
// Profiles come from the same query through a LEFT JOIN.
func (s *Store) List(ctx context.Context) ([]models.Order, error) {
	return s.query(ctx, "SELECT "+orderColumns+orderFrom+" ORDER BY o.created_at DESC")
}

// ListBetween returns orders created in [from, to).
func (s *Store) ListBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	return s.query(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.created_at >= ? AND o.created_at < ? ORDER BY o.created_at ASC", from, to)
}

func (s *Store) GetByID(ctx context.Context, id int64) (models.Order, error) {
	orders, err := s.query(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.id = ?", id)
	if err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, ErrNotFound
	}
	return orders[0], nil
}

// UpdateStatus moves an order to next and returns the status it had before.
func (s *Store) UpdateStatus(ctx context.Context, id int64, next models.OrderStatus) (models.OrderStatus, error) {
	if !next.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	var raw string
	if err := tx.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = ? FOR UPDATE", id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read order status: %w", err)
	}
	previous := models.OrderStatus(raw)
	if !previous.CanTransitionTo(next) {
		return previous, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, previous, next)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", string(next), s.Now(), id); err != nil {
		return previous, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return previous, fmt.Errorf("commit status update: %w", err)
	}
	return previous, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := s.attachItems(ctx, s.DB, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrder(rows *sql.Rows) (models.Order, error) {
	var (
		o                    models.Order
		userID, reference    sql.NullString
		profileID, profileFN sql.NullString
		profileLN, profileEM sql.NullString
		status               string
	)
	c := &o.Customer
	err := rows.Scan(&o.ID, &userID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.Address, &c.City, &c.State,
		&status, &o.Subtotal, &o.Tax, &o.Total, &reference, &o.CreatedAt, &o.UpdatedAt,
		&profileID, &profileFN, &profileLN, &profileEM)
	if err != nil {
		return o, err
	}

	o.Status = models.OrderStatus(status)
	o.PaymentReference = reference.String
	if userID.Valid {
		o.UserID = &userID.String
	}
	if profileID.Valid {
		o.Profile = &models.CustomerProfile{
			UserID:    profileID.String,
			FirstName: profileFN.String,
			LastName:  profileLN.String,
			Email:     profileEM.String,
		}
	}
	o.Items = []models.OrderItem{}
	return o, nil
}

// itemBatchSize bounds the IN list of one order_items query, well under
// MySQL's placeholder limit.
const itemBatchSize = 1000

// attachItems loads the items of every order, one query per itemBatchSize orders.
func (s *Store) attachItems(ctx context.Context, db database.DBTX, orders []models.Order) error {
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		index[o.ID] = i
	}

	for start := 0; start < len(orders); start += itemBatchSize {
		end := min(start+itemBatchSize, len(orders))
		ids := make([]any, 0, end-start)
		for _, o := range orders[start:end] {
			ids = append(ids, o.ID)
		}
		if err := s.loadItems(ctx, db, ids, orders, index); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadItems(ctx context.Context, db database.DBTX, ids []any, orders []models.Order, index map[int64]int) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id IN (`+placeholders(len(ids))+`)
		ORDER BY id ASC`, ids...)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductPrice, &item.Quantity, &item.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
