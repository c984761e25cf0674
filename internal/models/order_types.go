package models

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
// Every consumer switches over the full set; adding a status means
// touching each switch below.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// Label is the customer-facing wording used in emails and receipts.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCanceled:
		return "Canceled"
	}
	return "Unknown"
}

// Badge is the colour token the back-office renders for the status.
func (s OrderStatus) Badge() string {
	switch s {
	case OrderStatusPending:
		return "yellow"
	case OrderStatusProcessing:
		return "blue"
	case OrderStatusShipped:
		return "purple"
	case OrderStatusDelivered:
		return "green"
	case OrderStatusCanceled:
		return "red"
	}
	return "gray"
}

// Terminal reports whether no further status change is allowed.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCanceled:
		return true
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped:
		return false
	}
	return true
}

// CanTransitionTo reports whether an admin may move an order from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() || s == next {
		return false
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCanceled
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCanceled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCanceled:
		return false
	}
	return false
}

// Customer is the contact and shipping snapshot captured at checkout.
type Customer struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Address     string `json:"address" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// CustomerProfile is the account attached to an order, when the buyer was signed in.
type CustomerProfile struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Order is the model for the 'orders' table.
type Order struct {
	ID               int64            `json:"id,string" db:"id"`
	UserID           *string          `json:"userId,omitempty" db:"user_id"`
	Customer         Customer         `json:"customer"`
	Status           OrderStatus      `json:"status" db:"status"`
	Subtotal         int64            `json:"subtotal" db:"subtotal"`
	Tax              int64            `json:"tax" db:"tax"`
	Total            int64            `json:"total" db:"total"`
	PaymentReference string           `json:"paymentReference,omitempty" db:"payment_reference"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
	Items            []OrderItem      `json:"items" db:"-"`
	Profile          *CustomerProfile `json:"profile,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table.
// ProductName and ProductPrice are copied at purchase time and never follow the live product.
type OrderItem struct {
	ID           int64  `json:"id,string" db:"id"`
	OrderID      int64  `json:"orderId,string" db:"order_id"`
	ProductID    string `json:"productId" db:"product_id"`
	ProductName  string `json:"productName" db:"product_name"`
	ProductPrice int64  `json:"productPrice" db:"product_price"`
	Quantity     int    `json:"quantity" db:"quantity"`
	Subtotal     int64  `json:"subtotal" db:"subtotal"`
}

// NewOrderItem snapshots a product line for an order.
func NewOrderItem(productID, productName string, price int64, quantity int) OrderItem {
	return OrderItem{
		ProductID:    productID,
		ProductName:  productName,
		ProductPrice: price,
		Quantity:     quantity,
		Subtotal:     price * int64(quantity),
	}
}
