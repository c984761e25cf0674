// Package checkout runs a visitor's checkout: the shipping form, the hand-off
// to the payment widget, and turning a successful payment into an order.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/01moynul/hidaaya-golang/internal/cart"
	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/models"
)

// User-facing messages for the two ways a submit is refused.
const (
	MsgMissingFields = "Please fill in all required fields"
	MsgEmptyCart     = "Your cart is empty"
	MsgCancelled     = "Payment cancelled"
)

var (
	ErrValidation   = errors.New(MsgMissingFields)
	ErrEmptyCart    = errors.New(MsgEmptyCart)
	ErrInvalidState = errors.New("checkout: action not allowed in the current state")
	ErrUnknownField = errors.New("checkout: unknown shipping field")
)

// State is where a checkout session is in its lifecycle.
type State string

const (
	StateFilling          State = "filling"
	StatePaymentInitiated State = "payment_initiated"
	StateOrderComplete    State = "order_complete"
)

// Session is one visitor's checkout. It is plain data so it can be stored with the
// visitor's session between requests.
type Session struct {
	State     State              `json:"state"`
	Form      models.Customer    `json:"form"`
	Reference string             `json:"reference,omitempty"`
	Items     []models.OrderItem `json:"items,omitempty"`
	Subtotal  int64              `json:"subtotal,omitempty"`
	Tax       int64              `json:"tax,omitempty"`
	Amount    int64              `json:"amount,omitempty"`
	Currency  string             `json:"currency,omitempty"`

	OrderID     int64        `json:"orderId,string,omitempty"`
	EmailStatus email.Status `json:"emailStatus,omitempty"`
}

// NewSession starts an empty checkout in the filling state.
func NewSession() *Session {
	return &Session{State: StateFilling}
}

var formValidator = validator.New()

// HandleChange sets one shipping field. Fields are named as in the JSON form
// (firstName, lastName, email, phoneNumber, address, city, state).
func (s *Session) HandleChange(field, value string) error {
	if s.State != StateFilling {
		return fmt.Errorf("%w: cannot edit shipping details while %s", ErrInvalidState, s.State)
	}

	value = strings.TrimSpace(value)
	switch field {
	case "firstName":
		s.Form.FirstName = value
	case "lastName":
		s.Form.LastName = value
	case "email":
		s.Form.Email = value
	case "phoneNumber":
		s.Form.PhoneNumber = value
	case "address":
		s.Form.Address = value
	case "city":
		s.Form.City = value
	case "state":
		s.Form.State = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// HandleSubmit validates the form and the cart and, when both pass, freezes the
// form and snapshots the cart lines that will be charged. On failure the
// session stays in filling.
func (s *Session) HandleSubmit(c *cart.Cart) error {
	if s.State != StateFilling {
		return fmt.Errorf("%w: cannot submit while %s", ErrInvalidState, s.State)
	}
	if err := formValidator.Struct(s.Form); err != nil {
		return ErrValidation
	}
	if c == nil || c.Empty() {
		return ErrEmptyCart
	}

	s.Items = c.OrderItems()
	s.Subtotal = c.Subtotal()
	s.State = StatePaymentInitiated
	return nil
}

// Cancel abandons the payment and re-opens the form.
func (s *Session) Cancel() error {
	if s.State != StatePaymentInitiated {
		return fmt.Errorf("%w: no payment in progress", ErrInvalidState)
	}
	s.State = StateFilling
	s.clearPayment()
	return nil
}

// Restart opens a new checkout after a completed one, keeping the shipping form.
// It is a no-op in any other state.
func (s *Session) Restart() {
	if s.State != StateOrderComplete {
		return
	}
	form := s.Form
	*s = Session{State: StateFilling, Form: form}
}

// Editable reports whether the shipping fields may be changed.
func (s *Session) Editable() bool {
	return s.State == StateFilling
}

func (s *Session) clearPayment() {
	s.Reference = ""
	s.Items = nil
	s.Subtotal = 0
	s.Tax = 0
	s.Amount = 0
	s.Currency = ""
}
