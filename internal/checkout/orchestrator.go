package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/cart"
	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/format"
	"github.com/01moynul/hidaaya-golang/internal/models"
	"github.com/01moynul/hidaaya-golang/internal/payment"
)

var (
	ErrPaymentUnavailable = errors.New("checkout: card payments are not enabled")
	ErrMissingReference   = errors.New("checkout: payment reference is required")
	ErrReferenceMismatch  = errors.New("checkout: payment reference does not match this checkout")
	ErrOrderNotSaved      = errors.New("checkout: payment received but the order could not be saved")
)

// OrderStore persists finalized orders and their notification log.
type OrderStore interface {
	Create(ctx context.Context, order models.Order, items []models.OrderItem) (models.Order, error)
	RecordNotification(ctx context.Context, orderID int64, kind models.NotificationKind, status, detail string) error
}

// SettingsReader supplies tax rate, currency, payment methods and the operator address.
type SettingsReader interface {
	GetOrDefault(ctx context.Context) models.StoreSettings
}

// Orchestrator drives Session through payment and finalization.
type Orchestrator struct {
	Orders            OrderStore
	Settings          SettingsReader
	Notifier          email.Notifier
	Verifier          payment.Verifier
	PublicKey         string
	ReferencePrefix   string
	FallbackRecipient string
	Logger            *zap.Logger
}

// Completion is what the storefront shows once an order is placed.
type Completion struct {
	Order       models.Order `json:"order"`
	EmailStatus email.Status `json:"emailStatus"`
	Message     string       `json:"message"`
}

// Submit validates the session and, on success, returns the payment widget
// configuration. Nothing is returned for the widget unless validation passed.
func (o *Orchestrator) Submit(ctx context.Context, sess *Session, c *cart.Cart) (payment.WidgetConfig, error) {
	settings := o.Settings.GetOrDefault(ctx)
	if !settings.PaymentMethods.Paystack {
		return payment.WidgetConfig{}, ErrPaymentUnavailable
	}

	if err := sess.HandleSubmit(c); err != nil {
		return payment.WidgetConfig{}, err
	}

	reference, err := payment.NewReference(o.ReferencePrefix)
	if err != nil {
		sess.State = StateFilling
		sess.clearPayment()
		return payment.WidgetConfig{}, err
	}

	sess.Reference = reference
	sess.Currency = settings.Currency
	sess.Tax = payment.Tax(sess.Subtotal, settings.TaxRate)
	sess.Amount = sess.Subtotal + sess.Tax

	o.logger().Info("payment initiated",
		zap.String("reference", reference),
		zap.Int64("amount", sess.Amount),
		zap.String("currency", sess.Currency),
	)
	return payment.NewWidgetConfig(o.PublicKey, sess.Form, sess.Amount, sess.Currency, reference), nil
}

// Cancel handles the widget being closed without paying.
func (o *Orchestrator) Cancel(sess *Session) error {
	reference := sess.Reference
	if err := sess.Cancel(); err != nil {
		return err
	}
	o.logger().Info("payment cancelled", zap.String("reference", reference))
	return nil
}

// Complete finalizes a paid checkout: persist the order, notify operator and
// customer, then clear the cart. A failure to persist leaves the session in
// payment_initiated and the cart untouched; email problems never fail the call.
//
// Completing the same reference from two copies of a session creates two orders.
func (o *Orchestrator) Complete(ctx context.Context, sess *Session, c *cart.Cart, reference string, userID *string) (Completion, error) {
	log := o.logger().With(zap.String("reference", reference))

	// 1. --- Guard State ---
	if sess.State != StatePaymentInitiated {
		return Completion{}, fmt.Errorf("%w: no payment in progress", ErrInvalidState)
	}
	if reference == "" {
		return Completion{}, ErrMissingReference
	}
	if reference != sess.Reference {
		return Completion{}, ErrReferenceMismatch
	}

	// 2. --- Verify With Gateway ---
	if o.Verifier != nil {
		if err := o.Verifier.Verify(ctx, reference, payment.MinorUnits(sess.Amount)); err != nil {
			log.Warn("payment verification failed", zap.Error(err))
			return Completion{}, err
		}
	}

	// 3. --- Persist Order ---
	order, err := o.Orders.Create(ctx, models.Order{
		UserID:           userID,
		Customer:         sess.Form,
		Tax:              sess.Tax,
		PaymentReference: reference,
	}, sess.Items)
	if err != nil {
		log.Error("order persistence failed after payment", zap.Int64("amount", sess.Amount), zap.Error(err))
		return Completion{}, fmt.Errorf("%w: %v", ErrOrderNotSaved, err)
	}

	// 4. --- Notify ---
	status := o.notify(ctx, log, order)

	// 5. --- Complete ---
	sess.State = StateOrderComplete
	sess.OrderID = order.ID
	sess.EmailStatus = status
	if c != nil {
		c.Clear()
	}

	log.Info("order placed", zap.Int64("order_id", order.ID), zap.String("email_status", string(status)))
	return Completion{Order: order, EmailStatus: status, Message: completionMessage(status)}, nil
}

// notify runs the order email pipeline and records its outcome. It never fails.
func (o *Orchestrator) notify(ctx context.Context, log *zap.Logger, order models.Order) email.Status {
	if o.Notifier == nil {
		return email.StatusFailed
	}

	settings := o.Settings.GetOrDefault(ctx)
	recipient := settings.ContactEmail
	if recipient == "" {
		recipient = o.FallbackRecipient
	}

	res, err := o.Notifier.SendOrderEmail(ctx, email.OrderEmailRequest{
		Customer:         order.Customer,
		Items:            email.LineItemsFrom(order.Items),
		Subtotal:         order.Subtotal,
		RecipientEmail:   recipient,
		OrderID:          strconv.FormatInt(order.ID, 10),
		OrderDate:        format.OrderDate(order.CreatedAt),
		PaymentReference: order.PaymentReference,
	})
	status := email.Classify(res, err)

	detail := res.Failures()
	if err != nil {
		detail = err.Error()
		log.Error("order email pipeline failed", zap.Int64("order_id", order.ID), zap.Error(err))
	} else if status != email.StatusSuccess {
		log.Warn("order email partially failed", zap.Int64("order_id", order.ID), zap.String("status", string(status)), zap.String("detail", detail))
	}

	// The request context may already be gone; the log row should still land.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.Orders.RecordNotification(recordCtx, order.ID, models.NotificationConfirmation, string(status), detail); err != nil {
		log.Warn("could not record notification", zap.Int64("order_id", order.ID), zap.Error(err))
	}
	return status
}

func completionMessage(status email.Status) string {
	switch status {
	case email.StatusSuccess:
		return "Order placed successfully! A confirmation email is on its way."
	case email.StatusLimited:
		return "Order placed successfully! We couldn't send your confirmation email, but your order is saved."
	case email.StatusFailed:
		return "Order placed successfully, but email notifications could not be sent."
	}
	return "Order placed successfully!"
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
