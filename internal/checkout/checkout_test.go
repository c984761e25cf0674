package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/hidaaya-golang/internal/cart"
	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/models"
	"github.com/01moynul/hidaaya-golang/internal/payment"
)

type memOrders struct {
	orders        []models.Order
	notifications []string
	failCreate    error
	nextID        int64
}

func (m *memOrders) Create(_ context.Context, order models.Order, items []models.OrderItem) (models.Order, error) {
	if m.failCreate != nil {
		return models.Order{}, m.failCreate
	}
	m.nextID++
	order.ID = m.nextID
	order.Status = models.OrderStatusPending
	order.CreatedAt = time.Date(2025, 4, 2, 14, 5, 0, 0, time.UTC)
	order.Items = nil
	order.Subtotal = 0
	for _, item := range items {
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
		order.Subtotal += item.Subtotal
	}
	order.Total = order.Subtotal + order.Tax
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *memOrders) RecordNotification(_ context.Context, _ int64, _ models.NotificationKind, status, _ string) error {
	m.notifications = append(m.notifications, status)
	return nil
}

type fakeNotifier struct {
	result   email.Result
	err      error
	requests []email.OrderEmailRequest
}

func (f *fakeNotifier) SendOrderEmail(_ context.Context, req email.OrderEmailRequest) (email.Result, error) {
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeNotifier) SendStatusEmail(context.Context, email.StatusEmailRequest) (email.Result, error) {
	return email.Result{}, nil
}

func (f *fakeNotifier) SendContactEmail(context.Context, email.ContactRequest) (email.Result, error) {
	return email.Result{}, nil
}

type fixedSettings models.StoreSettings

func (s fixedSettings) GetOrDefault(context.Context) models.StoreSettings { return models.StoreSettings(s) }

type countingVerifier struct {
	calls int
	err   error
}

func (v *countingVerifier) Verify(context.Context, string, int64) error {
	v.calls++
	return v.err
}

var sentBoth = email.Result{Deliveries: []email.Delivery{
	{Role: email.RoleOperator, Sent: true},
	{Role: email.RoleCustomer, Sent: true},
}}

func newOrchestrator(settings models.StoreSettings) (*Orchestrator, *memOrders, *fakeNotifier) {
	store := &memOrders{}
	notifier := &fakeNotifier{result: sentBoth}
	return &Orchestrator{
		Orders:            store,
		Settings:          fixedSettings(settings),
		Notifier:          notifier,
		PublicKey:         "pk_test",
		ReferencePrefix:   "HIDAAYA_",
		FallbackRecipient: "fallback@hidaaya.store",
	}, store, notifier
}

func scarfCart() *cart.Cart {
	c := &cart.Cart{}
	c.Add(cart.ProductSnapshot{ID: "static-shadow-jersey-scarf", Name: "Shadow Jersey Scarf", Price: 5200, Category: models.CategoryScarf}, 2)
	return c
}

func filledSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	for field, value := range map[string]string{
		"firstName":   "Aisha",
		"lastName":    "Bello",
		"email":       "aisha@example.com",
		"phoneNumber": "08030000000",
		"address":     "12 Marina Road",
		"city":        "Lagos",
		"state":       "Lagos",
	} {
		require.NoError(t, s.HandleChange(field, value))
	}
	return s
}

// paid submits the session and pins the reference the widget reports back.
func paid(t *testing.T, o *Orchestrator, sess *Session, c *cart.Cart) {
	t.Helper()
	_, err := o.Submit(context.Background(), sess, c)
	require.NoError(t, err)
	sess.Reference = "HIDAAYA_123"
}

func TestSubmitBlockedByEachMissingField(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "email", "address", "city", "state", "phoneNumber"} {
		t.Run(field, func(t *testing.T) {
			o, _, _ := newOrchestrator(models.DefaultStoreSettings())
			sess := filledSession(t)
			require.NoError(t, sess.HandleChange(field, "   "))

			cfg, err := o.Submit(context.Background(), sess, scarfCart())
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, MsgMissingFields, err.Error())
			assert.Equal(t, payment.WidgetConfig{}, cfg)
			assert.Equal(t, StateFilling, sess.State)
			assert.Empty(t, sess.Reference)
		})
	}
}

func TestSubmitBlockedByEmptyCart(t *testing.T) {
	o, _, _ := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)

	cfg, err := o.Submit(context.Background(), sess, &cart.Cart{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, MsgEmptyCart, err.Error())
	assert.Zero(t, cfg.Amount)
	assert.Equal(t, StateFilling, sess.State)
}

func TestSubmitBuildsWidgetConfigWithTax(t *testing.T) {
	settings := models.DefaultStoreSettings()
	settings.TaxRate = 7.5
	o, _, _ := newOrchestrator(settings)
	sess := filledSession(t)

	cfg, err := o.Submit(context.Background(), sess, scarfCart())
	require.NoError(t, err)

	assert.Equal(t, StatePaymentInitiated, sess.State)
	assert.Equal(t, int64(10400), sess.Subtotal)
	assert.Equal(t, int64(780), sess.Tax)
	assert.Equal(t, int64(11180), sess.Amount)
	assert.Equal(t, int64(1118000), cfg.Amount)
	assert.Equal(t, "pk_test", cfg.Key)
	assert.Equal(t, "NGN", cfg.Currency)
	assert.Equal(t, sess.Reference, cfg.Reference)
	assert.Regexp(t, `^HIDAAYA_\d+$`, cfg.Reference)
}

func TestSubmitRefusedWhenCardPaymentsDisabled(t *testing.T) {
	settings := models.DefaultStoreSettings()
	settings.PaymentMethods.Paystack = false
	o, _, _ := newOrchestrator(settings)
	sess := filledSession(t)

	_, err := o.Submit(context.Background(), sess, scarfCart())
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
	assert.Equal(t, StateFilling, sess.State)
}

func TestShippingFrozenWhilePaying(t *testing.T) {
	o, _, _ := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)
	paid(t, o, sess, scarfCart())

	assert.ErrorIs(t, sess.HandleChange("city", "Abuja"), ErrInvalidState)
	assert.Equal(t, "Lagos", sess.Form.City)
}

func TestCancelReturnsToFilling(t *testing.T) {
	o, store, _ := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)
	paid(t, o, sess, scarfCart())

	require.NoError(t, o.Cancel(sess))
	assert.Equal(t, StateFilling, sess.State)
	assert.Empty(t, sess.Reference)
	assert.NoError(t, sess.HandleChange("city", "Abuja"))
	assert.Empty(t, store.orders)

	assert.ErrorIs(t, o.Cancel(sess), ErrInvalidState)
}

func TestCompleteExampleScenario(t *testing.T) {
	o, store, notifier := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)
	c := scarfCart()
	require.Equal(t, int64(10400), c.Subtotal())
	paid(t, o, sess, c)

	done, err := o.Complete(context.Background(), sess, c, "HIDAAYA_123", nil)
	require.NoError(t, err)

	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.Equal(t, int64(10400), order.Total)
	assert.Equal(t, "HIDAAYA_123", order.PaymentReference)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(5200), order.Items[0].ProductPrice)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(10400), order.Items[0].Subtotal)

	assert.True(t, c.Empty())
	assert.Equal(t, StateOrderComplete, sess.State)
	assert.Equal(t, order.ID, sess.OrderID)
	assert.Equal(t, email.StatusSuccess, done.EmailStatus)

	require.Len(t, notifier.requests, 1)
	req := notifier.requests[0]
	assert.Equal(t, "fallback@hidaaya.store", req.RecipientEmail)
	assert.Equal(t, "1", req.OrderID)
	assert.Equal(t, "April 2, 2025 at 2:05 PM", req.OrderDate)
	assert.Equal(t, int64(10400), req.Subtotal)
	assert.Equal(t, []string{"success"}, store.notifications)
}

func TestCompleteUsesStoreContactEmail(t *testing.T) {
	settings := models.DefaultStoreSettings()
	settings.ContactEmail = "hello@hidaaya.store"
	o, _, notifier := newOrchestrator(settings)
	sess := filledSession(t)
	c := scarfCart()
	paid(t, o, sess, c)

	_, err := o.Complete(context.Background(), sess, c, "HIDAAYA_123", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello@hidaaya.store", notifier.requests[0].RecipientEmail)
}

func TestCompleteTwiceWithSameReferenceCreatesTwoOrders(t *testing.T) {
	o, store, _ := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)
	paid(t, o, sess, scarfCart())
	replay := *sess

	_, err := o.Complete(context.Background(), sess, scarfCart(), "HIDAAYA_123", nil)
	require.NoError(t, err)
	_, err = o.Complete(context.Background(), &replay, scarfCart(), "HIDAAYA_123", nil)
	require.NoError(t, err)

	require.Len(t, store.orders, 2)
	assert.Equal(t, store.orders[0].PaymentReference, store.orders[1].PaymentReference)
	assert.NotEqual(t, store.orders[0].ID, store.orders[1].ID)

	_, err = o.Complete(context.Background(), sess, scarfCart(), "HIDAAYA_123", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCompletePersistenceFailureKeepsCart(t *testing.T) {
	o, store, notifier := newOrchestrator(models.DefaultStoreSettings())
	store.failCreate = errors.New("connection reset")
	sess := filledSession(t)
	c := scarfCart()
	paid(t, o, sess, c)

	_, err := o.Complete(context.Background(), sess, c, "HIDAAYA_123", nil)
	assert.ErrorIs(t, err, ErrOrderNotSaved)
	assert.Equal(t, StatePaymentInitiated, sess.State)
	assert.False(t, c.Empty())
	assert.Empty(t, notifier.requests)
}

func TestCompleteEmailOutcomesNeverBlockOrder(t *testing.T) {
	cases := []struct {
		name   string
		result email.Result
		err    error
		want   email.Status
	}{
		{"customer send failed", email.Result{Deliveries: []email.Delivery{
			{Role: email.RoleOperator, Sent: true},
			{Role: email.RoleCustomer, Error: "bounced"},
		}}, nil, email.StatusLimited},
		{"both sends failed", email.Result{Deliveries: []email.Delivery{
			{Role: email.RoleOperator, Error: "down"},
			{Role: email.RoleCustomer, Error: "down"},
		}}, nil, email.StatusFailed},
		{"pipeline unreachable", email.Result{}, errors.New("dial tcp: connection refused"), email.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, store, notifier := newOrchestrator(models.DefaultStoreSettings())
			notifier.result, notifier.err = tc.result, tc.err
			sess := filledSession(t)
			c := scarfCart()
			paid(t, o, sess, c)

			done, err := o.Complete(context.Background(), sess, c, "HIDAAYA_123", nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, done.EmailStatus)
			assert.Len(t, store.orders, 1)
			assert.True(t, c.Empty())
			assert.Equal(t, []string{string(tc.want)}, store.notifications)
		})
	}
}

func TestCompleteRejectsUnverifiedPayment(t *testing.T) {
	o, store, _ := newOrchestrator(models.DefaultStoreSettings())
	verifier := &countingVerifier{err: payment.ErrNotVerified}
	o.Verifier = verifier
	sess := filledSession(t)
	c := scarfCart()
	paid(t, o, sess, c)

	_, err := o.Complete(context.Background(), sess, c, "HIDAAYA_123", nil)
	assert.ErrorIs(t, err, payment.ErrNotVerified)
	assert.Equal(t, 1, verifier.calls)
	assert.Empty(t, store.orders)
	assert.Equal(t, StatePaymentInitiated, sess.State)
}

func TestCompleteRejectsForeignReference(t *testing.T) {
	o, _, _ := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)
	paid(t, o, sess, scarfCart())

	_, err := o.Complete(context.Background(), sess, scarfCart(), "HIDAAYA_999", nil)
	assert.ErrorIs(t, err, ErrReferenceMismatch)
	_, err = o.Complete(context.Background(), sess, scarfCart(), "", nil)
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestRestartAfterCompletion(t *testing.T) {
	o, _, _ := newOrchestrator(models.DefaultStoreSettings())
	sess := filledSession(t)
	c := scarfCart()
	paid(t, o, sess, c)
	_, err := o.Complete(context.Background(), sess, c, "HIDAAYA_123", nil)
	require.NoError(t, err)

	sess.Restart()
	assert.Equal(t, StateFilling, sess.State)
	assert.Equal(t, "Aisha", sess.Form.FirstName)
	assert.Zero(t, sess.OrderID)
}

func TestHandleChangeUnknownField(t *testing.T) {
	assert.ErrorIs(t, NewSession().HandleChange("zip", "100001"), ErrUnknownField)
}
