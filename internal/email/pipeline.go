package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/01moynul/hidaaya-golang/internal/format"
	"github.com/01moynul/hidaaya-golang/internal/models"
	"github.com/01moynul/hidaaya-golang/internal/orders"
)

// Status is the overall outcome of a notification as reported to shoppers and admins.
type Status string

const (
	StatusSuccess Status = "success"
	StatusLimited Status = "limited"
	StatusFailed  Status = "failed"
)

// Recipient roles.
const (
	RoleOperator = "operator"
	RoleCustomer = "customer"
)

// LineItem is an order line as carried in notification payloads.
type LineItem struct {
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineItemsFrom converts persisted order items into payload lines.
func LineItemsFrom(items []models.OrderItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = LineItem{ProductID: item.ProductID, Name: item.ProductName, Price: item.ProductPrice, Quantity: item.Quantity}
	}
	return out
}

// OrderEmailRequest is the checkout confirmation payload.
type OrderEmailRequest struct {
	Customer         models.Customer `json:"customer"`
	Items            []LineItem      `json:"items" binding:"required,min=1"`
	Subtotal         int64           `json:"subtotal"`
	RecipientEmail   string          `json:"recipientEmail" binding:"required,email"`
	OrderID          string          `json:"orderId" binding:"required"`
	OrderDate        string          `json:"orderDate"`
	PaymentReference string          `json:"paymentReference,omitempty"`
}

// StatusEmailRequest is the payload sent when an admin changes an order's status.
type StatusEmailRequest struct {
	OrderID          string                  `json:"orderId" binding:"required"`
	CustomerName     string                  `json:"customerName"`
	CustomerEmail    string                  `json:"customerEmail" binding:"required,email"`
	Status           models.OrderStatus      `json:"status" binding:"required"`
	Items            []LineItem              `json:"items"`
	Total            int64                   `json:"total"`
	NotificationType models.NotificationKind `json:"notificationType"`
	PreviousStatus   models.OrderStatus      `json:"previousStatus,omitempty"`
}

// ContactRequest is a storefront contact form submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// Delivery is the outcome of one send.
type Delivery struct {
	Role      string `json:"role"`
	To        string `json:"to"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result collects the deliveries of one notification.
type Result struct {
	Deliveries []Delivery `json:"deliveries"`
}

// Delivery returns the delivery for role, if there was one.
func (r Result) Delivery(role string) (Delivery, bool) {
	for _, d := range r.Deliveries {
		if d.Role == role {
			return d, true
		}
	}
	return Delivery{}, false
}

// Failures summarizes failed deliveries as "role: error" pairs.
func (r Result) Failures() string {
	var parts []string
	for _, d := range r.Deliveries {
		if !d.Sent {
			parts = append(parts, d.Role+": "+d.Error)
		}
	}
	return strings.Join(parts, "; ")
}

// Classify maps a notification outcome to a Status.
// err is a failure of the pipeline itself (unreachable, bad payload) and is always failed.
// Otherwise every send succeeding is success, every send failing is failed,
// and anything in between is limited.
func Classify(res Result, err error) Status {
	if err != nil || len(res.Deliveries) == 0 {
		return StatusFailed
	}
	sent := 0
	for _, d := range res.Deliveries {
		if d.Sent {
			sent++
		}
	}
	switch sent {
	case len(res.Deliveries):
		return StatusSuccess
	case 0:
		return StatusFailed
	default:
		return StatusLimited
	}
}

// Notifier is what the checkout and back-office flows call to send email.
// Pipeline satisfies it in-process and Client over HTTP.
type Notifier interface {
	SendOrderEmail(ctx context.Context, req OrderEmailRequest) (Result, error)
	SendStatusEmail(ctx context.Context, req StatusEmailRequest) (Result, error)
	SendContactEmail(ctx context.Context, req ContactRequest) (Result, error)
}

// SettingsReader supplies the store name, currency and contact address used in emails.
type SettingsReader interface {
	GetOrDefault(ctx context.Context) models.StoreSettings
}

// Pipeline renders emails and hands them to a Sender. Send failures are logged
// and reported in the Result; they are never returned as errors.
type Pipeline struct {
	Sender            Sender
	From              string
	FallbackRecipient string
	Settings          SettingsReader
	Logger            *zap.Logger
}

func NewPipeline(sender Sender, from, fallbackRecipient string, settings SettingsReader, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{Sender: sender, From: from, FallbackRecipient: fallbackRecipient, Settings: settings, Logger: logger}
}

type lineView struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

type orderView struct {
	StoreName        string
	OrderID          string
	OrderDate        string
	Customer         models.Customer
	Items            []lineView
	Subtotal         string
	PaymentReference string
}

// SendOrderEmail sends the new-order email to the operator and the
// confirmation to the customer, independently and in parallel.
func (p *Pipeline) SendOrderEmail(ctx context.Context, req OrderEmailRequest) (Result, error) {
	store := p.store(ctx)
	view := orderView{
		StoreName:        store.StoreName,
		OrderID:          req.OrderID,
		OrderDate:        req.OrderDate,
		Customer:         req.Customer,
		Items:            lineViews(req.Items, store.Currency),
		Subtotal:         format.Currency(req.Subtotal, store.Currency),
		PaymentReference: req.PaymentReference,
	}
	if view.OrderDate == "" {
		view.OrderDate = format.OrderDate(time.Now())
	}

	operatorHTML, err := render(tmplOrderOperator, view)
	if err != nil {
		return Result{}, err
	}
	customerHTML, err := render(tmplOrderCustomer, view)
	if err != nil {
		return Result{}, err
	}

	recipient := req.RecipientEmail
	if recipient == "" {
		recipient = p.recipient(store)
	}

	return p.sendAll(ctx, "order", []outgoing{
		{role: RoleOperator, msg: Message{
			To:      []string{recipient},
			ReplyTo: req.Customer.Email,
			Subject: fmt.Sprintf("New order #%s from %s", req.OrderID, req.Customer.FullName()),
			HTML:    operatorHTML,
		}},
		{role: RoleCustomer, msg: Message{
			To:      []string{req.Customer.Email},
			Subject: fmt.Sprintf("Your %s order #%s", store.StoreName, req.OrderID),
			HTML:    customerHTML,
		}},
	}), nil
}

// SendStatusEmail tells the customer their order moved to a new status.
func (p *Pipeline) SendStatusEmail(ctx context.Context, req StatusEmailRequest) (Result, error) {
	if req.NotificationType != "" && req.NotificationType != models.NotificationStatusUpdate {
		return Result{}, fmt.Errorf("email: unsupported notification type %q", req.NotificationType)
	}
	if !req.Status.Valid() {
		return Result{}, fmt.Errorf("email: unknown order status %q", req.Status)
	}

	store := p.store(ctx)
	view := struct {
		StoreName      string
		OrderID        string
		CustomerName   string
		Status         string
		PreviousStatus string
		Items          []lineView
		Total          string
	}{
		StoreName:    store.StoreName,
		OrderID:      req.OrderID,
		CustomerName: req.CustomerName,
		Status:       req.Status.Label(),
		Items:        lineViews(req.Items, store.Currency),
		Total:        format.Currency(req.Total, store.Currency),
	}
	if req.PreviousStatus.Valid() {
		view.PreviousStatus = req.PreviousStatus.Label()
	}
	if view.CustomerName == "" {
		view.CustomerName = "there"
	}

	html, err := render(tmplStatusUpdate, view)
	if err != nil {
		return Result{}, err
	}
	return p.sendAll(ctx, "status-update", []outgoing{{role: RoleCustomer, msg: Message{
		To:      []string{req.CustomerEmail},
		Subject: fmt.Sprintf("Order #%s is now %s", req.OrderID, req.Status.Label()),
		HTML:    html,
	}}}), nil
}

// SendContactEmail forwards a contact form submission to the store.
func (p *Pipeline) SendContactEmail(ctx context.Context, req ContactRequest) (Result, error) {
	store := p.store(ctx)

	// The message is plain text from the public form; strip any markup before it reaches HTML.
	clean := bluemonday.StrictPolicy()
	view := struct {
		StoreName string
		Name      string
		Email     string
		Subject   string
		Message   template.HTML
	}{
		StoreName: store.StoreName,
		Name:      clean.Sanitize(req.Name),
		Email:     req.Email,
		Subject:   clean.Sanitize(req.Subject),
		Message:   template.HTML(strings.ReplaceAll(clean.Sanitize(req.Message), "\n", "<br>")),
	}
	if view.Subject == "" {
		view.Subject = "(no subject)"
	}

	html, err := render(tmplContact, view)
	if err != nil {
		return Result{}, err
	}
	return p.sendAll(ctx, "contact", []outgoing{{role: RoleOperator, msg: Message{
		To:      []string{p.recipient(store)},
		ReplyTo: req.Email,
		Subject: "Contact form: " + view.Subject,
		HTML:    html,
	}}}), nil
}

type statusCount struct {
	Label string
	Count int
}

type productView struct {
	Name     string
	Quantity int
	Revenue  string
}

// SendSalesReport emails a sales summary to recipient, or to the store contact when empty.
func (p *Pipeline) SendSalesReport(ctx context.Context, recipient string, sum orders.Summary) (Result, error) {
	store := p.store(ctx)
	if recipient == "" {
		recipient = p.recipient(store)
	}

	view := struct {
		StoreName   string
		Day         string
		OrderCount  int
		ItemsSold   int
		Revenue     string
		ByStatus    []statusCount
		TopProducts []productView
	}{
		StoreName:  store.StoreName,
		Day:        sum.From.Format("Monday, January 2, 2006"),
		OrderCount: sum.OrderCount,
		ItemsSold:  sum.ItemsSold,
		Revenue:    format.Currency(sum.Revenue, store.Currency),
	}
	for _, s := range models.OrderStatuses {
		if n := sum.ByStatus[s]; n > 0 {
			view.ByStatus = append(view.ByStatus, statusCount{Label: s.Label(), Count: n})
		}
	}
	for _, ps := range sum.TopProducts {
		view.TopProducts = append(view.TopProducts, productView{
			Name:     ps.ProductName,
			Quantity: ps.Quantity,
			Revenue:  format.Currency(ps.Revenue, store.Currency),
		})
	}

	html, err := render(tmplSalesReport, view)
	if err != nil {
		return Result{}, err
	}
	return p.sendAll(ctx, "report", []outgoing{{role: RoleOperator, msg: Message{
		To:      []string{recipient},
		Subject: fmt.Sprintf("%s sales report for %s", store.StoreName, sum.From.Format("Jan 2, 2006")),
		HTML:    html,
	}}}), nil
}

type outgoing struct {
	role string
	msg  Message
}

// sendAll dispatches every message concurrently. One failing send never
// cancels the others.
func (p *Pipeline) sendAll(ctx context.Context, kind string, out []outgoing) Result {
	deliveries := make([]Delivery, len(out))
	var g errgroup.Group
	for i, o := range out {
		g.Go(func() error {
			o.msg.From = p.From
			d := Delivery{Role: o.role, To: strings.Join(o.msg.To, ", ")}
			id, err := p.Sender.Send(ctx, o.msg)
			if err != nil {
				d.Error = err.Error()
				p.Logger.Error("email send failed",
					zap.String("kind", kind),
					zap.String("role", o.role),
					zap.String("to", d.To),
					zap.Error(err),
				)
			} else {
				d.Sent = true
				d.MessageID = id
			}
			deliveries[i] = d
			return nil
		})
	}
	_ = g.Wait()
	return Result{Deliveries: deliveries}
}

func (p *Pipeline) store(ctx context.Context) models.StoreSettings {
	if p.Settings == nil {
		return models.DefaultStoreSettings()
	}
	return p.Settings.GetOrDefault(ctx)
}

// recipient is the store's contact email, or the configured fallback.
func (p *Pipeline) recipient(store models.StoreSettings) string {
	if store.ContactEmail != "" {
		return store.ContactEmail
	}
	return p.FallbackRecipient
}

func lineViews(items []LineItem, currency string) []lineView {
	out := make([]lineView, len(items))
	for i, item := range items {
		out[i] = lineView{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    format.Currency(item.Price, currency),
			Subtotal: format.Currency(item.Price*int64(item.Quantity), currency),
		}
	}
	return out
}
