package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

// ErrInvalidPayload wraps every rejection of a function request body.
var ErrInvalidPayload = errors.New("email: invalid payload")

var payloadValidator = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// HandleOrderFunction serves the order-email function. The notificationType
// field picks the flow: empty or "confirmation" is a checkout confirmation,
// "status-update" is an admin status change.
func (p *Pipeline) HandleOrderFunction(ctx context.Context, raw []byte) (Result, error) {
	var head struct {
		NotificationType models.NotificationKind `json:"notificationType"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch head.NotificationType {
	case "", models.NotificationConfirmation:
		var req OrderEmailRequest
		if err := decodePayload(raw, &req); err != nil {
			return Result{}, err
		}
		if req.Customer.Email == "" {
			return Result{}, fmt.Errorf("%w: customer email is required", ErrInvalidPayload)
		}
		return p.SendOrderEmail(ctx, req)
	case models.NotificationStatusUpdate:
		var req StatusEmailRequest
		if err := decodePayload(raw, &req); err != nil {
			return Result{}, err
		}
		return p.SendStatusEmail(ctx, req)
	case models.NotificationReport:
		return Result{}, fmt.Errorf("%w: reports are sent by the scheduler", ErrInvalidPayload)
	}
	return Result{}, fmt.Errorf("%w: unknown notificationType %q", ErrInvalidPayload, head.NotificationType)
}

// HandleContactFunction serves the contact-email function.
func (p *Pipeline) HandleContactFunction(ctx context.Context, raw []byte) (Result, error) {
	var req ContactRequest
	if err := decodePayload(raw, &req); err != nil {
		return Result{}, err
	}
	return p.SendContactEmail(ctx, req)
}

func decodePayload(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := payloadValidator.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
