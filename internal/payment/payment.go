// Package payment prepares the hosted payment widget and optionally confirms
// transactions with the gateway before an order is written.
package payment

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/01moynul/hidaaya-golang/internal/models"
)

var (
	// ErrNotVerified means the gateway did not confirm a successful charge for the reference.
	ErrNotVerified = errors.New("payment: transaction not verified")
	// ErrAmountMismatch means the gateway charged a different amount than the order total.
	ErrAmountMismatch = errors.New("payment: amount mismatch")
)

var referenceSpace = big.NewInt(1_000_000_000)

// NewReference returns prefix followed by a random integer, e.g. HIDAAYA_482910377.
func NewReference(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, referenceSpace)
	if err != nil {
		return "", fmt.Errorf("generate payment reference: %w", err)
	}
	return prefix + n.String(), nil
}

// MinorUnits converts a whole-currency amount into the gateway's minor unit (kobo for NGN).
func MinorUnits(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromInt(100)).IntPart()
}

// Tax returns round(subtotal * rate / 100), rounding half away from zero.
func Tax(subtotal int64, ratePercent float64) int64 {
	if ratePercent <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(ratePercent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// CustomField is one metadata row shown on the gateway dashboard.
type CustomField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// Metadata is attached to the transaction for reconciliation.
type Metadata struct {
	CustomFields []CustomField `json:"custom_fields"`
}

// WidgetConfig is everything the storefront needs to open the payment widget.
type WidgetConfig struct {
	Key       string   `json:"key"`
	Email     string   `json:"email"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	Reference string   `json:"ref"`
	Metadata  Metadata `json:"metadata"`
}

// NewWidgetConfig builds the widget configuration for a checkout of amount
// whole-currency units. Amount is converted to minor units here and nowhere else.
func NewWidgetConfig(publicKey string, customer models.Customer, amount int64, currency, reference string) WidgetConfig {
	return WidgetConfig{
		Key:       publicKey,
		Email:     customer.Email,
		Amount:    MinorUnits(amount),
		Currency:  strings.ToUpper(currency),
		Reference: reference,
		Metadata: Metadata{CustomFields: []CustomField{
			{DisplayName: "Customer Name", VariableName: "customer_name", Value: customer.FullName()},
			{DisplayName: "Phone Number", VariableName: "phone_number", Value: customer.PhoneNumber},
		}},
	}
}

// Verifier confirms a transaction with the gateway.
type Verifier interface {
	Verify(ctx context.Context, reference string, expectedMinor int64) error
}

// NoopVerifier accepts every reference. It is used when no secret key is configured
// and the widget's success callback is trusted as-is.
type NoopVerifier struct{}

func (NoopVerifier) Verify(context.Context, string, int64) error { return nil }
