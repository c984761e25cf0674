package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const paystackBaseURL = "https://api.paystack.co"

// PaystackVerifier checks references against the Paystack verify endpoint.
type PaystackVerifier struct {
	SecretKey string
	BaseURL   string
	Client    *http.Client
}

func NewPaystackVerifier(secretKey string) *PaystackVerifier {
	return &PaystackVerifier{
		SecretKey: secretKey,
		BaseURL:   paystackBaseURL,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// Verify requires a successful transaction for reference. When expectedMinor
// is positive the charged amount must match it.
func (v *PaystackVerifier) Verify(ctx context.Context, reference string, expectedMinor int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.SecretKey)

	resp, err := v.Client.Do(req)
	if err != nil {
		return fmt.Errorf("verify %s: %w", reference, err)
	}
	defer resp.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound || !out.Status || out.Data.Status != "success" {
		return fmt.Errorf("%w: %s %s", ErrNotVerified, reference, out.Message)
	}
	if expectedMinor > 0 && out.Data.Amount != expectedMinor {
		return fmt.Errorf("%w: charged %d, expected %d", ErrAmountMismatch, out.Data.Amount, expectedMinor)
	}
	return nil
}
