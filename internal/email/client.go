package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Function paths, relative to the functions base URL.
const (
	FunctionOrderEmail   = "send-order-email"
	FunctionContactEmail = "send-contact-email"
)

// FunctionSecretHeader carries the shared secret the functions require.
const FunctionSecretHeader = "X-Functions-Secret"


// FunctionResponse is the envelope every notification function answers with.
type FunctionResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client calls a deployed notification function over HTTP.
type Client struct {
	BaseURL string
	Secret  string
	HTTP    *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Secret:  secret,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SendOrderEmail(ctx context.Context, req OrderEmailRequest) (Result, error) {
	return c.invoke(ctx, FunctionOrderEmail, req)
}

// SendStatusEmail goes through the order-email function; the payload's
// notificationType selects the template on the other side.
func (c *Client) SendStatusEmail(ctx context.Context, req StatusEmailRequest) (Result, error) {
	return c.invoke(ctx, FunctionOrderEmail, req)
}

func (c *Client) SendContactEmail(ctx context.Context, req ContactRequest) (Result, error) {
	return c.invoke(ctx, FunctionContactEmail, req)
}

func (c *Client) invoke(ctx context.Context, function string, payload any) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s payload: %w", function, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+function, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build %s request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(FunctionSecretHeader, c.Secret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("invoke %s: %w", function, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read %s response: %w", function, err)
	}

	var envelope FunctionResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{}, fmt.Errorf("decode %s response (status %d): %w", function, resp.StatusCode, err)
	}
	if !envelope.Success {
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return Result{}, errors.New(function + ": " + envelope.Error)
	}

	var result Result
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			return Result{}, fmt.Errorf("decode %s result: %w", function, err)
		}
	}
	return result, nil
}
