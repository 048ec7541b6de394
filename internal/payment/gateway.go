// Package payment abstracts the external payment provider behind a
// narrow gateway interface. The provider's SDK specifics stay outside
// this service; the booking flow only needs deposit creation, deposit
// confirmation and refunds. Every call is bounded by a timeout, and a
// timeout on deposit confirmation is treated as "payment failed",
// never as success.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable is returned when the gateway cannot be reached or
// times out. Callers must leave the reservation unconfirmed.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Deposit is the provider's handle for a pre-authorized charge.
type Deposit struct {
	Reference    string  `json:"reference"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
}

// Refund reports the provider's view of a refund request.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Gateway is the payment collaborator consumed by the booking flow.
// ConfirmDeposit must be idempotent on retry.
type Gateway interface {
	CreateDeposit(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Deposit, error)
	ConfirmDeposit(ctx context.Context, reference string) (bool, error)
	RefundDeposit(ctx context.Context, reference, reason string) (*Refund, error)
}

// HTTPGateway talks JSON to a payment backend (the service fronting
// the actual provider). All calls share one bounded client timeout.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway builds a gateway against the given base URL with a
// per-call timeout. The timeout doubles as the upper bound on how long
// a booking request can stall on payments.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		// network failure or timeout: fail closed
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateDeposit opens a pre-authorized charge with the provider.
func (g *HTTPGateway) CreateDeposit(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Deposit, error) {
	var dep Deposit
	err := g.post(ctx, "/deposits", map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"metadata": metadata,
	}, &dep)
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

// ConfirmDeposit verifies that the charge behind the reference has
// been authorized. A gateway failure yields (false, err): the deposit
// is never assumed paid.
func (g *HTTPGateway) ConfirmDeposit(ctx context.Context, reference string) (bool, error) {
	var out struct {
		Paid bool `json:"paid"`
	}
	if err := g.post(ctx, "/deposits/"+reference+"/confirm", map[string]string{}, &out); err != nil {
		return false, err
	}
	return out.Paid, nil
}

// RefundDeposit requests a refund. Completion is reported
// asynchronously by the provider; the returned status is informative.
func (g *HTTPGateway) RefundDeposit(ctx context.Context, reference, reason string) (*Refund, error) {
	var ref Refund
	err := g.post(ctx, "/refunds", map[string]string{
		"reference": reference,
		"reason":    reason,
	}, &ref)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// StubGateway is the fallback when no gateway URL is configured. It
// never confirms a deposit, keeping deposit-gated reservations in
// pending, and acknowledges refunds without side effects.
type StubGateway struct{}

func (StubGateway) CreateDeposit(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Deposit, error) {
	return nil, ErrUnavailable
}

func (StubGateway) ConfirmDeposit(ctx context.Context, reference string) (bool, error) {
	return false, nil
}

func (StubGateway) RefundDeposit(ctx context.Context, reference, reason string) (*Refund, error) {
	return &Refund{ID: "stub", Status: "accepted"}, nil
}
