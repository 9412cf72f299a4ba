package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
)

// PaymentClient settles a booking's cost against the external payment
// service. The verdict is coarse: anything that is not a 2xx SUCCESS body is
// FAILED.
type PaymentClient struct {
	url        string
	httpClient *http.Client
}

type paymentRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type paymentResponse struct {
	Status string `json:"status"`
}

func NewPaymentClient(cfg config.CollaboratorConfig) *PaymentClient {
	return &PaymentClient{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *PaymentClient) Charge(ctx context.Context, amountCents int64) (string, error) {
	body, err := json.Marshal(paymentRequest{AmountCents: amountCents})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/payment/pay", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.PaymentVerdictFailed, nil
	}

	var pr paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.PaymentVerdictFailed, nil
	}
	return pr.Status, nil
}
