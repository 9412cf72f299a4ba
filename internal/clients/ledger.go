package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Domenick1991/flightbooking/config"
)

// LedgerClient adds a settled booking's cost to the user's running total.
// Fire-and-forget from the saga's point of view; failures are logged by the
// caller and never block settlement.
type LedgerClient struct {
	url        string
	httpClient *http.Client
}

type ledgerRequest struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
}

func NewLedgerClient(cfg config.CollaboratorConfig) *LedgerClient {
	return &LedgerClient{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

func (c *LedgerClient) AddSpend(ctx context.Context, userID string, amountCents int64) error {
	body, err := json.Marshal(ledgerRequest{UserID: userID, AmountCents: amountCents})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url+"/api/user/update-booking-value", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ledger service: unexpected status %d", resp.StatusCode)
	}
	return nil
}
