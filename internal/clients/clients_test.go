package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPaymentClient_Charge_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payment/pay", r.URL.Path)

		var req map[string]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(20000), req["amount_cents"])

		json.NewEncoder(w).Encode(map[string]string{"status": "SUCCESS"})
	}))
	defer srv.Close()

	client := NewPaymentClient(config.CollaboratorConfig{URL: srv.URL})

	verdict, err := client.Charge(context.Background(), 20000)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentVerdictSuccess, verdict)
}

func TestPaymentClient_Charge_Non2xxIsFailedVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewPaymentClient(config.CollaboratorConfig{URL: srv.URL})

	verdict, err := client.Charge(context.Background(), 100)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentVerdictFailed, verdict)
}

func TestPaymentClient_Charge_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	client := NewPaymentClient(config.CollaboratorConfig{URL: srv.URL})

	_, err := client.Charge(context.Background(), 100)
	assert.Error(t, err)
}

func TestLedgerClient_AddSpend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/user/update-booking-value", r.URL.Path)

		var req struct {
			UserID      string `json:"user_id"`
			AmountCents int64  `json:"amount_cents"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.UserID)
		assert.Equal(t, int64(20000), req.AmountCents)
	}))
	defer srv.Close()

	client := NewLedgerClient(config.CollaboratorConfig{URL: srv.URL})
	assert.NoError(t, client.AddSpend(context.Background(), "user-1", 20000))
}

func TestLedgerClient_AddSpend_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewLedgerClient(config.CollaboratorConfig{URL: srv.URL})
	assert.Error(t, client.AddSpend(context.Background(), "user-1", 100))
}
