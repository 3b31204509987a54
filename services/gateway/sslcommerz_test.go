package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newSSLCommerzServer(t *testing.T, handler http.HandlerFunc) *SSLCommerz {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSSLCommerz("store", "secret", false, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestSSLCommerz_InitSession(t *testing.T) {
	var got map[string]string
	gw := newSSLCommerzServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != initPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":         "SUCCESS",
			"sessionkey":     "sess-1",
			"GatewayPageURL": "https://sandbox.sslcommerz.com/pay/sess-1",
		})
	})

	sess, err := gw.InitSession(context.Background(), SessionRequest{
		TranID:     "tx-1",
		Amount:     500,
		Currency:   "BDT",
		SuccessURL: "https://api.example.com/payment/success?tran_id=tx-1",
		FailURL:    "https://api.example.com/payment/fail?tran_id=tx-1",
		CancelURL:  "https://api.example.com/payment/cancel?tran_id=tx-1",
		IPNURL:     "https://api.example.com/payment/ipn?tran_id=tx-1",
		Customer:   PlaceholderCustomer(),
	})
	if err != nil {
		t.Fatalf("init: unexpected error: %v", err)
	}
	if sess.URL != "https://sandbox.sslcommerz.com/pay/sess-1" {
		t.Fatalf("unexpected redirect url %q", sess.URL)
	}

	want := map[string]string{
		"store_id":     "store",
		"store_passwd": "secret",
		"total_amount": "500.00",
		"currency":     "BDT",
		"tran_id":      "tx-1",
		"success_url":  "https://api.example.com/payment/success?tran_id=tx-1",
		"ipn_url":      "https://api.example.com/payment/ipn?tran_id=tx-1",
		"cus_email":    "customer@example.com",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("form %s: expected %q got %q", k, v, got[k])
		}
	}
}

func TestSSLCommerz_InitSessionRejected(t *testing.T) {
	gw := newSSLCommerzServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":       "FAILED",
			"failedreason": "Store Credential Error",
		})
	})

	_, err := gw.InitSession(context.Background(), SessionRequest{TranID: "tx-1", Amount: 1})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestSSLCommerz_InitSessionTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	gw := NewSSLCommerz("store", "secret", false,
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
	)

	if _, err := gw.InitSession(context.Background(), SessionRequest{TranID: "tx-1", Amount: 1}); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestSSLCommerz_Validate(t *testing.T) {
	gw := newSSLCommerzServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != validatePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		status := "VALID"
		if r.URL.Query().Get("val_id") == "bad" {
			status = "INVALID_TRANSACTION"
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status, "tran_id": "tx-1"})
	})

	tests := []struct {
		name string
		n    Notification
		want Outcome
	}{
		{"valid", Notification{TranID: "tx-1", ValID: "ok", Status: "VALID"}, OutcomePaid},
		{"invalid at gateway", Notification{TranID: "tx-1", ValID: "bad", Status: "VALID"}, OutcomeUnknown},
		{"failed", Notification{TranID: "tx-1", Status: "FAILED"}, OutcomeFailed},
		{"cancelled", Notification{TranID: "tx-1", Status: "CANCELLED"}, OutcomeCancelled},
		{"unattempted", Notification{TranID: "tx-1", Status: "UNATTEMPTED"}, OutcomeUnknown},
		{"valid without val_id", Notification{TranID: "tx-1", Status: "VALID"}, OutcomeUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gw.Validate(context.Background(), tc.n)
			if err != nil {
				t.Fatalf("validate: unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s got %s", tc.want, got)
			}
		})
	}
}

func TestSSLCommerz_ValidateForeignTransaction(t *testing.T) {
	gw := newSSLCommerzServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "VALID", "tran_id": "someone-else"})
	})

	_, err := gw.Validate(context.Background(), Notification{TranID: "tx-1", ValID: "v", Status: "VALID"})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}
