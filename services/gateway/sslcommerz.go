package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	sandboxBaseURL = "https://sandbox.sslcommerz.com"
	liveBaseURL    = "https://securepay.sslcommerz.com"

	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"
)

// SSLCommerz talks to the SSLCommerz hosted checkout API.
type SSLCommerz struct {
	storeID       string
	storePassword string
	baseURL       string
	client        *http.Client
}

// SSLCommerzOption customizes an SSLCommerz client.
type SSLCommerzOption func(*SSLCommerz)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) SSLCommerzOption {
	return func(s *SSLCommerz) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default 20 second timeout client.
func WithHTTPClient(c *http.Client) SSLCommerzOption {
	return func(s *SSLCommerz) { s.client = c }
}

// NewSSLCommerz creates a client for the sandbox or live environment.
func NewSSLCommerz(storeID, storePassword string, live bool, opts ...SSLCommerzOption) *SSLCommerz {
	s := &SSLCommerz{
		storeID:       storeID,
		storePassword: storePassword,
		baseURL:       sandboxBaseURL,
		client:        &http.Client{Timeout: 20 * time.Second},
	}
	if live {
		s.baseURL = liveBaseURL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type initResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// InitSession registers the transaction and returns the hosted page URL.
func (s *SSLCommerz) InitSession(ctx context.Context, req SessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("store_id", s.storeID)
	form.Set("store_passwd", s.storePassword)
	form.Set("total_amount", strconv.FormatFloat(req.Amount, 'f', 2, 64))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("shipping_method", req.ShippingMethod)
	form.Set("product_name", req.ProductName)
	form.Set("product_category", req.ProductCategory)
	form.Set("product_profile", "general")
	form.Set("num_of_item", "1")

	c := req.Customer
	form.Set("cus_name", c.Name)
	form.Set("cus_email", c.Email)
	form.Set("cus_add1", c.Address)
	form.Set("cus_add2", c.Address)
	form.Set("cus_city", c.City)
	form.Set("cus_state", c.State)
	form.Set("cus_postcode", c.Postcode)
	form.Set("cus_country", c.Country)
	form.Set("cus_phone", c.Phone)
	form.Set("cus_fax", c.Phone)
	form.Set("ship_name", c.Name)
	form.Set("ship_add1", c.Address)
	form.Set("ship_add2", c.Address)
	form.Set("ship_city", c.City)
	form.Set("ship_state", c.State)
	form.Set("ship_postcode", c.Postcode)
	form.Set("ship_country", c.Country)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+initPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("sslcommerz: build init request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out initResponse
	if err := s.do(httpReq, &out); err != nil {
		return nil, err
	}
	if !strings.EqualFold(out.Status, "SUCCESS") || out.GatewayPageURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrRejected, out.FailedReason)
	}
	return &Session{URL: out.GatewayPageURL, SessionKey: out.SessionKey}, nil
}

type validationResponse struct {
	Status string `json:"status"`
	TranID string `json:"tran_id"`
	ValID  string `json:"val_id"`
	Amount string `json:"amount"`
}

// Validate maps an IPN to an Outcome. Only "VALID" notifications are
// confirmed against the validation API; failure and cancellation reports are
// taken as sent because they can only move a listing back to unpaid. A val_id
// the validation API does not confirm changes nothing.
func (s *SSLCommerz) Validate(ctx context.Context, n Notification) (Outcome, error) {
	switch strings.ToUpper(n.Status) {
	case "VALID", "VALIDATED":
	case "FAILED":
		return OutcomeFailed, nil
	case "CANCELLED":
		return OutcomeCancelled, nil
	default:
		return OutcomeUnknown, nil
	}
	if n.ValID == "" {
		return OutcomeUnknown, nil
	}

	q := url.Values{}
	q.Set("val_id", n.ValID)
	q.Set("store_id", s.storeID)
	q.Set("store_passwd", s.storePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+validatePath+"?"+q.Encode(), nil)
	if err != nil {
		return OutcomeUnknown, fmt.Errorf("sslcommerz: build validation request: %w", err)
	}

	var out validationResponse
	if err := s.do(httpReq, &out); err != nil {
		return OutcomeUnknown, err
	}
	switch strings.ToUpper(out.Status) {
	case "VALID", "VALIDATED":
		if out.TranID != n.TranID {
			return OutcomeUnknown, fmt.Errorf("%w: validation answered for tran_id %q", ErrRejected, out.TranID)
		}
		return OutcomePaid, nil
	default:
		return OutcomeUnknown, nil
	}
}

func (s *SSLCommerz) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sslcommerz: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sslcommerz: %s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sslcommerz: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
