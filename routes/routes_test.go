package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nestmart/handlers"
	"nestmart/services/gateway"
	"nestmart/services/payment"
	"nestmart/testutil"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type nopQueue struct{}

func (nopQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type upHealth struct{}

func (upHealth) Status() utils.HealthStatus {
	return utils.HealthStatus{Mongo: true, Redis: true, CheckedAt: time.Now()}
}

type app struct {
	router   *gin.Engine
	listings *testutil.MemoryListings
	gw       *testutil.StubGateway
	tokens   *utils.TokenService
}

func newApp() *app {
	gin.SetMode(gin.TestMode)

	listings := testutil.NewMemoryListings()
	tokens := utils.NewTokenService("test-secret", 7*24*time.Hour)
	gw := &testutil.StubGateway{}
	coord := payment.NewCoordinator(listings, gw, zap.NewNop(), payment.Settings{ServerURL: "http://api.test"})
	products := testutil.NewMemoryDocuments()
	properties := testutil.NewMemoryDocuments()
	blogs := testutil.NewMemoryDocuments()
	reviews := testutil.NewMemoryDocuments()
	users := testutil.NewMemoryDocuments()

	hb := &handlers.HandlerBundle{
		Tokens:     tokens,
		Auth:       handlers.NewAuthHandler(tokens),
		Payment:    handlers.NewPaymentHandler(coord, nopQueue{}, "http://client.test"),
		Products:   handlers.NewRecordsHandler(products),
		Properties: handlers.NewPropertiesHandler(properties),
		Blogs:      handlers.NewRecordsHandler(blogs),
		Reviews:    handlers.NewRecordsHandler(reviews),
		Users:      handlers.NewUserHandler(users),
		Stats: &handlers.StatsHandler{
			Products: products, Properties: properties, Blogs: blogs, Reviews: reviews, Users: users,
		},
		Storage: handlers.NewStorageHandler(nil),
		Health:  &handlers.HealthHandler{Monitor: upHealth{}},
	}

	r := gin.New()
	RegisterRoutes(r, hb)
	return &app{router: r, listings: listings, gw: gw, tokens: tokens}
}

func (a *app) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestPaymentRoundTrip(t *testing.T) {
	a := newApp()
	id := a.listings.Seed(bson.M{"title": "Harbour flat"})

	w := a.do(http.MethodPost, "/jwt", `{"email":"owner@example.com"}`, "")
	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tok); err != nil || tok.Token == "" {
		t.Fatalf("issue token: %s", w.Body.String())
	}

	w = a.do(http.MethodPatch, "/payment/"+id.Hex(), `{"amount":500}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("initiate: %d %s", w.Code, w.Body.String())
	}
	var init struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &init)
	tranID := strings.TrimPrefix(init.URL, "https://pay.example.com/checkout/")

	w = a.do(http.MethodPost, "/payment/success?tran_id="+tranID, "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("success: expected 302 got %d", w.Code)
	}

	w = a.do(http.MethodGet, "/property/"+tranID, "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("lookup without token: expected 401 got %d", w.Code)
	}

	w = a.do(http.MethodGet, "/property/"+tranID, "", tok.Token)
	var listing map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatalf("lookup decode: %v (%s)", err, w.Body.String())
	}
	if listing["paymentStatus"] != "paid" || listing["publishStatus"] != "public" {
		t.Fatalf("expected paid/public listing, got %v", listing)
	}
	if listing["title"] != "Harbour flat" {
		t.Fatalf("expected stored details in lookup, got %v", listing)
	}
}

func TestHostedCheckoutReturnRoutes(t *testing.T) {
	a := newApp()
	a.gw.Outcome = gateway.OutcomePaid

	initiate := func() string {
		id := a.listings.Seed(nil)
		w := a.do(http.MethodPatch, "/payment/"+id.Hex(), `{"amount":500}`, "")
		var init struct {
			URL string `json:"url"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &init)
		return strings.TrimPrefix(init.URL, "https://pay.example.com/checkout/")
	}

	paid := initiate()
	w := a.do(http.MethodGet, "/payment/success?tran_id="+paid+"&session_id=cs_1", "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("GET success: expected 302 got %d %s", w.Code, w.Body.String())
	}

	cancelled := initiate()
	w = a.do(http.MethodGet, "/payment/cancel?tran_id="+cancelled, "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("GET cancel: expected 302 got %d %s", w.Code, w.Body.String())
	}

	w = a.do(http.MethodPost, "/payment/stripe/webhook", `{}`, "")
	if w.Code == http.StatusNotFound {
		t.Fatal("stripe webhook route must be registered")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newApp()
	token, _ := a.tokens.GenerateToken(map[string]interface{}{"email": "x@y.z"})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/states", ""},
		{http.MethodGet, "/users", ""},
		{http.MethodPost, "/products", `{"title":"t"}`},
		{http.MethodPost, "/properties", `{"title":"t"}`},
		{http.MethodPost, "/upload", ""},
	} {
		if w := a.do(tc.method, tc.path, tc.body, ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401 got %d", tc.method, tc.path, w.Code)
		}
	}

	if w := a.do(http.MethodGet, "/states", "", token); w.Code != http.StatusOK {
		t.Fatalf("states with token: expected 200 got %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/products", "", ""); w.Code != http.StatusOK {
		t.Fatalf("public product list: expected 200 got %d", w.Code)
	}
}

func TestRootAndHealth(t *testing.T) {
	a := newApp()
	if w := a.do(http.MethodGet, "/", "", ""); w.Body.String() != "Hi Developer Server Is Running" {
		t.Fatalf("unexpected root body %q", w.Body.String())
	}
	if w := a.do(http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health: expected 200 got %d", w.Code)
	}
}
