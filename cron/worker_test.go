package cron

import (
	"context"
	"errors"
	"testing"

	"nestmart/models"
	"nestmart/services/gateway"
	"nestmart/services/payment"
	"nestmart/services/tasks"
	"nestmart/testutil"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*payment.Coordinator, *testutil.MemoryListings, *testutil.StubGateway) {
	t.Helper()
	store := testutil.NewMemoryListings()
	gw := &testutil.StubGateway{}
	return payment.NewCoordinator(store, gw, zap.NewNop(), payment.Settings{ServerURL: "http://api.test"}), store, gw
}

func TestHandleIPNTask_AppliesValidatedPayment(t *testing.T) {
	coord, store, gw := setup(t)
	gw.Outcome = gateway.OutcomePaid
	id := store.Seed(nil)
	init, err := coord.Initiate(context.Background(), id.Hex(), map[string]interface{}{"amount": 120})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	task, _, err := tasks.NewIPNTask(models.IPNPayload{TranID: init.TransactionID, ValID: "val-1", Status: "VALID"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := HandleIPNTask(coord, zap.NewNop())(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, _ := store.Snapshot(id)
	if got.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", got.PaymentStatus)
	}
	if n := gw.Notifications; len(n) != 1 || n[0].ValID != "val-1" {
		t.Fatalf("expected gateway validation for val-1, got %+v", n)
	}
}

func TestHandleIPNTask_MalformedPayloadSkipsRetry(t *testing.T) {
	coord, _, _ := setup(t)
	task := asynq.NewTask(tasks.TypePaymentIPN, []byte("{not json"))

	err := HandleIPNTask(coord, zap.NewNop())(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestHandleIPNTask_GatewayErrorIsRetried(t *testing.T) {
	coord, _, gw := setup(t)
	gw.ValidateErr = errors.New("timeout")

	task, _, _ := tasks.NewIPNTask(models.IPNPayload{TranID: "t1", ValID: "v1"})
	err := HandleIPNTask(coord, zap.NewNop())(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
