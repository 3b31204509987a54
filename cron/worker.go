package cron

import (
	"context"
	"errors"
	"fmt"

	"nestmart/services/gateway"
	"nestmart/services/payment"
	"nestmart/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// IPNWorker consumes queued gateway notifications and applies them to
// listings.
type IPNWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewIPNWorker builds the worker. Call Start to begin consuming.
func NewIPNWorker(redisOpts asynq.RedisClientOpt, payments payment.PaymentService, logger *zap.Logger) *IPNWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentIPN, HandleIPNTask(payments, logger))

	return &IPNWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background.
func (w *IPNWorker) Start() error {
	w.logger.Info("starting ipn worker")
	if err := w.srv.Start(w.mux); err != nil {
		return fmt.Errorf("ipn worker: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *IPNWorker) Shutdown() {
	w.srv.Shutdown()
	w.logger.Info("ipn worker stopped")
}

// HandleIPNTask verifies one notification with the gateway and applies the
// result. Malformed payloads are not retried; gateway failures are.
func HandleIPNTask(payments payment.PaymentService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseIPNTask(task)
		if err != nil {
			logger.Error("invalid ipn payload", zap.Error(err))
			return fmt.Errorf("decode ipn: %v: %w", err, asynq.SkipRetry)
		}

		log := logger.With(
			zap.String("requestId", p.RequestID),
			zap.String("tranId", p.TranID),
		)

		outcome, res, err := payments.ProcessNotification(ctx, gateway.Notification{
			TranID: p.TranID,
			ValID:  p.ValID,
			Status: p.Status,
		})
		if err != nil {
			var gwErr *payment.GatewayError
			if errors.As(err, &gwErr) {
				log.Warn("ipn validation failed, will retry", zap.Error(err))
			} else {
				log.Error("ipn processing failed", zap.Error(err))
			}
			return err
		}

		log.Info("ipn processed",
			zap.String("outcome", string(outcome)),
			zap.Int64("modified", res.ModifiedCount),
		)
		return nil
	}
}
