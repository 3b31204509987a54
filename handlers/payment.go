package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"nestmart/models"
	"nestmart/services/gateway"
	"nestmart/services/payment"
	"nestmart/services/tasks"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is the part of *asynq.Client used to queue gateway notifications.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// maxWebhookBody caps a gateway webhook body.
const maxWebhookBody = 64 << 10

// PaymentHandler exposes payment initiation, gateway callbacks and lookup.
type PaymentHandler struct {
	Payments  payment.PaymentService
	Queue     Enqueuer
	ClientURL string
	// StripeWebhookSecret verifies Stripe-Signature headers. Stripe webhooks
	// are refused while it is empty.
	StripeWebhookSecret string
}

// NewPaymentHandler creates a PaymentHandler. clientURL is the browser
// application the gateway callbacks redirect to.
func NewPaymentHandler(svc payment.PaymentService, queue Enqueuer, clientURL string) *PaymentHandler {
	return &PaymentHandler{Payments: svc, Queue: queue, ClientURL: clientURL}
}

// InitiatePaymentHandler handles PATCH /payment/:listingId.
func (h *PaymentHandler) InitiatePaymentHandler(c *gin.Context) {
	logger := getLogger(c)

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	init, err := h.Payments.Initiate(c.Request.Context(), c.Param("listingId"), body)
	if err != nil {
		var gwErr *payment.GatewayError
		switch {
		case errors.Is(err, payment.ErrInvalidListingID):
			utils.JSONError(c, logger, http.StatusBadRequest, "Id invalid", err.Error())
		case errors.Is(err, payment.ErrInvalidAmount):
			utils.JSONError(c, logger, http.StatusBadRequest, "Invalid amount", err.Error())
		case errors.Is(err, payment.ErrListingNotFound):
			utils.JSONError(c, logger, http.StatusNotFound, "Listing not found", err.Error())
		case errors.As(err, &gwErr):
			utils.JSONError(c, logger, http.StatusBadGateway, "Payment gateway error", gwErr.Err.Error())
		default:
			utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to initiate payment", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": init.URL})
}

// PaymentSuccessHandler handles POST /payment/success?tran_id=.
func (h *PaymentHandler) PaymentSuccessHandler(c *gin.Context) {
	h.reconcile(c, h.Payments.Succeed, "/paymentSuccess", true)
}

// PaymentFailHandler handles POST /payment/fail?tran_id=.
func (h *PaymentHandler) PaymentFailHandler(c *gin.Context) {
	h.reconcile(c, h.Payments.Fail, "/paymentFail", false)
}

// PaymentCancelHandler handles POST /payment/cancel?tran_id=.
func (h *PaymentHandler) PaymentCancelHandler(c *gin.Context) {
	h.reconcile(c, h.Payments.Cancel, "/paymentCancel", false)
}

// reconcile applies a callback. A callback that changed a listing redirects
// the browser to the client; anything else answers with the update counts.
func (h *PaymentHandler) reconcile(c *gin.Context, apply func(context.Context, string) (models.UpdateResult, error), path string, withTranID bool) {
	logger := getLogger(c)
	tranID := c.Query("tran_id")

	res, err := apply(c.Request.Context(), tranID)
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to update payment", err.Error())
		return
	}
	if res.ModifiedCount == 0 {
		c.JSON(http.StatusOK, res)
		return
	}

	target := h.ClientURL + path
	if withTranID {
		target += "?tran_id=" + url.QueryEscape(tranID)
	}
	c.Redirect(http.StatusFound, target)
}

// PaymentReturnHandler handles GET /payment/success?tran_id=&session_id=,
// where a hosted checkout sends the browser back. The session is verified
// with the gateway before its outcome is applied.
func (h *PaymentHandler) PaymentReturnHandler(c *gin.Context) {
	logger := getLogger(c)
	tranID := c.Query("tran_id")
	sessionID := c.Query("session_id")
	if tranID == "" || sessionID == "" {
		utils.JSONError(c, logger, http.StatusBadRequest, "tran_id and session_id are required", "")
		return
	}

	outcome, res, err := h.Payments.ProcessNotification(c.Request.Context(), gateway.Notification{
		TranID: tranID,
		ValID:  sessionID,
		Status: "VALID",
	})
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			utils.JSONError(c, logger, http.StatusBadGateway, "Payment gateway error", gwErr.Err.Error())
			return
		}
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to update payment", err.Error())
		return
	}

	switch outcome {
	case gateway.OutcomePaid:
		c.Redirect(http.StatusFound, h.ClientURL+"/paymentSuccess?tran_id="+url.QueryEscape(tranID))
	case gateway.OutcomeFailed:
		c.Redirect(http.StatusFound, h.ClientURL+"/paymentFail")
	case gateway.OutcomeCancelled:
		c.Redirect(http.StatusFound, h.ClientURL+"/paymentCancel")
	default:
		c.JSON(http.StatusOK, res)
	}
}

// LookupPaymentHandler handles GET /property/:tran_id.
func (h *PaymentHandler) LookupPaymentHandler(c *gin.Context) {
	logger := getLogger(c)
	listing, err := h.Payments.Lookup(c.Request.Context(), c.Param("tran_id"))
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to fetch listing", err.Error())
		return
	}
	c.JSON(http.StatusOK, listing)
}

// PaymentIPNHandler handles POST /payment/ipn. The notification is queued and
// verified with the gateway by the IPN worker.
func (h *PaymentHandler) PaymentIPNHandler(c *gin.Context) {
	logger := getLogger(c)

	tranID := c.Query("tran_id")
	if tranID == "" {
		tranID = c.PostForm("tran_id")
	}
	if tranID == "" {
		utils.JSONError(c, logger, http.StatusBadRequest, "tran_id is required", "")
		return
	}

	h.enqueue(c, models.IPNPayload{
		TranID: tranID,
		ValID:  c.PostForm("val_id"),
		Status: c.PostForm("status"),
	})
}

// StripeWebhookHandler handles POST /payment/stripe/webhook. Checkout session
// events are verified against the signing secret and queued like any other
// notification; the worker re-reads the session before applying it.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	logger := getLogger(c)
	if h.StripeWebhookSecret == "" {
		utils.JSONError(c, logger, http.StatusServiceUnavailable, "Stripe webhooks are not configured", "")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Failed to read webhook body", err.Error())
		return
	}
	event, err := gateway.ParseStripeWebhook(body, c.GetHeader("Stripe-Signature"), h.StripeWebhookSecret)
	if err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid webhook", err.Error())
		return
	}
	if event == nil || event.Notification.TranID == "" {
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	h.enqueue(c, models.IPNPayload{
		EventID: event.ID,
		TranID:  event.Notification.TranID,
		ValID:   event.Notification.ValID,
		Status:  event.Notification.Status,
	})
}

// enqueue queues one notification for the IPN worker. A notification already
// queued under the same task id is acknowledged without a second task.
func (h *PaymentHandler) enqueue(c *gin.Context, p models.IPNPayload) {
	logger := getLogger(c)

	p.RequestID = c.GetString("requestId")
	if p.RequestID == "" {
		p.RequestID = uuid.NewString()
	}
	p.ReceivedAt = time.Now().UTC()

	task, opts, err := tasks.NewIPNTask(p)
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to build notification task", err.Error())
		return
	}

	if _, err := h.Queue.EnqueueContext(c.Request.Context(), task, opts...); err != nil {
		if !errors.Is(err, asynq.ErrTaskIDConflict) && !errors.Is(err, asynq.ErrDuplicateTask) {
			utils.JSONError(c, logger, http.StatusServiceUnavailable, "Failed to queue notification", err.Error())
			return
		}
		logger.Info("duplicate notification ignored", zap.String("tranId", p.TranID))
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "accepted"})
}
