package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/wxgate/internal/notify/domain"
	"github.com/smallbiznis/wxgate/internal/observability/logger"
	"github.com/smallbiznis/wxgate/internal/observability/metrics"
	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

// HandleGatewayNotification terminates the gateway's asynchronous payment
// callback. A verified (or already-settled) notification is acknowledged
// with the fixed success body; every rejection is a 422 with an empty body —
// rejection reasons stay in the logs, never in the response, and the gateway
// retries on its own schedule.
func (s *Server) HandleGatewayNotification(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.observe(metrics.OutcomeMalformed, start)
		c.Status(http.StatusUnprocessableEntity)
		return
	}

	result, err := s.notifySvc.HandleNotification(ctx, body)
	switch {
	case err == nil:
		s.observe(metrics.OutcomeVerified, start)
		logger.FromContext(ctx).Info("notification verified",
			zap.String("out_trade_no", result.OutTradeNo),
			zap.String("transaction_id", result.TransactionID),
			zap.Any("fields", logger.MaskValues(result.Fields)),
		)
		c.Data(http.StatusOK, wire.ContentType, wire.SuccessAck())
	case errors.Is(err, domain.ErrAlreadyProcessed):
		// The gateway is retrying something this process already settled;
		// acknowledge again so it stops.
		s.observe(metrics.OutcomeDuplicate, start)
		c.Data(http.StatusOK, wire.ContentType, wire.SuccessAck())
	default:
		s.observe(rejectionOutcome(err), start)
		c.Status(http.StatusUnprocessableEntity)
	}
}

func (s *Server) observe(outcome string, start time.Time) {
	s.notifyMetrics.ObserveOutcome(outcome, time.Since(start))
}

func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedPayload):
		return metrics.OutcomeMalformed
	case errors.Is(err, domain.ErrBusinessFailure):
		return metrics.OutcomeBusinessFailure
	case errors.Is(err, domain.ErrSignatureMismatch):
		return metrics.OutcomeSignatureMismatch
	default:
		return metrics.OutcomeInternalError
	}
}
