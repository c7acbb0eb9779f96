package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/wxgate/internal/gateway"
	"github.com/smallbiznis/wxgate/internal/observability/logger"
)

func (s *Server) QueryOrder(c *gin.Context) {
	outTradeNo := strings.TrimSpace(c.Param("out_trade_no"))
	if outTradeNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "out_trade_no is required"})
		return
	}

	values, err := s.gateway.QueryOrder(c.Request.Context(), outTradeNo)
	if err != nil {
		s.gatewayError(c, err)
		return
	}
	c.JSON(http.StatusOK, logger.MaskValues(values))
}

func (s *Server) QueryRefund(c *gin.Context) {
	outRefundNo := strings.TrimSpace(c.Param("out_refund_no"))
	if outRefundNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "out_refund_no is required"})
		return
	}

	values, err := s.gateway.QueryRefund(c.Request.Context(), outRefundNo)
	if err != nil {
		s.gatewayError(c, err)
		return
	}
	c.JSON(http.StatusOK, logger.MaskValues(values))
}

type browserPayRequest struct {
	PrepayID string `json:"prepay_id"`
}

// BrowserPayParams hands a client application the signed field set it needs
// to invoke the payment sheet in the browser.
func (s *Server) BrowserPayParams(c *gin.Context) {
	var req browserPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.PrepayID = strings.TrimSpace(req.PrepayID)
	if req.PrepayID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prepay_id is required"})
		return
	}

	c.JSON(http.StatusOK, s.gateway.BrowserPayParams(req.PrepayID))
}

func (s *Server) gatewayError(c *gin.Context, err error) {
	s.log.Warn("gateway call failed", zap.Error(err))
	if errors.Is(err, gateway.ErrRequestRefused) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway refused the request"})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "gateway unavailable"})
}
