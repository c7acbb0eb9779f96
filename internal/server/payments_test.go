package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/wxgate/internal/clock"
	"github.com/smallbiznis/wxgate/internal/config"
	"github.com/smallbiznis/wxgate/internal/gateway"
	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

func newPaymentsTestServer(t *testing.T, upstream http.HandlerFunc) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	cfg := config.Config{
		AppID:       "wx2421b1c4370ec43b",
		MchID:       "10000100",
		APIKey:      testSecret,
		Environment: config.EnvProduction,
		Gateway: config.GatewayConfig{
			BaseURL: srv.URL,
			Timeout: 5 * time.Second,
		},
	}
	gw := gateway.New(gateway.Params{
		Cfg:   cfg,
		Log:   zap.NewNop(),
		Clock: clock.SystemClock{},
	})

	s := NewServer(Params{
		Cfg:     cfg,
		Log:     zap.NewNop(),
		Engine:  gin.New(),
		Gateway: gw,
	})
	s.RegisterRoutes()
	return s, srv
}

func TestQueryRefundEndpoint(t *testing.T) {
	s, srv := newPaymentsTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pay/refundquery" {
			t.Fatalf("unexpected upstream path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", wire.ContentType)
		_, _ = w.Write(wire.Encode(wire.Values{
			"return_code":   "SUCCESS",
			"refund_status": "SUCCESS",
			"sign":          "9A0A8659F005D6984697E2CA0A9CF3B7",
		}))
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/refunds/R1409811653", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["refund_status"] != "SUCCESS" {
		t.Fatalf("expected refund_status, got %v", payload)
	}
	if !strings.HasPrefix(payload["sign"], "****") {
		t.Fatalf("expected the response signature to be masked, got %q", payload["sign"])
	}
}

func TestQueryRefundGatewayRefused(t *testing.T) {
	s, srv := newPaymentsTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", wire.ContentType)
		_, _ = w.Write(wire.FailureAck("REFUNDNOTEXIST"))
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/refunds/R1409811653", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "REFUNDNOTEXIST") {
		t.Fatalf("gateway reason must not leak to API clients: %s", w.Body.String())
	}
}

func TestBrowserPayParamsEndpoint(t *testing.T) {
	s, srv := newPaymentsTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("browser params must not call the gateway")
	})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/browser-params",
		strings.NewReader(`{"prepay_id":"wx201410272009395522657a690389285100"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var params map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &params); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if params["package"] != "prepay_id=wx201410272009395522657a690389285100" {
		t.Fatalf("unexpected package: %v", params)
	}
	if len(params["paySign"]) != 32 {
		t.Fatalf("expected a 32-character paySign, got %q", params["paySign"])
	}
}

func TestBrowserPayParamsValidation(t *testing.T) {
	s, srv := newPaymentsTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/payments/browser-params",
		strings.NewReader(`{"prepay_id":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
