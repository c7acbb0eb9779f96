// Package gateway is the outbound side of the integration: it signs and
// POSTs XML requests to the payment gateway and decodes the XML responses.
// Calls are single-shot; there is no retry layer here.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/wxgate/internal/cache"
	"github.com/smallbiznis/wxgate/internal/clock"
	"github.com/smallbiznis/wxgate/internal/config"
	"github.com/smallbiznis/wxgate/internal/observability/tracing"
	"github.com/smallbiznis/wxgate/internal/wxpay/sign"
	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

var (
	// ErrRequestRefused means the gateway answered but reported a
	// communication-level failure (return_code != SUCCESS).
	ErrRequestRefused = errors.New("gateway_request_refused")

	// ErrUnexpectedStatus means the gateway answered outside 2xx.
	ErrUnexpectedStatus = errors.New("gateway_unexpected_status")
)

// sandboxPrefix is prepended to every path when running against the
// gateway's sandbox environment.
const sandboxPrefix = "/sandboxnew"

var Module = fx.Module("gateway",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock
}

type Client struct {
	http     *resty.Client
	cfg      config.Config
	log      *zap.Logger
	clock    clock.Clock
	signKeys *cache.TTLCache[string, string]
}

func New(p Params) *Client {
	httpClient := tracing.WrapHTTPClient(&http.Client{Timeout: p.Cfg.Gateway.Timeout})
	rest := resty.NewWithClient(httpClient).
		SetBaseURL(p.Cfg.Gateway.BaseURL).
		SetHeader("Content-Type", wire.ContentType)

	return &Client{
		http:     rest,
		cfg:      p.Cfg,
		log:      p.Log.Named("gateway.client"),
		clock:    p.Clock,
		signKeys: cache.NewTTLCache[string, string](),
	}
}

// Post signs req with the merchant identity, sends it to path, and decodes
// the response. The returned field set is the gateway's full response; a
// non-SUCCESS return_code comes back as ErrRequestRefused alongside the
// decoded fields.
func (c *Client) Post(ctx context.Context, path string, req wire.Values) (wire.Values, error) {
	apiKey, err := c.effectiveKey(ctx)
	if err != nil {
		return nil, err
	}

	body := req.Clone()
	body.Set("appid", c.cfg.AppID)
	body.Set("mch_id", c.cfg.MchID)
	if !body.Has("nonce_str") {
		body.Set("nonce_str", sign.NonceStr())
	}
	body.Set(sign.Field, sign.Compute(body, apiKey))

	return c.post(ctx, c.path(path), body)
}

// post sends an already-signed body and decodes the reply.
func (c *Client) post(ctx context.Context, fullPath string, body wire.Values) (wire.Values, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(wire.Encode(body)).
		Post(fullPath)
	if err != nil {
		return nil, fmt.Errorf("gateway post %s: %w", fullPath, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, fullPath, resp.StatusCode())
	}

	values, err := wire.Decode(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("gateway response %s: %w", fullPath, err)
	}
	if values.Get("return_code") != "SUCCESS" {
		c.log.Warn("gateway refused request",
			zap.String("path", fullPath),
			zap.String("return_msg", values.Get("return_msg")),
		)
		return values, fmt.Errorf("%w: %s", ErrRequestRefused, values.Get("return_msg"))
	}
	return values, nil
}

func (c *Client) path(path string) string {
	if c.cfg.IsSandbox() {
		return sandboxPrefix + path
	}
	return path
}
