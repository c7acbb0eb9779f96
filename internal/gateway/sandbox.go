package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/wxgate/internal/wxpay/sign"
	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

const (
	signKeyCacheKey = "sandbox_signkey"
	signKeyTTL      = 12 * time.Hour
	signKeyPath     = sandboxPrefix + "/pay/getsignkey"
)

// effectiveKey returns the API key outbound requests must be signed with.
// In production that is the merchant key; in sandbox the gateway issues a
// dedicated sign key, obtained via getsignkey (itself signed with the
// production key) and cached until rotation.
func (c *Client) effectiveKey(ctx context.Context) (string, error) {
	if !c.cfg.IsSandbox() {
		return c.cfg.APIKey, nil
	}
	if key, ok := c.signKeys.Get(signKeyCacheKey); ok {
		return key, nil
	}

	req := wire.Values{
		"mch_id":    c.cfg.MchID,
		"nonce_str": sign.NonceStr(),
	}
	req.Set(sign.Field, sign.Compute(req, c.cfg.APIKey))

	values, err := c.post(ctx, signKeyPath, req)
	if err != nil {
		return "", fmt.Errorf("fetch sandbox sign key: %w", err)
	}
	key := values.Get("sandbox_signkey")
	if key == "" {
		return "", fmt.Errorf("%w: getsignkey answered without sandbox_signkey", ErrRequestRefused)
	}

	c.signKeys.Set(signKeyCacheKey, key, signKeyTTL)
	c.log.Info("sandbox sign key refreshed")
	return key, nil
}
