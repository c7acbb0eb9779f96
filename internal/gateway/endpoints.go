package gateway

import (
	"context"
	"strconv"

	"github.com/smallbiznis/wxgate/internal/wxpay/sign"
	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

// QueryOrder looks up a payment by the merchant order number.
func (c *Client) QueryOrder(ctx context.Context, outTradeNo string) (wire.Values, error) {
	return c.Post(ctx, "/pay/orderquery", wire.Values{
		"out_trade_no": outTradeNo,
	})
}

// QueryRefund looks up a refund by the merchant refund number.
func (c *Client) QueryRefund(ctx context.Context, outRefundNo string) (wire.Values, error) {
	return c.Post(ctx, "/pay/refundquery", wire.Values{
		"out_refund_no": outRefundNo,
	})
}

// CloseOrder closes an unpaid order by the merchant order number.
func (c *Client) CloseOrder(ctx context.Context, outTradeNo string) (wire.Values, error) {
	return c.Post(ctx, "/pay/closeorder", wire.Values{
		"out_trade_no": outTradeNo,
	})
}

// BrowserPayParams builds the browser-side payment invocation payload for a
// prepared transaction. Uses the same signature engine as notification
// verification; the gateway validates paySign with the merchant key.
func (c *Client) BrowserPayParams(prepayID string) wire.Values {
	params := wire.Values{
		"appId":     c.cfg.AppID,
		"timeStamp": strconv.FormatInt(c.clock.Now().Unix(), 10),
		"nonceStr":  sign.NonceStr(),
		"package":   "prepay_id=" + prepayID,
		"signType":  sign.TypeMD5,
	}
	params.Set("paySign", sign.Compute(params, c.cfg.APIKey))
	return params
}
