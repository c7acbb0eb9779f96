package sign

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

func TestComputeMatchesCanonicalString(t *testing.T) {
	got := Compute(wire.Values{"appid": "A", "mch_id": "B"}, "K")

	digest := md5.Sum([]byte("appid=A&mch_id=B&key=K"))
	want := strings.ToUpper(hex.EncodeToString(digest[:]))
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestComputeKnownGatewayVector(t *testing.T) {
	values := wire.Values{
		"appid":       "wxd930ea5d5a258f4f",
		"mch_id":      "10000100",
		"device_info": "1000",
		"body":        "test",
		"nonce_str":   "ibuaiVcKdpRxkhJA",
	}
	got := Compute(values, "192006250b4c09247ec02edce69f6a2d")
	if got != "9A0A8659F005D6984697E2CA0A9CF3B7" {
		t.Fatalf("expected gateway documentation vector, got %s", got)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	values := wire.Values{
		"out_trade_no": "1409811653",
		"total_fee":    "1",
		"appid":        "wx2421b1c4370ec43b",
	}
	first := Compute(values, "secret")
	second := Compute(values, "secret")
	if first != second {
		t.Fatalf("expected identical signatures, got %s and %s", first, second)
	}
}

func TestComputeIgnoresSignField(t *testing.T) {
	values := wire.Values{"appid": "A", "mch_id": "B"}
	base := Compute(values, "K")

	withSign := values.Clone()
	withSign.Set(Field, "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF")
	if got := Compute(withSign, "K"); got != base {
		t.Fatalf("sign field must not affect the computation: %s != %s", got, base)
	}
}

func TestComputeIgnoresEmptyValues(t *testing.T) {
	values := wire.Values{"appid": "A", "mch_id": "B"}
	base := Compute(values, "K")

	withEmpty := values.Clone()
	withEmpty.Set("attach", "")
	if got := Compute(withEmpty, "K"); got != base {
		t.Fatalf("empty values must be dropped: %s != %s", got, base)
	}
}

func TestComputeIsInsertionOrderIndependent(t *testing.T) {
	a := wire.Values{}
	a.Set("appid", "A")
	a.Set("total_fee", "1")
	a.Set("mch_id", "B")

	b := wire.Values{}
	b.Set("total_fee", "1")
	b.Set("mch_id", "B")
	b.Set("appid", "A")

	if Compute(a, "K") != Compute(b, "K") {
		t.Fatalf("insertion order changed the signature")
	}
}

func TestComputeEmptyFieldSet(t *testing.T) {
	digest := md5.Sum([]byte("key=K"))
	want := strings.ToUpper(hex.EncodeToString(digest[:]))
	if got := Compute(wire.Values{}, "K"); got != want {
		t.Fatalf("expected %s over bare key segment, got %s", want, got)
	}
}

func TestComputeShape(t *testing.T) {
	got := Compute(wire.Values{"appid": "A"}, "K")
	if len(got) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(got))
	}
	if got != strings.ToUpper(got) {
		t.Fatalf("expected uppercase hex, got %s", got)
	}
}

func TestVerify(t *testing.T) {
	values := wire.Values{"appid": "A", "mch_id": "B"}
	values.Set(Field, Compute(values, "K"))

	if !Verify(values, "K") {
		t.Fatalf("expected a self-signed set to verify")
	}
	if Verify(values, "other") {
		t.Fatalf("expected verification to fail under a different key")
	}

	values.Set("total_fee", "100")
	if Verify(values, "K") {
		t.Fatalf("expected verification to fail after tampering")
	}
}

func TestVerifyMissingSign(t *testing.T) {
	if Verify(wire.Values{"appid": "A"}, "K") {
		t.Fatalf("expected a set without a sign field to fail verification")
	}
}

func TestNonceStr(t *testing.T) {
	a := NonceStr()
	b := NonceStr()
	if len(a) != 32 {
		t.Fatalf("expected 32 characters, got %d", len(a))
	}
	if a == b {
		t.Fatalf("expected distinct nonces")
	}
	if strings.Contains(a, "-") {
		t.Fatalf("nonce must not contain separators: %s", a)
	}
}
