// Package sign implements the gateway's MD5 authentication code. The same
// canonicalization backs both outbound signing (sign / paySign) and inbound
// notification verification; the two must never diverge.
package sign

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

const (
	// Field is the wire name of the signature itself. It never participates
	// in its own computation.
	Field = "sign"

	// TypeMD5 is the sign_type value for this scheme.
	TypeMD5 = "MD5"
)

// Compute canonicalizes the field set and derives the authentication code:
// drop "sign" and empty values, byte-sort the remaining keys, join as
// k=v&...&key=<apiKey>, MD5, uppercase hex.
func Compute(values wire.Values, apiKey string) string {
	keys := make([]string, 0, len(values))
	for key, value := range values {
		if key == Field || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(values[key])
		b.WriteByte('&')
	}
	b.WriteString("key=")
	b.WriteString(apiKey)

	digest := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

// Verify recomputes the code over the field set and compares it against the
// embedded "sign" field. A payload without a sign field never verifies.
func Verify(values wire.Values, apiKey string) bool {
	provided := values.Get(Field)
	if provided == "" {
		return false
	}
	return provided == Compute(values, apiKey)
}

// NonceStr returns a 32-character random nonce for outbound requests.
func NonceStr() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
