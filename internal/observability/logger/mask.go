package logger

import (
	"strings"

	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

// Field names whose values never reach a log line unmasked. The gateway
// signature proves possession of the merchant secret, so it is treated the
// same as the secret itself.
var sensitiveKeys = []string{
	"sign",
	"pay_sign",
	"paysign",
	"api_key",
	"apikey",
	"secret",
	"sandbox_signkey",
	"authorization",
}

// MaskSignature keeps the last four characters of a signature for
// correlation and hides the rest.
func MaskSignature(value string) string {
	return maskLast4(value)
}

// MaskValues returns a copy of the field set safe for logging.
func MaskValues(values wire.Values) map[string]string {
	masked := make(map[string]string, len(values))
	for key, value := range values {
		if isSensitiveKey(key) {
			masked[key] = maskLast4(value)
			continue
		}
		masked[key] = value
	}
	return masked
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func maskLast4(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
