package services

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// VerifySignature checks the x-hub-signature header value against the raw
// request body: an HMAC-SHA1 digest keyed with the bot's app secret,
// hex-encoded. The header may carry an algorithm tag ("sha1=<hex>"), which is
// stripped before comparison.
func VerifySignature(body []byte, signature, appSecretKey string) bool {
	if i := strings.IndexByte(signature, '='); i >= 0 {
		signature = signature[i+1:]
	}

	mac := hmac.New(sha1.New, []byte(appSecretKey))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(signature))
}
