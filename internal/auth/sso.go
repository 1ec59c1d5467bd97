package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// DefaultSSOTTL is the maximum age of a signed login payload. Payloads are
// generated per login attempt, so a tight window is fine.
const DefaultSSOTTL = 5 * time.Minute

// ValidateSSOLogin verifies an HMAC-signed login from the main platform. The
// signature covers "handle:timestamp" with the shared secret; the timestamp
// bounds replay.
//
// maxAge <= 0 falls back to DefaultSSOTTL.
func ValidateSSOLogin(handle, timestampStr, signature, sharedSecret string, maxAge time.Duration) error {
	if maxAge <= 0 {
		maxAge = DefaultSSOTTL
	}
	if handle == "" {
		return fmt.Errorf("handle is missing")
	}
	if signature == "" {
		return fmt.Errorf("signature is missing")
	}

	ts, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp is not a valid unix timestamp")
	}
	issuedAt := time.Unix(ts, 0)
	if time.Since(issuedAt) > maxAge {
		return fmt.Errorf("login expired: timestamp is %s old (max %s)", time.Since(issuedAt).Round(time.Second), maxAge)
	}
	// Clock skew tolerance of 1 minute for timestamps from the future.
	if issuedAt.After(time.Now().Add(1 * time.Minute)) {
		return fmt.Errorf("timestamp is in the future")
	}

	payload := fmt.Sprintf("%s:%s", handle, timestampStr)
	expected := hmacSHA256([]byte(sharedSecret), []byte(payload))

	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("signature is not valid hex")
	}
	if !hmac.Equal(expected, got) {
		return fmt.Errorf("invalid signature: data integrity check failed")
	}
	return nil
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
