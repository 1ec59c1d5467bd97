package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
)

func signLogin(secret, handle string, issuedAt time.Time) (string, string) {
	ts := strconv.FormatInt(issuedAt.Unix(), 10)
	sig := hmacSHA256([]byte(secret), []byte(fmt.Sprintf("%s:%s", handle, ts)))
	return ts, hex.EncodeToString(sig)
}

func TestValidateSSOLogin_Valid(t *testing.T) {
	secret := "shared-secret-12345"
	ts, sig := signLogin(secret, "artist_one", time.Now().Add(-30*time.Second))

	if err := ValidateSSOLogin("artist_one", ts, sig, secret, 5*time.Minute); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateSSOLogin_Expired(t *testing.T) {
	secret := "shared-secret-12345"
	ts, sig := signLogin(secret, "artist_one", time.Now().Add(-10*time.Minute))

	err := ValidateSSOLogin("artist_one", ts, sig, secret, 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for expired login")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Errorf("expected 'expired' in error, got: %s", err.Error())
	}
}

func TestValidateSSOLogin_FutureTimestamp(t *testing.T) {
	secret := "shared-secret-12345"
	ts, sig := signLogin(secret, "artist_one", time.Now().Add(5*time.Minute))

	err := ValidateSSOLogin("artist_one", ts, sig, secret, 5*time.Minute)
	if err == nil {
		t.Fatal("expected error for future timestamp")
	}
	if !strings.Contains(err.Error(), "future") {
		t.Errorf("expected 'future' in error, got: %s", err.Error())
	}
}

func TestValidateSSOLogin_DefaultMaxAge(t *testing.T) {
	secret := "shared-secret-12345"
	ts, sig := signLogin(secret, "artist_one", time.Now().Add(-10*time.Second))

	if err := ValidateSSOLogin("artist_one", ts, sig, secret, 0); err != nil {
		t.Fatalf("expected no error with default maxAge, got: %v", err)
	}
}

func TestValidateSSOLogin_WrongHandle(t *testing.T) {
	secret := "shared-secret-12345"
	ts, sig := signLogin(secret, "artist_one", time.Now())

	if err := ValidateSSOLogin("someone_else", ts, sig, secret, 5*time.Minute); err == nil {
		t.Fatal("expected error for signature over a different handle")
	}
}

func TestValidateSSOLogin_InvalidSignature(t *testing.T) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	if err := ValidateSSOLogin("artist_one", ts, "deadbeef", "secret", 5*time.Minute); err == nil {
		t.Fatal("expected error for invalid signature")
	}
}

func TestValidateSSOLogin_MissingFields(t *testing.T) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	if err := ValidateSSOLogin("", ts, "sig", "secret", 0); err == nil {
		t.Fatal("expected error for missing handle")
	}
	if err := ValidateSSOLogin("artist_one", ts, "", "secret", 0); err == nil {
		t.Fatal("expected error for missing signature")
	}
	if err := ValidateSSOLogin("artist_one", "not-a-number", "sig", "secret", 0); err == nil {
		t.Fatal("expected error for bad timestamp")
	}
}

func TestHmacSHA256(t *testing.T) {
	key := []byte("test-key")
	data := []byte("test-data")

	result := hmacSHA256(key, data)

	h := hmac.New(sha256.New, key)
	h.Write(data)
	expected := h.Sum(nil)

	if !hmac.Equal(result, expected) {
		t.Error("hmacSHA256 result doesn't match expected")
	}
}
