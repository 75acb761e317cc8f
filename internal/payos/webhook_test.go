package payos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signPayload(key string, payload string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature_Valid(t *testing.T) {
	c := NewClient("cid", "key", "checksum-secret")

	data := map[string]any{
		"orderCode": float64(123456789),
		"amount":    float64(280000),
		"reference": "TXN1",
	}
	//キー昇順: amount, orderCode, reference
	sig := signPayload("checksum-secret", "amount=280000&orderCode=123456789&reference=TXN1")

	assert.True(t, c.VerifyWebhookSignature(data, sig))
}

func TestVerifyWebhookSignature_Tampered(t *testing.T) {
	c := NewClient("cid", "key", "checksum-secret")

	data := map[string]any{
		"orderCode": float64(123456789),
		"amount":    float64(999999),
		"reference": "TXN1",
	}
	sig := signPayload("checksum-secret", "amount=280000&orderCode=123456789&reference=TXN1")

	assert.False(t, c.VerifyWebhookSignature(data, sig))
}

func TestVerifyWebhookSignature_NullAndBoolValues(t *testing.T) {
	c := NewClient("cid", "key", "checksum-secret")

	data := map[string]any{
		"orderCode": float64(1),
		"desc":      nil,
		"ok":        true,
	}
	sig := signPayload("checksum-secret", "desc=&ok=true&orderCode=1")

	assert.True(t, c.VerifyWebhookSignature(data, sig))
}
