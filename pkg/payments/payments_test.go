package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(999), minorUnits(9.99))
	assert.Equal(t, int64(100), minorUnits(1.0))
	assert.Equal(t, int64(0), minorUnits(0))
	// rounding, not truncation
	assert.Equal(t, int64(30), minorUnits(0.295))
}

func TestItemMetadata(t *testing.T) {
	md := ItemMetadata("bob", "Widget", 9.99, "USD", "https://img/u1")
	assert.Equal(t, map[string]string{
		"username": "bob",
		"name":     "Widget",
		"price":    "9.99",
		"currency": "USD",
		"image":    "https://img/u1",
	}, md)
}

func TestNewCheckoutSessionEmptyCart(t *testing.T) {
	_, err := NewCheckoutSession(context.Background(), "sk_test_x", CheckoutInput{})
	assert.ErrorIs(t, err, ErrNoItems)
}

func signPayload(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()
	signed := fmt.Sprintf("%d.%s", at.Unix(), payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signed))
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyEvent(t *testing.T) {
	const secret = "whsec_test_secret"
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)

	t.Run("ValidSignature", func(t *testing.T) {
		header := signPayload(t, payload, secret, time.Now())
		event, err := VerifyEvent(payload, header, secret)
		require.NoError(t, err)
		assert.Equal(t, EventCheckoutCompleted, string(event.Type))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		header := signPayload(t, payload, "whsec_other", time.Now())
		_, err := VerifyEvent(payload, header, secret)
		assert.Error(t, err)
	})

	t.Run("GarbageHeader", func(t *testing.T) {
		_, err := VerifyEvent(payload, "not-a-signature", secret)
		assert.Error(t, err)
	})

	t.Run("UnrecognizedTypeStillVerifies", func(t *testing.T) {
		other := []byte(`{"id":"evt_2","object":"event","type":"invoice.created","data":{"object":{}}}`)
		header := signPayload(t, other, secret, time.Now())
		event, err := VerifyEvent(other, header, secret)
		require.NoError(t, err)
		assert.Equal(t, "invoice.created", string(event.Type))
	})
}
