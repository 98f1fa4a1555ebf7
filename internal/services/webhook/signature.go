package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// secretPrefix marks a base64-encoded webhook signing secret as issued by
// the identity provider's dashboard.
const secretPrefix = "whsec_"

var (
	ErrMissingHeaders   = errors.New("missing webhook signature headers")
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")
	ErrTimestampTooOld  = errors.New("webhook timestamp outside tolerance")
	ErrNoMatchingSig    = errors.New("no matching webhook signature")
)

// VerifySignature checks a signed webhook delivery. The signed content is
// "{id}.{timestamp}.{body}" and the signature header carries one or more
// space-separated "v1,<base64>" entries; any match accepts the delivery.
// Comparison is constant-time.
func VerifySignature(secret, msgID, msgTimestamp, sigHeader string, body []byte, tolerance time.Duration) error {
	if msgID == "" || msgTimestamp == "" || sigHeader == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(msgTimestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	if tolerance > 0 {
		now := time.Now().Unix()
		diff := now - ts
		if diff < 0 {
			diff = -diff
		}
		if diff > int64(tolerance.Seconds()) {
			return ErrTimestampTooOld
		}
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(msgTimestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, entry := range strings.Fields(sigHeader) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return ErrNoMatchingSig
}

// decodeSecret strips the provider prefix and base64-decodes the key.
func decodeSecret(secret string) ([]byte, error) {
	raw := strings.TrimPrefix(secret, secretPrefix)
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.New("invalid webhook secret encoding")
	}
	return key, nil
}

// Sign computes the "v1,<base64>" signature entry for a delivery. Used by
// tests and by local delivery tooling.
func Sign(secret, msgID, msgTimestamp string, body []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(msgTimestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
