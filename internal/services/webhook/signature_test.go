package webhook

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"
)

func testSecret() string {
	return secretPrefix + base64.StdEncoding.EncodeToString([]byte("test-signing-key"))
}

func TestVerifySignature_Valid(t *testing.T) {
	secret := testSecret()
	body := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)
	msgID := "msg_abc"
	ts := fmt.Sprintf("%d", time.Now().Unix())

	sig, err := Sign(secret, msgID, ts, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if err := VerifySignature(secret, msgID, ts, sig, body, 5*time.Minute); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
}

func TestVerifySignature_MultipleEntries(t *testing.T) {
	secret := testSecret()
	body := []byte(`{}`)
	msgID := "msg_abc"
	ts := fmt.Sprintf("%d", time.Now().Unix())

	sig, err := Sign(secret, msgID, ts, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	// A header with an old-version entry and a bogus entry before the
	// valid one still verifies.
	header := "v1a,Zm9v v1,Ym9ndXM= " + sig
	if err := VerifySignature(secret, msgID, ts, header, body, 5*time.Minute); err != nil {
		t.Errorf("signature list with one valid entry rejected: %v", err)
	}
}

func TestVerifySignature_Tampered(t *testing.T) {
	secret := testSecret()
	body := []byte(`{"type":"user.created"}`)
	msgID := "msg_abc"
	ts := fmt.Sprintf("%d", time.Now().Unix())

	sig, err := Sign(secret, msgID, ts, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	err = VerifySignature(secret, msgID, ts, sig, []byte(`{"type":"user.deleted"}`), 5*time.Minute)
	if !errors.Is(err, ErrNoMatchingSig) {
		t.Errorf("tampered body: got %v, want ErrNoMatchingSig", err)
	}

	err = VerifySignature(secret, "msg_other", ts, sig, body, 5*time.Minute)
	if !errors.Is(err, ErrNoMatchingSig) {
		t.Errorf("tampered msg id: got %v, want ErrNoMatchingSig", err)
	}
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	body := []byte(`{}`)
	msgID := "msg_abc"
	ts := fmt.Sprintf("%d", time.Now().Unix())

	sig, err := Sign(testSecret(), msgID, ts, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	other := secretPrefix + base64.StdEncoding.EncodeToString([]byte("other-key"))
	if err := VerifySignature(other, msgID, ts, sig, body, 5*time.Minute); err == nil {
		t.Error("signature verified with the wrong secret")
	}
}

func TestVerifySignature_MissingHeaders(t *testing.T) {
	secret := testSecret()
	ts := fmt.Sprintf("%d", time.Now().Unix())

	tests := []struct {
		name, id, ts, sig string
	}{
		{"no id", "", ts, "v1,abc"},
		{"no timestamp", "msg_abc", "", "v1,abc"},
		{"no signature", "msg_abc", ts, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(secret, tt.id, tt.ts, tt.sig, []byte(`{}`), 5*time.Minute)
			if !errors.Is(err, ErrMissingHeaders) {
				t.Errorf("got %v, want ErrMissingHeaders", err)
			}
		})
	}
}

func TestVerifySignature_TimestampTolerance(t *testing.T) {
	secret := testSecret()
	body := []byte(`{}`)
	msgID := "msg_abc"

	old := fmt.Sprintf("%d", time.Now().Add(-10*time.Minute).Unix())
	sig, err := Sign(secret, msgID, old, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	err = VerifySignature(secret, msgID, old, sig, body, 5*time.Minute)
	if !errors.Is(err, ErrTimestampTooOld) {
		t.Errorf("stale timestamp: got %v, want ErrTimestampTooOld", err)
	}

	// Future timestamps outside tolerance are rejected too.
	future := fmt.Sprintf("%d", time.Now().Add(10*time.Minute).Unix())
	sig, err = Sign(secret, msgID, future, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	err = VerifySignature(secret, msgID, future, sig, body, 5*time.Minute)
	if !errors.Is(err, ErrTimestampTooOld) {
		t.Errorf("future timestamp: got %v, want ErrTimestampTooOld", err)
	}

	// Zero tolerance disables the check.
	if err := VerifySignature(secret, msgID, old, mustSign(t, secret, msgID, old, body), body, 0); err != nil {
		t.Errorf("tolerance disabled: got %v", err)
	}
}

func TestVerifySignature_BadTimestamp(t *testing.T) {
	err := VerifySignature(testSecret(), "msg_abc", "not-a-number", "v1,abc", []byte(`{}`), 5*time.Minute)
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("got %v, want ErrInvalidTimestamp", err)
	}
}

func TestVerifySignature_SecretWithoutPrefix(t *testing.T) {
	// Raw base64 secrets without the provider prefix work the same.
	raw := base64.StdEncoding.EncodeToString([]byte("test-signing-key"))
	body := []byte(`{}`)
	msgID := "msg_abc"
	ts := fmt.Sprintf("%d", time.Now().Unix())

	sig, err := Sign(testSecret(), msgID, ts, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if err := VerifySignature(raw, msgID, ts, sig, body, 5*time.Minute); err != nil {
		t.Errorf("prefix-less secret rejected: %v", err)
	}
}

func mustSign(t *testing.T, secret, msgID, ts string, body []byte) string {
	t.Helper()
	sig, err := Sign(secret, msgID, ts, body)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return sig
}
