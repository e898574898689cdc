package session

import (
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec("test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	payload := Payload{VSID: "vs_abc123", CreatedAt: 1700000000000}
	token, err := c.Issue(payload)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if !strings.Contains(token, ".") {
		t.Fatalf("token %q has no separator", token)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token %q contains characters outside the url-safe alphabet", token)
	}

	got, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got == nil {
		t.Fatal("Verify returned nil for a valid token")
	}
	if *got != payload {
		t.Errorf("Verify = %+v, want %+v", *got, payload)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	c1 := newTestCodec(t)
	c2, err := NewCodec("different-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, err := c1.Issue(Payload{VSID: "vs_abc", CreatedAt: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := c2.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != nil {
		t.Errorf("token issued under one secret verified under another")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	c := newTestCodec(t)

	token, err := c.Issue(Payload{VSID: "vs_abc", CreatedAt: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Flip one character in the signature segment.
	i := strings.IndexByte(token, '.') + 1
	mutated := []byte(token)
	if mutated[i] == 'A' {
		mutated[i] = 'B'
	} else {
		mutated[i] = 'A'
	}

	got, err := c.Verify(string(mutated))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != nil {
		t.Error("tampered signature accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c := newTestCodec(t)

	for _, token := range []string{"", "no-separator", "a.b.c.d", "...."} {
		got, err := c.Verify(token)
		if err != nil {
			t.Errorf("Verify(%q) returned error: %v", token, err)
		}
		if got != nil {
			t.Errorf("Verify(%q) accepted garbage", token)
		}
	}
}

func TestVerifyValidSignatureBadPayload(t *testing.T) {
	c := newTestCodec(t)

	// A correctly signed token whose payload is not JSON should surface a
	// genuine error: it cannot come from this codec's Issue.
	body := "bm90IGpzb24" // "not json"
	token := body + "." + c.sign(body)

	if _, err := c.Verify(token); err == nil {
		t.Error("expected error for signed non-JSON payload")
	}
}

func TestIsExpired(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UnixMilli()
	ttl := c.TTL().Milliseconds()

	if c.IsExpired(now) {
		t.Error("fresh session reported expired")
	}
	// Inside the window with a minute to spare: valid.
	if c.IsExpired(now - ttl + time.Minute.Milliseconds()) {
		t.Error("session inside TTL reported expired")
	}
	// Past the window: expired.
	if !c.IsExpired(now - ttl - time.Minute.Milliseconds()) {
		t.Error("session past TTL reported valid")
	}
}

func TestIsExpiredBoundary(t *testing.T) {
	c := newTestCodec(t)

	// Pin the clock so the boundary is exact.
	fixed := time.UnixMilli(1_700_000_000_000)
	c.now = func() time.Time { return fixed }
	ttl := c.TTL().Milliseconds()

	if c.IsExpired(fixed.UnixMilli() - ttl) {
		t.Error("session exactly TTL old must still be valid")
	}
	if !c.IsExpired(fixed.UnixMilli() - ttl - 1) {
		t.Error("session one millisecond past TTL must be expired")
	}
}
