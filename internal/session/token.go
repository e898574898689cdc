package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Payload is the session state carried inside a token. The token is the only
// place this state lives; there is no server-side session table. The payload
// is signed but not encrypted, so it must never carry anything the holder is
// not allowed to see.
type Payload struct {
	VSID      string `json:"vsid"`
	CreatedAt int64  `json:"createdAt"`
}

// Codec issues and verifies stateless session tokens of the form
// base64url(JSON payload) + "." + base64url(HMAC-SHA256(payload)),
// both segments unpadded. Any instance holding the same secret can
// verify a token issued by any other.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates a Codec. An empty secret is a configuration error: a
// missing secret must never silently produce a predictable signature.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("missing session signing secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue serializes and signs the payload.
func (c *Codec) Issue(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding session payload: %w", err)
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	return body + "." + c.sign(body), nil
}

// Verify checks the token's signature and decodes its payload. A missing,
// malformed, or tampered token yields (nil, nil): callers must treat every
// verification failure as "no session", never as a distinct error class.
// A decode failure after a valid signature is a genuine error; it cannot
// happen for tokens this codec issued.
func (c *Codec) Verify(token string) (*Payload, error) {
	if token == "" {
		return nil, nil
	}
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, nil
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(body))) {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decoding session payload: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing session payload: %w", err)
	}
	return &p, nil
}

// IsExpired reports whether a session created at the given epoch-millisecond
// timestamp has outlived the configured TTL. The boundary is strict: a
// session exactly TTL old is still valid.
func (c *Codec) IsExpired(createdAtMs int64) bool {
	return c.now().UnixMilli()-createdAtMs > c.ttl.Milliseconds()
}

// TTL returns the configured session lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) sign(body string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// HeaderName is the request header clients present their session token in.
const HeaderName = "x-session-token"

// FromRequest extracts and verifies the session token from the request
// header. It returns nil whenever the request carries no usable session.
func FromRequest(c *Codec, r *http.Request) *Payload {
	p, err := c.Verify(r.Header.Get(HeaderName))
	if err != nil || p == nil || p.VSID == "" {
		return nil
	}
	return p
}
