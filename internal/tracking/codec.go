// Package tracking encodes invoice IDs into tamper-evident tokens used in
// open-pixel and click-through URLs.
package tracking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// signatureLength is the number of hex characters kept from the HMAC
const signatureLength = 16

var (
	// ErrMalformedToken is returned when a token cannot be decoded
	ErrMalformedToken = errors.New("malformed tracking token")

	// ErrInvalidSignature is returned when a token was not signed with this secret
	ErrInvalidSignature = errors.New("invalid tracking token signature")
)

type payload struct {
	ID  string `json:"id"`
	Sig string `json:"sig"`
}

// Codec signs and verifies tracking tokens
type Codec struct {
	secret []byte
}

// NewCodec creates a codec keyed with secret
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("tracking secret is required")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode returns base64url(JSON{id, sig}) without padding
func (c *Codec) Encode(id string) string {
	data, _ := json.Marshal(payload{ID: id, Sig: c.sign(id)})
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode verifies a token and returns the ID it carries
func (c *Codec) Decode(token string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if p.ID == "" || p.Sig == "" {
		return "", ErrMalformedToken
	}

	if !hmac.Equal([]byte(p.Sig), []byte(c.sign(p.ID))) {
		return "", ErrInvalidSignature
	}

	return p.ID, nil
}

// SignTarget returns the signature binding a click-through target to the
// invoice ID, so a token cannot be reused to redirect elsewhere
func (c *Codec) SignTarget(id, target string) string {
	return c.sign(id + "\x00" + target)
}

// VerifyTarget checks a signature made by SignTarget
func (c *Codec) VerifyTarget(id, target, sig string) error {
	if sig == "" || !hmac.Equal([]byte(sig), []byte(c.SignTarget(id, target))) {
		return ErrInvalidSignature
	}
	return nil
}

func (c *Codec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))[:signatureLength]
}
