// Package codec signs and verifies the payload embedded in a ticket's QR code.
//
// A payload is five dot separated segments after a version tag:
//
//	v1.<ticket id>.<event id>.<buyer id>.<ticket type id>.<tag>
//
// Fields are raw URL base64 so they may hold any bytes. The tag is the hex HMAC-SHA256 of
// everything before the last dot in lowercase, keyed with a key derived from the issuing secret.
package codec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	version   = "v1"
	separator = "."
	segments  = 6
	keySize   = 32
)

var hkdfInfo = []byte("eventers-ticketing qr payload v1")

var (
	ErrMalformedPayload = errors.New("codec: malformed payload")
	ErrTagMismatch      = errors.New("codec: tag mismatch")
	ErrEmptySecret      = errors.New("codec: empty secret")
)

var encoding = base64.RawURLEncoding

// Claims are the fields carried by a QR payload.
type Claims struct {
	TicketID     string `json:"ticket_id"`
	EventID      string `json:"event_id"`
	BuyerID      string `json:"buyer_id"`
	TicketTypeID string `json:"ticket_type_id"`
}

func (c Claims) fields() []string {
	return []string{c.TicketID, c.EventID, c.BuyerID, c.TicketTypeID}
}

type Codec struct {
	key []byte
}

// New derives the tag key from secret. An empty secret is refused.
func New(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("new: could not derive key: %w", err)
	}
	return &Codec{key: key}, nil
}

func (c *Codec) Encode(claims Claims) (string, error) {
	parts := make([]string, 0, segments)
	parts = append(parts, version)
	for _, f := range claims.fields() {
		if f == "" {
			return "", fmt.Errorf("encode: %w: empty field", ErrMalformedPayload)
		}
		parts = append(parts, encoding.EncodeToString([]byte(f)))
	}
	body := strings.Join(parts, separator)
	return body + separator + hex.EncodeToString(c.tag(body)), nil
}

// Decode verifies payload and returns its claims. It never touches storage.
func (c *Codec) Decode(payload string) (Claims, error) {
	cut := strings.LastIndex(payload, separator)
	if cut < 0 {
		return Claims{}, fmt.Errorf("decode: %w: no tag", ErrMalformedPayload)
	}
	body, tag := payload[:cut], payload[cut+1:]

	parts := strings.Split(body, separator)
	if len(parts) != segments-1 {
		return Claims{}, fmt.Errorf("decode: %w: %d segments", ErrMalformedPayload, len(parts)+1)
	}
	if parts[0] != version {
		return Claims{}, fmt.Errorf("decode: %w: unknown version %q", ErrMalformedPayload, parts[0])
	}

	fields := make([]string, 0, segments-2)
	for i, p := range parts[1:] {
		b, err := encoding.DecodeString(p)
		if err != nil {
			return Claims{}, fmt.Errorf("decode: %w: field %d: %v", ErrMalformedPayload, i, err)
		}
		if len(b) == 0 {
			return Claims{}, fmt.Errorf("decode: %w: field %d empty", ErrMalformedPayload, i)
		}
		fields = append(fields, string(b))
	}

	// The tag is compared as text so that only the exact lowercase encoding verifies.
	want := hex.EncodeToString(c.tag(body))
	if !hmac.Equal([]byte(tag), []byte(want)) {
		return Claims{}, ErrTagMismatch
	}

	return Claims{
		TicketID:     fields[0],
		EventID:      fields[1],
		BuyerID:      fields[2],
		TicketTypeID: fields[3],
	}, nil
}

func (c *Codec) tag(body string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(body))
	return mac.Sum(nil)
}
