// Package auth issues and verifies the tokens gate devices present when scanning.
package auth

import (
	"errors"
	"fmt"
	"time"

	"eventers-ticketing/clock"

	"github.com/dgrijalva/jwt-go"
)

const issuer = "eventers-ticketing"

var (
	ErrInvalidToken = errors.New("auth: invalid gate token")
	ErrEmptySecret  = errors.New("auth: empty signing secret")
)

// GateClaims binds a scanning device to the one event it is gating.
type GateClaims struct {
	GateID  string `json:"gate_id"`
	EventID string `json:"event_id"`
	jwt.StandardClaims
}

type Gate struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewGate(secret []byte, ttl time.Duration, c clock.Clock) (*Gate, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if c == nil {
		c = clock.NewSystem()
	}
	return &Gate{secret: secret, ttl: ttl, clock: c}, nil
}

// Issue signs an HS256 token for gateID scanning eventID.
func (g *Gate) Issue(gateID, eventID string) (string, error) {
	if gateID == "" || eventID == "" {
		return "", fmt.Errorf("issue: gate and event are required")
	}

	now := g.clock.Now()
	claims := GateClaims{
		GateID:  gateID,
		EventID: eventID,
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   gateID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(g.ttl).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("issue: unable to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and issuer, and returns the gate's claims.
func (g *Gate) Verify(token string) (*GateClaims, error) {
	claims := &GateClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify: %w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("verify: %w", ErrInvalidToken)
	}
	if !claims.VerifyIssuer(issuer, true) {
		return nil, fmt.Errorf("verify: %w: issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.GateID == "" || claims.EventID == "" {
		return nil, fmt.Errorf("verify: %w: missing gate or event", ErrInvalidToken)
	}
	return claims, nil
}
