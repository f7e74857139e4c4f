// Package ticketid produces the human-shareable ticket identifiers printed on every ticket.
//
// An id looks like EVT_1700000000000_9F2C44AB, with a _2, _3, ... suffix for the siblings of a
// multi-ticket order. The hex part is a prefix of a cryptographic digest over the buyer, the
// event, the purchase millisecond and a per-order nonce, so it neither exposes the buyer nor
// can be predicted from public data.
package ticketid

import (
	"crypto"
	"crypto/rand"
	_ "crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBrand = "EVT"
	digestWidth  = 8
	nonceSize    = 16
)

var (
	ErrDigestUnavailable = errors.New("ticketid: digest unavailable")
	ErrInvalidInput      = errors.New("ticketid: invalid input")
)

// Input identifies one ticket of one order.
type Input struct {
	BuyerID     string
	EventID     string
	PurchasedAt time.Time
	Sequence    int
	Nonce       []byte
}

type Generator struct {
	brand string
	hash  crypto.Hash
	rand  io.Reader
}

type Option func(*Generator)

// WithHash swaps the digest. The hash must be linked into the binary or generation fails.
func WithHash(h crypto.Hash) Option {
	return func(g *Generator) { g.hash = h }
}

func WithRand(r io.Reader) Option {
	return func(g *Generator) { g.rand = r }
}

func New(brand string, opts ...Option) *Generator {
	if brand == "" {
		brand = DefaultBrand
	}
	g := &Generator{
		brand: strings.ToUpper(brand),
		hash:  crypto.SHA256,
		rand:  rand.Reader,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewNonce draws the per-order nonce shared by all siblings of one order.
func (g *Generator) NewNonce() ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(g.rand, nonce); err != nil {
		return nil, fmt.Errorf("newNonce: %w: %v", ErrDigestUnavailable, err)
	}
	return nonce, nil
}

// Generate computes the id for in. The digest is recomputed for every call.
func (g *Generator) Generate(in Input) (string, error) {
	if in.BuyerID == "" || in.EventID == "" || in.Sequence < 0 {
		return "", fmt.Errorf("generate: %w: buyer=%t event=%t sequence=%d", ErrInvalidInput, in.BuyerID != "", in.EventID != "", in.Sequence)
	}
	if !g.hash.Available() {
		return "", fmt.Errorf("generate: %w: hash %d not linked", ErrDigestUnavailable, g.hash)
	}

	millis := strconv.FormatInt(in.PurchasedAt.UnixNano()/int64(time.Millisecond), 10)

	h := g.hash.New()
	h.Write([]byte(in.BuyerID))
	h.Write([]byte{0})
	h.Write([]byte(in.EventID))
	h.Write([]byte{0})
	h.Write([]byte(millis))
	h.Write([]byte{0})
	h.Write(in.Nonce)
	digest := strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
	if len(digest) < digestWidth {
		return "", fmt.Errorf("generate: %w: digest too short", ErrDigestUnavailable)
	}

	id := fmt.Sprintf("%s_%s_%s", g.brand, millis, digest[:digestWidth])
	if in.Sequence > 0 {
		id = fmt.Sprintf("%s_%d", id, in.Sequence+1)
	}
	return id, nil
}

var siblingID = regexp.MustCompile(`^(.+_[0-9]+_[0-9A-F]{8})_[0-9]+$`)

// Root strips a sibling suffix, returning the id shared by every ticket of the order. The
// brand may itself contain underscores.
func Root(id string) string {
	if m := siblingID.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return id
}
