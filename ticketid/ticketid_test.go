package ticketid

import (
	"bytes"
	"crypto"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^EVT_1700000000123_[0-9A-F]{8}(_[0-9]+)?$`)

var purchasedAt = time.Unix(0, 1700000000123*int64(time.Millisecond))

func TestGenerateFormat(t *testing.T) {
	g := New("evt")
	nonce := bytes.Repeat([]byte{1}, nonceSize)

	first, err := g.Generate(Input{BuyerID: "buyer-1", EventID: "event-1", PurchasedAt: purchasedAt, Nonce: nonce})
	require.Nil(t, err)
	assert.Regexp(t, idPattern, first)
	assert.NotContains(t, first, "buyer-1")

	second, err := g.Generate(Input{BuyerID: "buyer-1", EventID: "event-1", PurchasedAt: purchasedAt, Sequence: 1, Nonce: nonce})
	require.Nil(t, err)
	assert.Equal(t, first+"_2", second)
	assert.Equal(t, first, Root(second))
	assert.Equal(t, first, Root(first))
}

func TestGenerateSiblingsAreDistinct(t *testing.T) {
	g := New(DefaultBrand)
	nonce, err := g.NewNonce()
	require.Nil(t, err)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		id, err := g.Generate(Input{BuyerID: "b", EventID: "e", PurchasedAt: purchasedAt, Sequence: i, Nonce: nonce})
		require.Nil(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerateSameMillisecondDifferentOrders(t *testing.T) {
	g := New(DefaultBrand)
	a, err := g.Generate(Input{BuyerID: "b", EventID: "e", PurchasedAt: purchasedAt, Nonce: []byte("order-a")})
	require.Nil(t, err)
	b, err := g.Generate(Input{BuyerID: "b", EventID: "e", PurchasedAt: purchasedAt, Nonce: []byte("order-b")})
	require.Nil(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateFailsClosedWhenHashUnavailable(t *testing.T) {
	g := New(DefaultBrand, WithHash(crypto.MD4))

	id, err := g.Generate(Input{BuyerID: "b", EventID: "e", PurchasedAt: purchasedAt})
	assert.Equal(t, "", id)
	assert.True(t, errors.Is(err, ErrDigestUnavailable))
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	g := New(DefaultBrand)

	_, err := g.Generate(Input{EventID: "e", PurchasedAt: purchasedAt})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = g.Generate(Input{BuyerID: "b", EventID: "e", PurchasedAt: purchasedAt, Sequence: -1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNewNonceFailsClosed(t *testing.T) {
	g := New(DefaultBrand, WithRand(failingReader{}))

	nonce, err := g.NewNonce()
	assert.Nil(t, nonce)
	assert.True(t, errors.Is(err, ErrDigestUnavailable))
}

func TestRootWithUnderscoredBrand(t *testing.T) {
	g := New("eventers_ug")
	nonce := bytes.Repeat([]byte{2}, nonceSize)

	first, err := g.Generate(Input{BuyerID: "buyer-1", EventID: "event-1", PurchasedAt: purchasedAt, Nonce: nonce})
	require.Nil(t, err)
	third, err := g.Generate(Input{BuyerID: "buyer-1", EventID: "event-1", PurchasedAt: purchasedAt, Sequence: 2, Nonce: nonce})
	require.Nil(t, err)

	assert.Equal(t, first, Root(first))
	assert.Equal(t, first, Root(third))
	assert.Equal(t, "not-an-id", Root("not-an-id"))
}
