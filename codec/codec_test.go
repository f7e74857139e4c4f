package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T) *Codec {
	c, err := New([]byte("issuing-secret"))
	require.Nil(t, err, "expected err to be nil")
	return c
}

func TestRoundTrip(t *testing.T) {
	c := newCodec(t)

	cases := []Claims{
		{TicketID: "EVT_1700000000123_9F2C44AB", EventID: "event-1", BuyerID: "buyer-1", TicketTypeID: "vip"},
		{TicketID: "EVT_1700000000123_9F2C44AB_2", EventID: "e.with.dots", BuyerID: "b|pipe", TicketTypeID: "regular"},
		{TicketID: "t", EventID: "ünïcode", BuyerID: "+256771234567", TicketTypeID: "early bird"},
	}

	for _, want := range cases {
		payload, err := c.Encode(want)
		require.Nil(t, err)

		got, err := c.Decode(payload)
		require.Nil(t, err)
		assert.Equal(t, want, got)

		again, err := c.Encode(got)
		require.Nil(t, err)
		assert.Equal(t, payload, again)
	}
}

func TestDecodeRejectsFlippedTagBytes(t *testing.T) {
	c := newCodec(t)
	claims := Claims{TicketID: "t-1", EventID: "e-1", BuyerID: "b-1", TicketTypeID: "tt-1"}
	payload, err := c.Encode(claims)
	require.Nil(t, err)

	tagStart := strings.LastIndex(payload, separator) + 1
	for i := tagStart; i < len(payload); i++ {
		for bit := uint(0); bit < 8; bit++ {
			b := []byte(payload)
			b[i] ^= 1 << bit
			got, err := c.Decode(string(b))
			assert.True(t, errors.Is(err, ErrTagMismatch), "byte %d bit %d: %q -> %q: got %v", i, bit, payload[i], b[i], err)
			assert.Equal(t, Claims{}, got)
		}
	}
}

func TestDecodeRejectsUppercaseTag(t *testing.T) {
	c := newCodec(t)
	payload, err := c.Encode(Claims{TicketID: "t-1", EventID: "e-1", BuyerID: "b-1", TicketTypeID: "tt-1"})
	require.Nil(t, err)

	cut := strings.LastIndex(payload, separator) + 1
	upper := payload[:cut] + strings.ToUpper(payload[cut:])
	require.NotEqual(t, payload, upper)

	_, err = c.Decode(upper)
	assert.True(t, errors.Is(err, ErrTagMismatch))
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	other, err := New([]byte("another-secret"))
	require.Nil(t, err)
	payload, err := other.Encode(Claims{TicketID: "t-1", EventID: "e-1", BuyerID: "b-1", TicketTypeID: "tt-1"})
	require.Nil(t, err)

	_, err = newCodec(t).Decode(payload)
	assert.True(t, errors.Is(err, ErrTagMismatch))
}

func TestDecodeRejectsTamperedField(t *testing.T) {
	c := newCodec(t)
	payload, err := c.Encode(Claims{TicketID: "t-1", EventID: "e-1", BuyerID: "b-1", TicketTypeID: "tt-1"})
	require.Nil(t, err)

	parts := strings.Split(payload, separator)
	parts[2] = encoding.EncodeToString([]byte("e-2"))
	_, err = c.Decode(strings.Join(parts, separator))
	assert.True(t, errors.Is(err, ErrTagMismatch))
}

func TestDecodeMalformed(t *testing.T) {
	c := newCodec(t)

	for _, payload := range []string{
		"",
		"garbage",
		"v1.a.b.c",
		"v2.dA.ZQ.Yg.dHQ.00",
		"v1.dA.ZQ.Yg.!!.00",
		"v1.dA..Yg.dHQ.00",
	} {
		_, err := c.Decode(payload)
		assert.True(t, errors.Is(err, ErrMalformedPayload), "payload %q: got %v", payload, err)
	}
}

func TestEncodeRejectsEmptyField(t *testing.T) {
	_, err := newCodec(t).Encode(Claims{TicketID: "t", EventID: "e", BuyerID: "", TicketTypeID: "tt"})
	assert.True(t, errors.Is(err, ErrMalformedPayload))
}

func TestNewRejectsEmptySecret(t *testing.T) {
	c, err := New(nil)
	assert.Nil(t, c)
	assert.Equal(t, ErrEmptySecret, err)
}
