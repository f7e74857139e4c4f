package commission

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeReferenceScenario(t *testing.T) {
	c, err := New(DefaultRateBPS)
	require.Nil(t, err)

	split, err := c.Compute(10000, 2)
	require.Nil(t, err)
	assert.Equal(t, Split{Gross: 20000, Commission: 1000, Net: 19000}, split)
}

func TestComputeRoundsHalfUp(t *testing.T) {
	c, err := New(DefaultRateBPS)
	require.Nil(t, err)

	cases := []struct {
		unitPrice  int64
		commission int64
	}{
		{10, 1}, // 0.5 rounds up
		{9, 0},  // 0.45 rounds down
		{30, 2}, // 1.5 rounds up
		{29, 1}, // 1.45 rounds down
		{1, 0},  // 0.05
		{0, 0},
	}
	for _, tc := range cases {
		split, err := c.Compute(tc.unitPrice, 1)
		require.Nil(t, err)
		assert.Equal(t, tc.commission, split.Commission, "unit price %d", tc.unitPrice)
	}
}

func TestComputeExactSum(t *testing.T) {
	for _, bps := range []int64{0, 1, 250, 500, 777, 10000} {
		c, err := New(bps)
		require.Nil(t, err)

		for price := int64(0); price < 2000; price += 7 {
			for qty := int64(0); qty <= 5; qty++ {
				split, err := c.Compute(price, qty)
				require.Nil(t, err)
				assert.Equal(t, split.Gross, split.Commission+split.Net)
				assert.True(t, split.Commission >= 0)
				assert.True(t, split.Net >= 0)

				want := (split.Gross*bps*2 + bpsDenominator) / (2 * bpsDenominator)
				assert.Equal(t, want, split.Commission)
			}
		}
	}
}

func TestComputeRejectsNegative(t *testing.T) {
	c, _ := New(DefaultRateBPS)

	_, err := c.Compute(-1, 1)
	assert.True(t, errors.Is(err, ErrNegativeAmount))
	_, err = c.Compute(1, -1)
	assert.True(t, errors.Is(err, ErrNegativeAmount))
}

func TestComputeRejectsOverflow(t *testing.T) {
	c, _ := New(DefaultRateBPS)

	_, err := c.Compute(math.MaxInt64, 2)
	assert.True(t, errors.Is(err, ErrAmountOverflow))
	_, err = c.Compute(math.MaxInt64/2, 1)
	assert.True(t, errors.Is(err, ErrAmountOverflow))
}

func TestNewRejectsInvalidRate(t *testing.T) {
	_, err := New(-1)
	assert.True(t, errors.Is(err, ErrInvalidRate))
	_, err = New(10001)
	assert.True(t, errors.Is(err, ErrInvalidRate))
}

func TestAllocate(t *testing.T) {
	c, _ := New(DefaultRateBPS)
	order, err := c.Compute(1010, 3)
	require.Nil(t, err)
	require.Equal(t, int64(152), order.Commission)

	splits, err := Allocate(order, 3)
	require.Nil(t, err)
	require.Len(t, splits, 3)
	assert.Equal(t, int64(51), splits[0].Commission)
	assert.Equal(t, int64(51), splits[1].Commission)
	assert.Equal(t, int64(50), splits[2].Commission)

	var sum Split
	for _, s := range splits {
		assert.Equal(t, int64(1010), s.Gross)
		assert.Equal(t, s.Gross, s.Commission+s.Net)
		sum.Gross += s.Gross
		sum.Commission += s.Commission
		sum.Net += s.Net
	}
	assert.Equal(t, order, sum)
}

func TestAllocateRejectsZeroQuantity(t *testing.T) {
	_, err := Allocate(Split{}, 0)
	assert.NotNil(t, err)
}
