// Package commission splits ticket revenue between the platform and the venue.
//
// All amounts are integer minor currency units. The rate is expressed in basis points and the
// commission is rounded half up to a whole minor unit.
package commission

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultRateBPS = 500
	bpsDenominator = 10000
)

var (
	ErrNegativeAmount = errors.New("commission: negative amount")
	ErrAmountOverflow = errors.New("commission: amount overflow")
	ErrInvalidRate    = errors.New("commission: invalid rate")
)

// Split is a gross amount divided into commission and net. Commission + Net == Gross.
type Split struct {
	Gross      int64 `json:"gross_amount"`
	Commission int64 `json:"commission_amount"`
	Net        int64 `json:"net_amount"`
}

type Calculator struct {
	rateBPS int64
}

func New(rateBPS int64) (*Calculator, error) {
	if rateBPS < 0 || rateBPS > bpsDenominator {
		return nil, fmt.Errorf("new: %w: %d bps", ErrInvalidRate, rateBPS)
	}
	return &Calculator{rateBPS: rateBPS}, nil
}

func (c *Calculator) RateBPS() int64 {
	return c.rateBPS
}

// Compute returns the split for quantity tickets at unitPrice.
func (c *Calculator) Compute(unitPrice, quantity int64) (Split, error) {
	if unitPrice < 0 || quantity < 0 {
		return Split{}, fmt.Errorf("compute: %w: unit price %d, quantity %d", ErrNegativeAmount, unitPrice, quantity)
	}
	if quantity != 0 && unitPrice > math.MaxInt64/quantity {
		return Split{}, fmt.Errorf("compute: %w: %d x %d", ErrAmountOverflow, unitPrice, quantity)
	}
	gross := unitPrice * quantity

	com, err := c.commission(gross)
	if err != nil {
		return Split{}, fmt.Errorf("compute: %w", err)
	}
	return Split{Gross: gross, Commission: com, Net: gross - com}, nil
}

func (c *Calculator) commission(gross int64) (int64, error) {
	if c.rateBPS != 0 && gross > (math.MaxInt64-bpsDenominator/2)/c.rateBPS {
		return 0, fmt.Errorf("%w: gross %d", ErrAmountOverflow, gross)
	}
	return (gross*c.rateBPS + bpsDenominator/2) / bpsDenominator, nil
}

// Allocate divides an order split across quantity tickets. Each ticket gets the same share of
// commission, with the remainder handed out one minor unit at a time from the first ticket, so
// the per-ticket commissions add up to the order commission exactly.
func Allocate(order Split, quantity int) ([]Split, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("allocate: quantity must be positive: %d", quantity)
	}
	q := int64(quantity)
	if order.Gross%q != 0 {
		return nil, fmt.Errorf("allocate: gross %d not divisible by %d", order.Gross, quantity)
	}
	unit := order.Gross / q
	share, rest := order.Commission/q, order.Commission%q

	splits := make([]Split, quantity)
	for i := range splits {
		com := share
		if int64(i) < rest {
			com++
		}
		splits[i] = Split{Gross: unit, Commission: com, Net: unit - com}
	}
	return splits, nil
}
