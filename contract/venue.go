package contract

import (
	"fmt"

	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
)

// Venue is one configured swap route. Only this package implements it, the set of kinds is
// closed and picked from VenueSpec.Kind.
type Venue interface {
	Spec() VenueSpec
	attempt(ex sdk.Exchange, tokenIn solana.PublicKey, amountIn, minOut uint64) (fill, error)
}

// fill is what a venue would do with the vault holdings: sell consumed tokens for out.
type fill struct {
	consumed uint64
	out      uint64
}

type aggregatorVenue struct{ spec VenueSpec }

type orderBookVenue struct{ spec VenueSpec }

// venueFor maps a stored spec to its implementation.
func venueFor(spec VenueSpec) (Venue, error) {
	switch spec.Kind {
	case VenueAggregator:
		return aggregatorVenue{spec: spec}, nil
	case VenueOrderBook:
		if spec.LotSize == 0 {
			return nil, fail(ErrInvalidVenue, "order book %s has zero lot size", spec.Program)
		}
		return orderBookVenue{spec: spec}, nil
	default:
		return nil, fail(ErrInvalidVenue, "unknown venue kind %d", spec.Kind)
	}
}

// validateVenues checks a full venue list: primary plus optional fallback, distinct programs.
func validateVenues(specs []VenueSpec) error {
	if len(specs) == 0 || len(specs) > MaxVenues {
		return fail(ErrInvalidVenue, "need 1..%d venues, got %d", MaxVenues, len(specs))
	}
	seen := make(map[solana.PublicKey]bool, len(specs))
	for _, s := range specs {
		if s.Program.IsZero() {
			return fail(ErrInvalidVenue, "venue without program id")
		}
		if seen[s.Program] {
			return fail(ErrInvalidVenue, "duplicate venue %s", s.Program)
		}
		seen[s.Program] = true
		if _, err := venueFor(s); err != nil {
			return err
		}
	}
	return nil
}

func (v aggregatorVenue) Spec() VenueSpec { return v.spec }

func (v aggregatorVenue) attempt(ex sdk.Exchange, tokenIn solana.PublicKey, amountIn, minOut uint64) (fill, error) {
	return quoteFill(ex, tokenIn, amountIn, minOut)
}

func (v orderBookVenue) Spec() VenueSpec { return v.spec }

// attempt rounds the order down to whole lots, the remainder stays in the vault.
func (v orderBookVenue) attempt(ex sdk.Exchange, tokenIn solana.PublicKey, amountIn, minOut uint64) (fill, error) {
	lots := amountIn / v.spec.LotSize
	if lots == 0 {
		return fill{}, fail(ErrQuoteUnavailable, "amount %d below lot size %d", amountIn, v.spec.LotSize)
	}
	return quoteFill(ex, tokenIn, lots*v.spec.LotSize, minOut)
}

func quoteFill(ex sdk.Exchange, tokenIn solana.PublicKey, amount, minOut uint64) (fill, error) {
	out, err := ex.Quote(tokenIn, amount)
	if err != nil {
		return fill{}, fmt.Errorf("%w: %w", ErrQuoteUnavailable, err)
	}
	if out == 0 {
		return fill{}, fail(ErrQuoteUnavailable, "zero output for %d", amount)
	}
	if out < minOut {
		return fill{}, fail(ErrSlippageExceeded, "got %d, want at least %d", out, minOut)
	}
	return fill{consumed: amount, out: out}, nil
}
