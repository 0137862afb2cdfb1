package contract

import (
	"errors"
	"fmt"

	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
)

// Router sells vault tokens for the reference currency, trying venues in configured order.
// It only asks for quotes, the fill itself is settled by the host when the instruction commits.
type Router struct {
	host   sdk.Host
	venues []Venue
}

// SwapOutcome describes the fill the router picked plus every venue that failed before it.
type SwapOutcome struct {
	Venue     VenueSpec
	AmountIn  uint64
	AmountOut uint64
	Failures  []VenueFailure
}

// VenueFailure records why one venue was skipped.
type VenueFailure struct {
	Venue VenueSpec
	Err   error
}

// NewRouter builds a router over specs in priority order.
func NewRouter(host sdk.Host, specs []VenueSpec) (*Router, error) {
	if err := validateVenues(specs); err != nil {
		return nil, err
	}
	r := &Router{host: host, venues: make([]Venue, 0, len(specs))}
	for _, s := range specs {
		v, err := venueFor(s)
		if err != nil {
			return nil, err
		}
		r.venues = append(r.venues, v)
	}
	return r, nil
}

// Attempt tries every venue with the same minOut and returns the first acceptable fill.
// When all fail the error wraps ErrSwapFailed and each venue's own error.
// Example payload: router.Attempt(mint, 5000, 120)
func (r *Router) Attempt(tokenIn solana.PublicKey, amountIn, minOut uint64) (SwapOutcome, error) {
	var out SwapOutcome
	if amountIn == 0 {
		return out, fail(ErrInvalidAmount, "swap of zero tokens")
	}
	errs := make([]error, 0, len(r.venues))
	for _, v := range r.venues {
		spec := v.Spec()
		f, err := r.try(v, tokenIn, amountIn, minOut)
		if ClassOf(err) == ClassInvariant {
			return out, err
		}
		if err != nil {
			SwapAttemptsTotal.WithLabelValues(spec.Kind.String(), SymbolOf(err)).Inc()
			out.Failures = append(out.Failures, VenueFailure{Venue: spec, Err: err})
			errs = append(errs, fmt.Errorf("%s %s: %w", spec.Kind, spec.Program, err))
			continue
		}
		SwapAttemptsTotal.WithLabelValues(spec.Kind.String(), "filled").Inc()
		out.Venue = spec
		out.AmountIn = f.consumed
		out.AmountOut = f.out
		return out, nil
	}
	return out, fmt.Errorf("%w: %w", ErrSwapFailed, errors.Join(errs...))
}

func (r *Router) try(v Venue, tokenIn solana.PublicKey, amountIn, minOut uint64) (fill, error) {
	spec := v.Spec()
	ex := r.host.Exchange(spec.Program)
	if ex == nil {
		return fill{}, fail(ErrVenueUnavailable, "no exchange at %s", spec.Program)
	}
	f, err := v.attempt(ex, tokenIn, amountIn, minOut)
	if err != nil {
		return fill{}, err
	}
	if f.consumed == 0 || f.consumed > amountIn {
		return fill{}, fail(ErrInvariantViolation, "venue consumed %d of %d", f.consumed, amountIn)
	}
	return f, nil
}
