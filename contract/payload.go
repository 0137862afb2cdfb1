package contract

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// -----------------------------------------------------------------------------
// Instruction arguments
// -----------------------------------------------------------------------------

// VenueArgs is one venue as it travels in a payload.
// Example payload: {"kind":"orderbook","program":"9xQe...","lot_size":100}
//
//tinyjson:json
type VenueArgs struct {
	Kind    string `json:"kind"`
	Program string `json:"program"`
	LotSize uint64 `json:"lot_size,omitempty"`
}

// InitializeArgs configures a fresh deployment. The sender becomes the owner.
// Example payload: {"tax_rate_bps":500,"venues":[{"kind":"aggregator","program":"JUP6..."}]}
//
//tinyjson:json
type InitializeArgs struct {
	TaxRateBps    uint64      `json:"tax_rate_bps"`
	Venues        []VenueArgs `json:"venues"`
	SwapThreshold uint64      `json:"swap_threshold,omitempty"`
}

// TaxedArgs is one taxed transfer. Without a recipient the untaxed part stays with the holder.
// Example payload: {"amount_in":1000,"min_amount_out":9}
//
//tinyjson:json
type TaxedArgs struct {
	AmountIn     uint64 `json:"amount_in"`
	MinAmountOut uint64 `json:"min_amount_out"`
	Recipient    string `json:"recipient,omitempty"`
}

// UpdateConfigArgs changes only what the payload carries, absent fields keep their value.
// Example payload: {"paused":true}
//
//tinyjson:json
type UpdateConfigArgs struct {
	TaxRateBps    *uint64     `json:"tax_rate_bps,omitempty"`
	Paused        *bool       `json:"paused,omitempty"`
	Venues        []VenueArgs `json:"venues,omitempty"`
	SwapThreshold *uint64     `json:"swap_threshold,omitempty"`
}

// -----------------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------------

// TaxedResult reports what one taxed operation did. RewardDelta is the accumulator increase.
//
//tinyjson:json
type TaxedResult struct {
	AmountOut   uint64          `json:"amount_out"`
	Tax         uint64          `json:"tax"`
	RewardDelta uint128.Uint128 `json:"reward_delta"`
	Paid        uint64          `json:"paid"`
	Swapped     uint64          `json:"swapped"`
	Venue       string          `json:"venue,omitempty"`
}

// ClaimResult is returned by claim_rewards.
//
//tinyjson:json
type ClaimResult struct {
	AmountPaid uint64 `json:"amount_paid"`
}

// CloseResult is returned by close_user_info.
//
//tinyjson:json
type CloseResult struct {
	RentReclaimed uint64 `json:"rent_reclaimed"`
}

// OkResult acknowledges instructions without a payload.
//
//tinyjson:json
type OkResult struct {
	Ok bool `json:"ok"`
}

// ErrorResult is how a failed call is rendered for clients.
//
//tinyjson:json
type ErrorResult struct {
	Error  string `json:"error"`
	Symbol string `json:"symbol"`
	Class  string `json:"class"`
}

// NewErrorResult renders err with its symbol and class.
func NewErrorResult(err error) ErrorResult {
	return ErrorResult{Error: err.Error(), Symbol: SymbolOf(err), Class: ClassOf(err).String()}
}

// -----------------------------------------------------------------------------
// Conversions
// -----------------------------------------------------------------------------

// toVenueSpecs parses payload venues. Bad kinds or keys are venue errors, not payload errors.
func toVenueSpecs(args []VenueArgs) ([]VenueSpec, error) {
	specs := make([]VenueSpec, 0, len(args))
	for _, a := range args {
		kind, err := ParseVenueKind(a.Kind)
		if err != nil {
			return nil, err
		}
		program, err := solana.PublicKeyFromBase58(a.Program)
		if err != nil {
			return nil, fail(ErrInvalidVenue, "program %q: %v", a.Program, err)
		}
		specs = append(specs, VenueSpec{Kind: kind, Program: program, LotSize: a.LotSize})
	}
	if err := validateVenues(specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// checkRate narrows a payload rate to bps.
func checkRate(rate uint64) (uint16, error) {
	if rate > MaxTaxRateBps {
		return 0, fail(ErrInvalidRate, "rate %d bps", rate)
	}
	return uint16(rate), nil
}

// parseRecipient returns the zero key when no recipient was given.
func parseRecipient(s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, nil
	}
	k, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fail(ErrInvalidRecipient, "%q: %v", s, err)
	}
	if k.IsZero() {
		return solana.PublicKey{}, fail(ErrInvalidRecipient, "zero address")
	}
	return k, nil
}
