package contract

import "lukechampine.com/uint128"

// -----------------------------------------------------------------------------
// Fixed point
// -----------------------------------------------------------------------------

// ScaleFactor is the fixed point base of the reward accumulator.
const ScaleFactor uint64 = 1_000_000_000_000_000_000

// Scale is ScaleFactor as u128, the unit the accumulator is expressed in.
var Scale = uint128.From64(ScaleFactor)

// -----------------------------------------------------------------------------
// Limits
// -----------------------------------------------------------------------------

const (
	// BpsDenominator is 100% in basis points.
	BpsDenominator = 10_000
	// MaxTaxRateBps caps the tax rate at 100%.
	MaxTaxRateBps = BpsDenominator
	// MaxVenues is primary plus one fallback.
	MaxVenues = 2
)

// -----------------------------------------------------------------------------
// Account seeds
// -----------------------------------------------------------------------------

const (
	seedConfig      = "config"
	seedGlobal      = "global"
	seedTokenVault  = "token_vault"
	seedRewardVault = "reward_vault"
	seedUser        = "user"
)

// -----------------------------------------------------------------------------
// Actions
// -----------------------------------------------------------------------------

const (
	ActionInitialize    = "initialize"
	ActionTaxed         = "taxed_operation_and_distribute"
	ActionClaim         = "claim_rewards"
	ActionUpdateConfig  = "update_config"
	ActionCloseUserInfo = "close_user_info"
)
