package contract

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// -----------------------------------------------------------------------------
// Venues
// -----------------------------------------------------------------------------

// VenueKind tags how a venue fills an order.
type VenueKind uint8

const (
	// VenueAggregator sells the whole amount at the quoted price.
	VenueAggregator VenueKind = 1
	// VenueOrderBook only fills whole lots and leaves the rest in the vault.
	VenueOrderBook VenueKind = 2
)

func (k VenueKind) String() string {
	switch k {
	case VenueAggregator:
		return "aggregator"
	case VenueOrderBook:
		return "orderbook"
	default:
		return fmt.Sprintf("venue(%d)", uint8(k))
	}
}

// ParseVenueKind accepts the names printed by String.
func ParseVenueKind(s string) (VenueKind, error) {
	switch s {
	case "aggregator":
		return VenueAggregator, nil
	case "orderbook":
		return VenueOrderBook, nil
	default:
		return 0, fail(ErrInvalidVenue, "unknown venue kind %q", s)
	}
}

// VenueSpec is one entry of the configured venue list. LotSize only matters for order books.
type VenueSpec struct {
	Kind    VenueKind
	Program solana.PublicKey
	LotSize uint64
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

// Config holds governance parameters. Created once by initialize, only the owner mutates it.
type Config struct {
	Owner         solana.PublicKey
	Mint          solana.PublicKey
	TaxRateBps    uint16
	Venues        []VenueSpec
	Paused        bool
	SwapThreshold uint64
	Bump          uint8
}

// GlobalState tracks supply and the reward accumulator.
// TotalSupply always equals the sum of every holder snapshot.
type GlobalState struct {
	TotalSupply      uint64
	CumRewardPerUnit uint128.Uint128
	TotalTax         uint64
	TotalAccrued     uint64
	TotalPaid        uint64
	Bump             uint8
}

// TokenVault holds collected tax tokens waiting to be swapped.
type TokenVault struct {
	Balance uint64
	Bump    uint8
}

// RewardVault holds reference currency waiting to be claimed.
type RewardVault struct {
	Balance uint64
	Bump    uint8
}

// UserInfo is the per holder ledger record.
type UserInfo struct {
	Owner        solana.PublicKey
	LastCum      uint128.Uint128
	Snapshot     uint64
	TotalClaimed uint64
	Deposit      uint64
	Bump         uint8
}

// Accounts is the full mutable state one instruction works on. Handlers get it by pointer and
// nothing in it reaches the host until the handler returns without error.
type Accounts struct {
	Config      *Config
	Global      *GlobalState
	TokenVault  *TokenVault
	RewardVault *RewardVault
	// User is nil when the holder has no record yet, or after the record was closed.
	User *UserInfo

	userAddr    solana.PublicKey
	userCreated bool
	userClosed  bool
	loaded      map[string]string
}

// Initialized reports whether the singleton records exist.
func (a *Accounts) Initialized() bool {
	return a.Config != nil
}
