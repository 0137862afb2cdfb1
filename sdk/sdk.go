package sdk

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Host is everything the engine needs from the surrounding ledger runtime. Reads are
// served directly; every mutation travels inside a Tx handed to Commit so the runtime can
// apply it all at once or not at all.
type Host interface {
	// StateGetObject fetches a key and returns nil when missing.
	StateGetObject(key string) *string
	// GetBalance queries the ledger balance of an account for the given asset.
	GetBalance(owner solana.PublicKey, asset Asset) uint64
	// StorageDeposit is the refundable deposit the runtime charges for a record of size bytes.
	StorageDeposit(size int) uint64
	// Exchange returns the venue backend registered under program, or nil.
	Exchange(program solana.PublicKey) Exchange
	// Commit validates and applies a transaction atomically.
	Commit(tx *Tx) error
}

// Exchange is an external venue that converts tokens into the reference currency.
type Exchange interface {
	// Quote returns how much reference currency amountIn of tokenIn would yield right now.
	Quote(tokenIn solana.PublicKey, amountIn uint64) (uint64, error)
	// Settle executes a previously quoted fill. It is only called from Commit.
	Settle(tokenIn solana.PublicKey, amountIn, amountOut uint64) error
}

var (
	ErrQuoteUnavailable  = errors.New("quote unavailable")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrFillRejected      = errors.New("fill rejected")
)

// Write is a single KV mutation; a nil Value deletes the key.
type Write struct {
	Key   string
	Value *string
}

// EffectKind tags an external effect.
type EffectKind uint8

const (
	// EffectTransfer moves Amount of Asset from From to To.
	EffectTransfer EffectKind = iota
	// EffectSwap sells Amount of Asset held by From on Venue and credits AmountOut of the
	// reference currency to To.
	EffectSwap
)

// String prints the effect kind for logs.
func (k EffectKind) String() string {
	switch k {
	case EffectTransfer:
		return "transfer"
	case EffectSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// Effect is an externally visible movement of value. Effects are only ever applied by Commit.
type Effect struct {
	Kind      EffectKind
	Asset     Asset
	From      solana.PublicKey
	To        solana.PublicKey
	Amount    uint64
	Venue     solana.PublicKey
	AmountOut uint64
}

// String renders the effect in one line.
func (e Effect) String() string {
	if e.Kind == EffectSwap {
		return fmt.Sprintf("swap %d %s from %s on %s for %d native to %s",
			e.Amount, e.Asset, e.From, e.Venue, e.AmountOut, e.To)
	}
	return fmt.Sprintf("transfer %d %s from %s to %s", e.Amount, e.Asset, e.From, e.To)
}

// Transfer is a tiny constructor for the common case.
// Example payload: sdk.Transfer(sdk.AssetNative, vault, alice, 500)
func Transfer(asset Asset, from, to solana.PublicKey, amount uint64) Effect {
	return Effect{Kind: EffectTransfer, Asset: asset, From: from, To: to, Amount: amount}
}

// Tx is the unit the runtime commits: state writes, value movements and event lines.
type Tx struct {
	ID      string
	Writes  []Write
	Effects []Effect
	Logs    []string
}

// Set queues a key update.
func (tx *Tx) Set(key, value string) {
	tx.Writes = append(tx.Writes, Write{Key: key, Value: &value})
}

// Delete queues a key removal.
func (tx *Tx) Delete(key string) {
	tx.Writes = append(tx.Writes, Write{Key: key})
}

// Empty reports whether committing the tx would change nothing.
func (tx *Tx) Empty() bool {
	return len(tx.Writes) == 0 && len(tx.Effects) == 0 && len(tx.Logs) == 0
}
