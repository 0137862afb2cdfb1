package contract

import (
	"fmt"

	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
)

// execution is scoped to one instruction call. It carries the env snapshot, the loaded
// accounts and everything the call wants to do outside of its own records (transfers, the swap
// fill and event lines). Nothing here is visible to the host before commit.
type execution struct {
	env   sdk.Env
	host  sdk.Host
	addrs addresses
	acc   *Accounts

	effects []sdk.Effect
	logs    []string

	// metric deltas, published only after a successful commit
	taxCollected uint64
	accrued      uint64
	paid         uint64
}

// sender returns the address of the current transaction sender.
func (x *execution) sender() solana.PublicKey {
	return x.env.Sender.Address
}

func (x *execution) logf(format string, args ...any) {
	x.logs = append(x.logs, fmt.Sprintf(format, args...))
}

// transfer queues a ledger movement. Zero amounts are dropped.
func (x *execution) transfer(asset sdk.Asset, from, to solana.PublicKey, amount uint64) {
	if amount == 0 {
		return
	}
	x.effects = append(x.effects, sdk.Transfer(asset, from, to, amount))
}

// swap queues the router's fill: vault tokens out, reference currency into the reward vault.
func (x *execution) swap(o SwapOutcome) {
	x.effects = append(x.effects, sdk.Effect{
		Kind:      sdk.EffectSwap,
		Asset:     sdk.TokenAsset(x.acc.Config.Mint),
		From:      x.addrs.tokenVault,
		To:        x.addrs.rewardVault,
		Amount:    o.AmountIn,
		Venue:     o.Venue.Program,
		AmountOut: o.AmountOut,
	})
}

// tokenAsset is the managed mint as a ledger asset.
func (x *execution) tokenAsset() sdk.Asset {
	return sdk.TokenAsset(x.addrs.mint)
}
