package contract

import (
	"errors"

	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// taxedOperation withholds tax from one transfer, converts the token vault to the reference
// currency when there is supply to distribute to, advances the accumulator and settles the
// initiating holder at the new value.
func (x *execution) taxedOperation(args TaxedArgs) (*TaxedResult, error) {
	cfg := x.acc.Config
	if err := requireActive(cfg); err != nil {
		return nil, err
	}
	if args.AmountIn == 0 {
		return nil, fail(ErrInvalidAmount, "amount_in is zero")
	}
	holder := x.sender()
	recipient, err := parseRecipient(args.Recipient)
	if err != nil {
		return nil, err
	}
	if !recipient.IsZero() && x.isProgramAccount(recipient) {
		return nil, fail(ErrInvalidRecipient, "%s is a program account", recipient)
	}
	asset := x.tokenAsset()
	balance := x.host.GetBalance(holder, asset)
	if balance < args.AmountIn {
		return nil, fail(ErrInsufficientBalance, "holder has %d, amount_in %d", balance, args.AmountIn)
	}

	tax, err := ComputeTax(args.AmountIn, cfg.TaxRateBps)
	if err != nil {
		return nil, err
	}
	user, err := x.ensureUser(holder)
	if err != nil {
		return nil, err
	}

	// tax into the vault, the rest to the recipient if there is one
	if err := x.acc.addTokenVault(tax); err != nil {
		return nil, err
	}
	g := x.acc.Global
	if g.TotalTax, err = checkedAdd(g.TotalTax, tax, "tax total"); err != nil {
		return nil, err
	}
	x.transfer(asset, holder, x.addrs.tokenVault, tax)
	x.taxCollected = tax
	post := balance - tax
	if !recipient.IsZero() && !recipient.Equals(holder) {
		net := args.AmountIn - tax
		x.transfer(asset, holder, recipient, net)
		post -= net
	}

	res := &TaxedResult{Tax: tax, RewardDelta: uint128.Zero}
	if err := x.distribute(args.MinAmountOut, res); err != nil {
		return nil, err
	}

	paid, err := Settle(user, g, x.acc.RewardVault, post)
	if errors.Is(err, ErrInsufficientVault) {
		// claims are checked against the vault, here the accrual just credited it
		return nil, fail(ErrInvariantViolation, "settle after accrual: %v", err)
	}
	if err != nil {
		return nil, err
	}
	x.payout(holder, paid)
	res.Paid = paid

	x.emitTaxedEvent(holder, args.AmountIn, tax, res.AmountOut, res.RewardDelta)
	return res, nil
}

// distribute swaps the token vault through the router and accrues the output. It is skipped
// while nobody holds a snapshot or the vault is below the swap threshold.
func (x *execution) distribute(minOut uint64, res *TaxedResult) error {
	cfg, g, tv := x.acc.Config, x.acc.Global, x.acc.TokenVault
	if g.TotalSupply == 0 || tv.Balance == 0 || tv.Balance < cfg.SwapThreshold {
		return nil
	}
	router, err := NewRouter(x.host, cfg.Venues)
	if err != nil {
		return fail(ErrInvariantViolation, "stored venues: %v", err)
	}
	outcome, err := router.Attempt(cfg.Mint, tv.Balance, minOut)
	if err != nil {
		return err
	}
	for _, f := range outcome.Failures {
		x.emitSwapFailedEvent(f.Venue, f.Err)
	}

	deltaCum, err := AccrualDelta(outcome.AmountOut, g.TotalSupply)
	if err != nil {
		return err
	}
	if err := Accrue(g, x.acc.RewardVault, outcome.AmountOut, deltaCum); err != nil {
		return err
	}
	if err := x.acc.removeTokenVault(outcome.AmountIn); err != nil {
		return err
	}
	x.swap(outcome)
	x.accrued = outcome.AmountOut
	x.emitSwapEvent(outcome.Venue, outcome.AmountIn, outcome.AmountOut)

	res.AmountOut = outcome.AmountOut
	res.Swapped = outcome.AmountIn
	res.RewardDelta = deltaCum
	res.Venue = outcome.Venue.Program.String()
	return nil
}

// payout queues a reward transfer from the reward vault.
func (x *execution) payout(holder solana.PublicKey, amount uint64) {
	if amount == 0 {
		return
	}
	x.transfer(sdk.AssetNative, x.addrs.rewardVault, holder, amount)
	x.paid += amount
	x.emitClaimEvent(holder, amount)
}

// isProgramAccount guards against sending tokens into our own vaults or records.
func (x *execution) isProgramAccount(k solana.PublicKey) bool {
	return k.Equals(x.addrs.config) || k.Equals(x.addrs.global) ||
		k.Equals(x.addrs.tokenVault) || k.Equals(x.addrs.rewardVault) ||
		k.Equals(x.addrs.program)
}

func checkedAdd(a, b uint64, what string) (uint64, error) {
	s, ok := addU64(a, b)
	if !ok {
		return 0, fail(ErrArithmetic, "%s overflow", what)
	}
	return s, nil
}
