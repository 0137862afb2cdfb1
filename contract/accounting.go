package contract

import "lukechampine.com/uint128"

// -----------------------------------------------------------------------------
// Reward accounting
//
// Pull based distribution: the global accumulator grows by delta*Scale/supply on every
// accrual and each holder is owed snapshot*(cum-lastCum)/Scale when next touched. Nothing
// here talks to the host, every function works on the records it is handed.
// -----------------------------------------------------------------------------

// ComputeTax returns floor(amount*rate/10000). The result never exceeds amount.
// Example payload: ComputeTax(1000, 500) -> 50
func ComputeTax(amount uint64, rateBps uint16) (uint64, error) {
	if rateBps > MaxTaxRateBps {
		return 0, fail(ErrInvalidRate, "rate %d bps", rateBps)
	}
	tax, ok := mulDiv64(amount, uint64(rateBps), BpsDenominator)
	if !ok {
		// rate <= 10000 keeps the quotient <= amount
		return 0, fail(ErrInvariantViolation, "tax of %d at %d bps does not fit", amount, rateBps)
	}
	return tax, nil
}

// AccrualDelta returns delta*Scale/supply, the accumulator increase for delta reference units.
// supply must be positive, callers skip accrual entirely when it is zero.
func AccrualDelta(delta, supply uint64) (uint128.Uint128, error) {
	if supply == 0 {
		return uint128.Zero, fail(ErrInvariantViolation, "accrual against zero supply")
	}
	scaled, ok := mulU128By64(Scale, delta)
	if !ok {
		return uint128.Zero, fail(ErrArithmetic, "delta %d times scale", delta)
	}
	return scaled.Div64(supply), nil
}

// Accrue credits delta to the reward vault and advances the accumulator by deltaCum.
// Both adds are checked before either record changes.
func Accrue(g *GlobalState, rv *RewardVault, delta uint64, deltaCum uint128.Uint128) error {
	cum, ok := addU128(g.CumRewardPerUnit, deltaCum)
	if !ok {
		return fail(ErrArithmetic, "accumulator overflow")
	}
	bal, ok := addU64(rv.Balance, delta)
	if !ok {
		return fail(ErrArithmetic, "reward vault overflow")
	}
	accrued, ok := addU64(g.TotalAccrued, delta)
	if !ok {
		return fail(ErrArithmetic, "accrued total overflow")
	}
	g.CumRewardPerUnit = cum
	g.TotalAccrued = accrued
	rv.Balance = bal
	return nil
}

// Owed is what u can claim at accumulator value cum. It reads only and is idempotent.
// Example payload: Owed(&UserInfo{Snapshot: 1000}, uint128.From64(1e13)) -> 0
func Owed(u *UserInfo, cum uint128.Uint128) (uint64, error) {
	if cum.Cmp(u.LastCum) < 0 {
		return 0, fail(ErrInvariantViolation, "accumulator %s behind holder checkpoint %s", cum, u.LastCum)
	}
	if u.Snapshot == 0 {
		return 0, nil
	}
	prod, ok := mulU128By64(cum.Sub(u.LastCum), u.Snapshot)
	if !ok {
		return 0, fail(ErrArithmetic, "owed product overflow")
	}
	owed := prod.Div64(ScaleFactor)
	if owed.Hi != 0 {
		return 0, fail(ErrArithmetic, "owed exceeds 64 bits")
	}
	return owed.Lo, nil
}

// Settle pays u what it is owed out of rv, checkpoints it at the current accumulator and swaps
// its snapshot for newSnapshot, keeping the global supply equal to the sum of snapshots.
// An empty vault yields ErrInsufficientVault and leaves every record untouched.
func Settle(u *UserInfo, g *GlobalState, rv *RewardVault, newSnapshot uint64) (uint64, error) {
	owed, err := Owed(u, g.CumRewardPerUnit)
	if err != nil {
		return 0, err
	}
	bal, ok := subU64(rv.Balance, owed)
	if !ok {
		return 0, fail(ErrInsufficientVault, "owed %d, vault holds %d", owed, rv.Balance)
	}
	supply, ok := subU64(g.TotalSupply, u.Snapshot)
	if !ok {
		return 0, fail(ErrInvariantViolation, "supply %d below holder snapshot %d", g.TotalSupply, u.Snapshot)
	}
	if supply, ok = addU64(supply, newSnapshot); !ok {
		return 0, fail(ErrArithmetic, "supply overflow")
	}
	claimed, ok := addU64(u.TotalClaimed, owed)
	if !ok {
		return 0, fail(ErrArithmetic, "claimed total overflow")
	}
	paid, ok := addU64(g.TotalPaid, owed)
	if !ok {
		return 0, fail(ErrArithmetic, "paid total overflow")
	}

	rv.Balance = bal
	u.LastCum = g.CumRewardPerUnit
	u.Snapshot = newSnapshot
	u.TotalClaimed = claimed
	g.TotalSupply = supply
	g.TotalPaid = paid
	return owed, nil
}
