package contract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestComputeTax(t *testing.T) {
	cases := []struct {
		amount uint64
		rate   uint16
		want   uint64
	}{
		{1000, 500, 50},
		{999, 500, 49},
		{1, 9999, 0},
		{1000, 0, 0},
		{1000, 10000, 1000},
		{math.MaxUint64, 10000, math.MaxUint64},
		{math.MaxUint64, 1, math.MaxUint64 / 10000},
	}
	for _, c := range cases {
		got, err := ComputeTax(c.amount, c.rate)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "tax of %d at %d bps", c.amount, c.rate)
		assert.LessOrEqual(t, got, c.amount)
	}

	_, err := ComputeTax(1, 10001)
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestAccrualDelta(t *testing.T) {
	d, err := AccrualDelta(10, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(10_000_000_000_000), d)

	_, err = AccrualDelta(10, 0)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	// max delta over a single unit of supply still fits 128 bits
	d, err = AccrualDelta(math.MaxUint64, 1)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(math.MaxUint64).Mul64(ScaleFactor), d)
}

// TestDustStaysInVault reproduces the 10^13 accumulator step: a holder of 1000 units is owed
// 1000*10^13/10^18 = 0 and the accrued unit stays in the vault.
func TestDustStaysInVault(t *testing.T) {
	g := &GlobalState{TotalSupply: 1_000_000}
	rv := &RewardVault{}
	u := &UserInfo{Snapshot: 1000}

	deltaCum, err := AccrualDelta(10, g.TotalSupply)
	require.NoError(t, err)
	require.NoError(t, Accrue(g, rv, 10, deltaCum))
	assert.Equal(t, uint64(10), rv.Balance)

	owed, err := Owed(u, g.CumRewardPerUnit)
	require.NoError(t, err)
	assert.Zero(t, owed)

	paid, err := Settle(u, g, rv, 1000)
	require.NoError(t, err)
	assert.Zero(t, paid)
	assert.Equal(t, uint64(10), rv.Balance)
	assert.Equal(t, g.CumRewardPerUnit, u.LastCum)
}

func TestOwedIsIdempotent(t *testing.T) {
	u := &UserInfo{Snapshot: 5_000, LastCum: uint128.From64(3)}
	cum := uint128.From64(7 * ScaleFactor)
	first, err := Owed(u, cum)
	require.NoError(t, err)
	second, err := Owed(u, cum)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(34_999), first)
	assert.Equal(t, uint64(5_000), u.Snapshot, "Owed must not touch the record")
}

func TestOwedBehindCheckpoint(t *testing.T) {
	u := &UserInfo{Snapshot: 1, LastCum: uint128.From64(10)}
	_, err := Owed(u, uint128.From64(9))
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, ClassInvariant, ClassOf(err))
}

func TestOwedOverflow(t *testing.T) {
	u := &UserInfo{Snapshot: math.MaxUint64}
	_, err := Owed(u, uint128.Max)
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestAccrueOverflowLeavesRecords(t *testing.T) {
	g := &GlobalState{CumRewardPerUnit: uint128.Max}
	rv := &RewardVault{Balance: 5}
	err := Accrue(g, rv, 1, uint128.From64(1))
	assert.ErrorIs(t, err, ErrArithmetic)
	assert.Equal(t, uint128.Max, g.CumRewardPerUnit)
	assert.Equal(t, uint64(5), rv.Balance)

	g = &GlobalState{}
	rv = &RewardVault{Balance: math.MaxUint64}
	err = Accrue(g, rv, 1, uint128.From64(1))
	assert.ErrorIs(t, err, ErrArithmetic)
	assert.True(t, g.CumRewardPerUnit.IsZero())
}

func TestSettleKeepsSupplyInStep(t *testing.T) {
	g := &GlobalState{TotalSupply: 300}
	rv := &RewardVault{}
	a := &UserInfo{Snapshot: 100}
	b := &UserInfo{Snapshot: 200}

	deltaCum, err := AccrualDelta(30, g.TotalSupply)
	require.NoError(t, err)
	require.NoError(t, Accrue(g, rv, 30, deltaCum))

	paid, err := Settle(a, g, rv, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), paid)
	assert.Equal(t, uint64(240), g.TotalSupply)
	assert.Equal(t, uint64(20), rv.Balance)

	paid, err = Settle(b, g, rv, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), paid)
	assert.Zero(t, rv.Balance)
	assert.Equal(t, uint64(30), g.TotalPaid)
	assert.Equal(t, uint64(30), a.TotalClaimed+b.TotalClaimed)
}

func TestSettleInsufficientVault(t *testing.T) {
	g := &GlobalState{TotalSupply: 10, CumRewardPerUnit: uint128.From64(ScaleFactor)}
	rv := &RewardVault{Balance: 9}
	u := &UserInfo{Snapshot: 10}

	_, err := Settle(u, g, rv, 0)
	assert.ErrorIs(t, err, ErrInsufficientVault)
	assert.Equal(t, uint64(10), u.Snapshot)
	assert.True(t, u.LastCum.IsZero())
	assert.Equal(t, uint64(10), g.TotalSupply)
	assert.Equal(t, uint64(9), rv.Balance)
}

func TestAccumulatorMonotonic(t *testing.T) {
	g := &GlobalState{TotalSupply: 7}
	rv := &RewardVault{}
	prev := g.CumRewardPerUnit
	for _, delta := range []uint64{0, 1, 3, 1_000_000, 0, 42} {
		deltaCum, err := AccrualDelta(delta, g.TotalSupply)
		require.NoError(t, err)
		require.NoError(t, Accrue(g, rv, delta, deltaCum))
		assert.GreaterOrEqual(t, g.CumRewardPerUnit.Cmp(prev), 0)
		prev = g.CumRewardPerUnit
	}
}

func TestCheckedMath(t *testing.T) {
	_, ok := addU64(math.MaxUint64, 1)
	assert.False(t, ok)
	_, ok = subU64(0, 1)
	assert.False(t, ok)
	_, ok = mulDiv64(math.MaxUint64, 2, 1)
	assert.False(t, ok)
	q, ok := mulDiv64(math.MaxUint64, 3, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), q)
	_, ok = addU128(uint128.Max, uint128.From64(1))
	assert.False(t, ok)
	_, ok = mulU128By64(uint128.Max, 2)
	assert.False(t, ok)
}
