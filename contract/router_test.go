package contract

import (
	"testing"

	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routerFixture(t *testing.T, specs ...VenueSpec) (*sdk.MemoryHost, *Router) {
	t.Helper()
	host := sdk.NewMemoryHost()
	r, err := NewRouter(host, specs)
	require.NoError(t, err)
	return host, r
}

func TestRouterPrimaryFills(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	primary := VenueSpec{Kind: VenueAggregator, Program: solana.NewWallet().PublicKey()}
	fallback := VenueSpec{Kind: VenueOrderBook, Program: solana.NewWallet().PublicKey(), LotSize: 100}
	host, r := routerFixture(t, primary, fallback)
	host.RegisterExchange(primary.Program, sdk.NewConstantProductPool(mint, 1_000_000, 1_000_000, 0))

	out, err := r.Attempt(mint, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, primary, out.Venue)
	assert.Equal(t, uint64(1000), out.AmountIn)
	assert.Equal(t, uint64(999), out.AmountOut)
	assert.Empty(t, out.Failures)
}

func TestRouterFallsBack(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	primary := VenueSpec{Kind: VenueAggregator, Program: solana.NewWallet().PublicKey()}
	fallback := VenueSpec{Kind: VenueOrderBook, Program: solana.NewWallet().PublicKey(), LotSize: 100}
	host, r := routerFixture(t, primary, fallback)
	host.RegisterExchange(fallback.Program, &sdk.FixedRateExchange{Mint: mint, Price: 3, PerUnits: 2})

	out, err := r.Attempt(mint, 1_250, 0)
	require.NoError(t, err)
	assert.Equal(t, fallback, out.Venue)
	assert.Equal(t, uint64(1_200), out.AmountIn, "rounded down to whole lots")
	assert.Equal(t, uint64(1_800), out.AmountOut)
	require.Len(t, out.Failures, 1)
	assert.ErrorIs(t, out.Failures[0].Err, ErrVenueUnavailable)
}

func TestRouterAllFail(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	primary := VenueSpec{Kind: VenueAggregator, Program: solana.NewWallet().PublicKey()}
	fallback := VenueSpec{Kind: VenueOrderBook, Program: solana.NewWallet().PublicKey(), LotSize: 100}
	host, r := routerFixture(t, primary, fallback)
	host.RegisterExchange(primary.Program, &sdk.FixedRateExchange{Mint: mint, Price: 1, PerUnits: 10})
	host.RegisterExchange(fallback.Program, &sdk.FixedRateExchange{Mint: mint, Price: 1, PerUnits: 1})

	// primary gives 5 for 50, fallback cannot fill a single lot
	_, err := r.Attempt(mint, 50, 6)
	assert.ErrorIs(t, err, ErrSwapFailed)
	assert.ErrorIs(t, err, ErrSlippageExceeded)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
	assert.Equal(t, "swap_failed", SymbolOf(err))
}

func TestRouterZeroOutputIsNoQuote(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	primary := VenueSpec{Kind: VenueAggregator, Program: solana.NewWallet().PublicKey()}
	host, r := routerFixture(t, primary)
	host.RegisterExchange(primary.Program, &sdk.FixedRateExchange{Mint: mint, Price: 1, PerUnits: 1_000})

	_, err := r.Attempt(mint, 999, 0)
	assert.ErrorIs(t, err, ErrSwapFailed)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}

func TestValidateVenues(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()
	c := solana.NewWallet().PublicKey()

	assert.NoError(t, validateVenues([]VenueSpec{{Kind: VenueAggregator, Program: a}}))
	assert.NoError(t, validateVenues([]VenueSpec{
		{Kind: VenueOrderBook, Program: a, LotSize: 1},
		{Kind: VenueAggregator, Program: b},
	}))

	bad := [][]VenueSpec{
		nil,
		{{Kind: VenueAggregator, Program: a}, {Kind: VenueAggregator, Program: b}, {Kind: VenueAggregator, Program: c}},
		{{Kind: VenueAggregator}},
		{{Kind: VenueAggregator, Program: a}, {Kind: VenueOrderBook, Program: a, LotSize: 1}},
		{{Kind: VenueOrderBook, Program: a}},
		{{Kind: VenueKind(9), Program: a}},
	}
	for i, specs := range bad {
		assert.ErrorIs(t, validateVenues(specs), ErrInvalidVenue, "case %d", i)
	}
}

func TestParseVenueKind(t *testing.T) {
	k, err := ParseVenueKind("orderbook")
	require.NoError(t, err)
	assert.Equal(t, VenueOrderBook, k)
	assert.Equal(t, "aggregator", VenueAggregator.String())

	_, err = ParseVenueKind("amm")
	assert.ErrorIs(t, err, ErrInvalidVenue)
}
