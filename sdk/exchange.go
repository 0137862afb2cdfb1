package sdk

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ConstantProductPool is an x*y=k pool between one token mint and the reference currency.
// Quotes follow the usual fee-on-input formula and Settle moves the reserves.
type ConstantProductPool struct {
	mu            sync.Mutex
	Mint          solana.PublicKey
	TokenReserve  uint64
	NativeReserve uint64
	FeeBps        uint16
}

// NewConstantProductPool seeds a pool with both reserves.
// Example payload: sdk.NewConstantProductPool(mint, 1_000_000, 50_000, 30)
func NewConstantProductPool(mint solana.PublicKey, tokenReserve, nativeReserve uint64, feeBps uint16) *ConstantProductPool {
	return &ConstantProductPool{
		Mint:          mint,
		TokenReserve:  tokenReserve,
		NativeReserve: nativeReserve,
		FeeBps:        feeBps,
	}
}

func (p *ConstantProductPool) quote(tokenIn solana.PublicKey, amountIn uint64) (uint64, error) {
	if !tokenIn.Equals(p.Mint) {
		return 0, fmt.Errorf("%w: pool does not trade %s", ErrQuoteUnavailable, tokenIn)
	}
	if p.TokenReserve == 0 || p.NativeReserve == 0 {
		return 0, fmt.Errorf("%w: empty reserves", ErrQuoteUnavailable)
	}
	if p.FeeBps >= 10000 {
		return 0, fmt.Errorf("%w: fee %d bps", ErrQuoteUnavailable, p.FeeBps)
	}
	inWithFee := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), big.NewInt(int64(10000-p.FeeBps)))
	num := new(big.Int).Mul(inWithFee, new(big.Int).SetUint64(p.NativeReserve))
	den := new(big.Int).Mul(new(big.Int).SetUint64(p.TokenReserve), big.NewInt(10000))
	den.Add(den, inWithFee)
	out := num.Quo(num, den)
	// out < NativeReserve always holds, so it fits.
	return out.Uint64(), nil
}

// Quote prices amountIn against the current reserves.
func (p *ConstantProductPool) Quote(tokenIn solana.PublicKey, amountIn uint64) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quote(tokenIn, amountIn)
}

// Settle moves the reserves for a fill that was quoted against the same state.
func (p *ConstantProductPool) Settle(tokenIn solana.PublicKey, amountIn, amountOut uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	q, err := p.quote(tokenIn, amountIn)
	if err != nil {
		return err
	}
	if q < amountOut {
		return fmt.Errorf("%w: pool gives %d, fill wants %d", ErrFillRejected, q, amountOut)
	}
	if p.TokenReserve+amountIn < p.TokenReserve {
		return fmt.Errorf("%w: token reserve overflow", ErrFillRejected)
	}
	p.TokenReserve += amountIn
	p.NativeReserve -= amountOut
	return nil
}

// FixedRateExchange pays a fixed number of reference units per PerUnits tokens, like an order
// book resting at a single price level.
type FixedRateExchange struct {
	Mint     solana.PublicKey
	Price    uint64
	PerUnits uint64
}

// Quote returns floor(amountIn*Price/PerUnits).
func (f *FixedRateExchange) Quote(tokenIn solana.PublicKey, amountIn uint64) (uint64, error) {
	if !tokenIn.Equals(f.Mint) {
		return 0, fmt.Errorf("%w: book does not trade %s", ErrQuoteUnavailable, tokenIn)
	}
	if f.PerUnits == 0 {
		return 0, fmt.Errorf("%w: no price level", ErrQuoteUnavailable)
	}
	out := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), new(big.Int).SetUint64(f.Price))
	out.Quo(out, new(big.Int).SetUint64(f.PerUnits))
	if !out.IsUint64() {
		return 0, fmt.Errorf("%w: quote overflows", ErrQuoteUnavailable)
	}
	return out.Uint64(), nil
}

// Settle accepts any fill the quote would honour.
func (f *FixedRateExchange) Settle(tokenIn solana.PublicKey, amountIn, amountOut uint64) error {
	q, err := f.Quote(tokenIn, amountIn)
	if err != nil {
		return err
	}
	if q < amountOut {
		return fmt.Errorf("%w: book gives %d, fill wants %d", ErrFillRejected, q, amountOut)
	}
	return nil
}

// FailingExchange never quotes. Handy to simulate an unreachable venue.
type FailingExchange struct {
	Reason string
}

func (f FailingExchange) Quote(solana.PublicKey, uint64) (uint64, error) {
	return 0, fmt.Errorf("%w: %s", ErrQuoteUnavailable, f.Reason)
}

func (f FailingExchange) Settle(solana.PublicKey, uint64, uint64) error {
	return fmt.Errorf("%w: %s", ErrFillRejected, f.Reason)
}
