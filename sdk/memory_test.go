package sdk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	return solana.NewWallet().PublicKey()
}

func TestCommitAppliesWritesEffectsAndLogs(t *testing.T) {
	h := NewMemoryHost()
	mint := newKey(t)
	alice, vault := newKey(t), newKey(t)
	require.NoError(t, h.Mint(alice, TokenAsset(mint), 1000))

	tx := &Tx{}
	tx.Set("k", "v")
	tx.Effects = append(tx.Effects, Transfer(TokenAsset(mint), alice, vault, 50))
	tx.Logs = append(tx.Logs, "tx|by:alice")
	require.NoError(t, h.Commit(tx))

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, uint64(950), h.GetBalance(alice, TokenAsset(mint)))
	assert.Equal(t, uint64(50), h.GetBalance(vault, TokenAsset(mint)))
	require.NotNil(t, h.StateGetObject("k"))
	assert.Equal(t, "v", *h.StateGetObject("k"))
	assert.Equal(t, []string{"tx|by:alice"}, h.Logs())
	assert.Equal(t, uint64(1), h.Commits())
}

func TestCommitRejectsWithoutSideEffects(t *testing.T) {
	h := NewMemoryHost()
	mint := newKey(t)
	alice, bob := newKey(t), newKey(t)
	require.NoError(t, h.Mint(alice, TokenAsset(mint), 10))
	before := h.Snapshot()

	tx := &Tx{}
	tx.Set("k", "v")
	tx.Effects = append(tx.Effects,
		Transfer(TokenAsset(mint), alice, bob, 5),
		Transfer(TokenAsset(mint), alice, bob, 6),
	)
	err := h.Commit(tx)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, before, h.Snapshot())
	assert.Empty(t, h.Logs())
}

func TestCommitSwapMovesPoolReserves(t *testing.T) {
	h := NewMemoryHost()
	mint, program := newKey(t), newKey(t)
	vault, rewards := newKey(t), newKey(t)
	pool := NewConstantProductPool(mint, 1_000_000, 1_000_000, 0)
	h.RegisterExchange(program, pool)
	require.NoError(t, h.Mint(vault, TokenAsset(mint), 1000))

	out, err := pool.Quote(mint, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(999), out)

	tx := &Tx{Effects: []Effect{{
		Kind: EffectSwap, Asset: TokenAsset(mint), From: vault, To: rewards,
		Amount: 1000, Venue: program, AmountOut: out,
	}}}
	require.NoError(t, h.Commit(tx))
	assert.Equal(t, uint64(0), h.GetBalance(vault, TokenAsset(mint)))
	assert.Equal(t, out, h.GetBalance(rewards, AssetNative))
	assert.Equal(t, uint64(1_001_000), pool.TokenReserve)
	assert.Equal(t, uint64(1_000_000-999), pool.NativeReserve)
}

func TestCommitSwapRejectsOverstatedFill(t *testing.T) {
	h := NewMemoryHost()
	mint, program := newKey(t), newKey(t)
	vault, rewards := newKey(t), newKey(t)
	h.RegisterExchange(program, &FixedRateExchange{Mint: mint, Price: 1, PerUnits: 10})
	require.NoError(t, h.Mint(vault, TokenAsset(mint), 100))

	tx := &Tx{Effects: []Effect{{
		Kind: EffectSwap, Asset: TokenAsset(mint), From: vault, To: rewards,
		Amount: 100, Venue: program, AmountOut: 11,
	}}}
	require.ErrorIs(t, h.Commit(tx), ErrFillRejected)
	assert.Equal(t, uint64(100), h.GetBalance(vault, TokenAsset(mint)))
}

func TestFailingExchangeNeverQuotes(t *testing.T) {
	_, err := FailingExchange{Reason: "offline"}.Quote(solana.PublicKey{}, 1)
	assert.ErrorIs(t, err, ErrQuoteUnavailable)
}

func TestStorageDepositMatchesRentExemption(t *testing.T) {
	h := NewMemoryHost()
	assert.Equal(t, uint64(890_880), h.StorageDeposit(0))
	assert.Equal(t, uint64((128+100)*3480*2), h.StorageDeposit(100))
}

func TestSaveAndLoadFile(t *testing.T) {
	h := NewMemoryHost()
	mint, alice := newKey(t), newKey(t)
	require.NoError(t, h.Mint(alice, TokenAsset(mint), 42))
	require.NoError(t, h.Mint(alice, AssetNative, 7))
	tx := &Tx{}
	tx.Set(string([]byte{0x05, 0x00, 0xff}), string([]byte{0x00, 0x01}))
	tx.Logs = []string{"in|o:x"}
	require.NoError(t, h.Commit(tx))

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, h.SaveToFile(path))

	loaded := NewMemoryHost()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, h.Snapshot(), loaded.Snapshot())
	assert.Equal(t, h.Logs(), loaded.Logs())

	missing := NewMemoryHost()
	require.NoError(t, missing.LoadFromFile(filepath.Join(t.TempDir(), "nope.json")))
}

func TestLoadFileWrittenByHand(t *testing.T) {
	alice := newKey(t)
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"state":{"0500ff":"0001"},"balances":[{"owner":"` + alice.String() +
		`","asset":"` + NativeMint.String() + `","amount":9,"note":"ignored"}],"logs":null,"extra":{"a":[1]}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	h := NewMemoryHost()
	require.NoError(t, h.LoadFromFile(path))
	assert.Equal(t, uint64(9), h.GetBalance(alice, AssetNative))
	require.NotNil(t, h.StateGetObject(string([]byte{0x05, 0x00, 0xff})))
	assert.Empty(t, h.Logs())

	require.NoError(t, os.WriteFile(path, []byte(`{"state":{"zz":"00"}}`), 0644))
	assert.Error(t, NewMemoryHost().LoadFromFile(path), "bad hex key")
	require.NoError(t, os.WriteFile(path, []byte(`{"state":`), 0644))
	assert.Error(t, NewMemoryHost().LoadFromFile(path), "truncated file")
}
