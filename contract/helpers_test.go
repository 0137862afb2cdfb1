package contract_test

import (
	"fmt"
	"testing"

	"tax_reward/contract"
	"tax_reward/sdk"

	"github.com/CosmWasm/tinyjson"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// native funding every test wallet gets so storage deposits never get in the way
const walletNative = 10_000_000

type testEnv struct {
	host     *sdk.MemoryHost
	c        *contract.Contract
	program  solana.PublicKey
	mint     solana.PublicKey
	owner    solana.PublicKey
	alice    solana.PublicKey
	bob      solana.PublicKey
	carol    solana.PublicKey
	primary  solana.PublicKey
	fallback solana.PublicKey
	txs      int
}

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// setupContractTest builds a host with four funded wallets and two venue programs, nothing
// registered under them yet.
func setupContractTest(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		host:     sdk.NewMemoryHost(),
		program:  newKey(),
		mint:     newKey(),
		owner:    newKey(),
		alice:    newKey(),
		bob:      newKey(),
		carol:    newKey(),
		primary:  newKey(),
		fallback: newKey(),
	}
	for _, w := range []solana.PublicKey{te.owner, te.alice, te.bob, te.carol} {
		require.NoError(t, te.host.Mint(w, sdk.AssetNative, walletNative))
	}
	c, err := contract.New(contract.Options{ProgramID: te.program, Mint: te.mint, Host: te.host})
	require.NoError(t, err)
	te.c = c
	return te
}

// setupInitialized is setupContractTest plus initialize at rate bps with an aggregator primary
// and an order book fallback of lot size 10.
func setupInitialized(t *testing.T, rate uint64) *testEnv {
	t.Helper()
	te := setupContractTest(t)
	callContract(t, te, contract.ActionInitialize, te.initPayload(rate), te.owner, true)
	return te
}

func (te *testEnv) initPayload(rate uint64) []byte {
	return mustJSON(contract.InitializeArgs{
		TaxRateBps: rate,
		Venues: []contract.VenueArgs{
			{Kind: "aggregator", Program: te.primary.String()},
			{Kind: "orderbook", Program: te.fallback.String(), LotSize: 10},
		},
	})
}

func (te *testEnv) env(sender solana.PublicKey) sdk.Env {
	te.txs++
	return sdk.NewEnv(fmt.Sprintf("tx-%d", te.txs), sender)
}

func (te *testEnv) fundTokens(t *testing.T, holder solana.PublicKey, amount uint64) {
	t.Helper()
	require.NoError(t, te.host.Mint(holder, sdk.TokenAsset(te.mint), amount))
}

func (te *testEnv) tokens(holder solana.PublicKey) uint64 {
	return te.host.GetBalance(holder, sdk.TokenAsset(te.mint))
}

func (te *testEnv) native(holder solana.PublicKey) uint64 {
	return te.host.GetBalance(holder, sdk.AssetNative)
}

// callContract runs action through Dispatch and asserts the outcome like a wallet would see it.
func callContract(t *testing.T, te *testEnv, action string, payload []byte, sender solana.PublicKey, expectedResult bool) ([]byte, error) {
	t.Helper()
	out, err := te.c.Dispatch(te.env(sender), action, payload)
	if expectedResult {
		require.NoError(t, err, "%s failed", action)
	} else {
		require.Error(t, err, "%s did not fail (as expected)", action)
	}
	return out, err
}

func taxed(t *testing.T, te *testEnv, sender solana.PublicKey, amount, minOut uint64) contract.TaxedResult {
	t.Helper()
	out, _ := callContract(t, te, contract.ActionTaxed,
		mustJSON(contract.TaxedArgs{AmountIn: amount, MinAmountOut: minOut}), sender, true)
	var res contract.TaxedResult
	require.NoError(t, tinyjson.Unmarshal(out, &res))
	return res
}

func claim(t *testing.T, te *testEnv, sender solana.PublicKey) uint64 {
	t.Helper()
	out, _ := callContract(t, te, contract.ActionClaim, nil, sender, true)
	var res contract.ClaimResult
	require.NoError(t, tinyjson.Unmarshal(out, &res))
	return res.AmountPaid
}

func u64(v uint64) *uint64 { return &v }

func flag(v bool) *bool { return &v }

func mustJSON(v tinyjson.Marshaler) []byte {
	b, err := tinyjson.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// assertSolvent checks that what every listed holder could claim fits in the reward vault and
// that the engine's view of both vaults matches the ledger.
func assertSolvent(t *testing.T, te *testEnv, holders ...solana.PublicKey) {
	t.Helper()
	acc, err := te.c.Accounts(solana.PublicKey{})
	require.NoError(t, err)
	var owed, supply uint64
	for _, h := range holders {
		o, err := te.c.PendingRewards(h)
		require.NoError(t, err)
		owed += o
		hacc, err := te.c.Accounts(h)
		require.NoError(t, err)
		if hacc.User != nil {
			supply += hacc.User.Snapshot
		}
	}
	assert.LessOrEqual(t, owed, acc.RewardVault.Balance, "owed exceeds reward vault")
	assert.Equal(t, supply, acc.Global.TotalSupply, "supply is not the sum of snapshots")
	assert.Equal(t, acc.RewardVault.Balance, te.native(te.c.RewardVault()), "reward vault record and ledger diverged")
	assert.Equal(t, acc.TokenVault.Balance, te.tokens(te.c.TokenVault()), "token vault record and ledger diverged")
}
