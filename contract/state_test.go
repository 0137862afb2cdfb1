package contract

import (
	"testing"

	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func testAddresses(t *testing.T) addresses {
	t.Helper()
	addrs, err := deriveAddresses(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	return addrs
}

func TestDeriveAddressesDistinct(t *testing.T) {
	addrs := testAddresses(t)
	holder := solana.NewWallet().PublicKey()
	user, _, err := addrs.userAddress(holder)
	require.NoError(t, err)

	seen := map[solana.PublicKey]bool{}
	for _, k := range []solana.PublicKey{addrs.config, addrs.global, addrs.tokenVault, addrs.rewardVault, user} {
		assert.False(t, seen[k], "address %s derived twice", k)
		seen[k] = true
	}

	again, _, err := addrs.userAddress(holder)
	require.NoError(t, err)
	assert.Equal(t, user, again)
}

func TestUserInfoEncodingSize(t *testing.T) {
	u := &UserInfo{Owner: solana.NewWallet().PublicKey(), LastCum: uint128.New(1, 2), Snapshot: 3, TotalClaimed: 4, Deposit: 5, Bump: 254}
	raw := encodeUserInfo(u)
	assert.Len(t, raw, userInfoSize)

	back, err := decodeUserInfo(raw)
	require.NoError(t, err)
	assert.Equal(t, u, back)

	_, err = decodeUserInfo(append(raw, 0))
	assert.Error(t, err, "trailing bytes")
	_, err = decodeUserInfo(raw[:len(raw)-1])
	assert.Error(t, err)
}

func TestLoadAccountsRejectsCorruptRecords(t *testing.T) {
	addrs := testAddresses(t)
	host := sdk.NewMemoryHost()

	tx := &sdk.Tx{}
	tx.Set(addrs.configKey(), string([]byte{0xff, 1, 2}))
	require.NoError(t, host.Commit(tx))

	_, err := loadAccounts(host, addrs, solana.PublicKey{})
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestLoadAccountsRejectsPartialInit(t *testing.T) {
	addrs := testAddresses(t)
	host := sdk.NewMemoryHost()

	tx := &sdk.Tx{}
	tx.Set(addrs.configKey(), string(encodeConfig(&Config{
		Owner:  solana.NewWallet().PublicKey(),
		Mint:   addrs.mint,
		Venues: []VenueSpec{{Kind: VenueAggregator, Program: solana.NewWallet().PublicKey()}},
	})))
	require.NoError(t, host.Commit(tx))

	_, err := loadAccounts(host, addrs, solana.PublicKey{})
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestAccountsWritesOnlyChangedRecords(t *testing.T) {
	addrs := testAddresses(t)
	host := sdk.NewMemoryHost()

	acc := &Accounts{
		Config:      &Config{Owner: solana.NewWallet().PublicKey(), Mint: addrs.mint},
		Global:      &GlobalState{},
		TokenVault:  &TokenVault{},
		RewardVault: &RewardVault{},
		loaded:      map[string]string{},
	}
	tx := &sdk.Tx{}
	acc.writes(addrs, tx)
	assert.Len(t, tx.Writes, 4)
	require.NoError(t, host.Commit(tx))

	loaded, err := loadAccounts(host, addrs, solana.PublicKey{})
	require.NoError(t, err)
	require.True(t, loaded.Initialized())

	tx = &sdk.Tx{}
	loaded.writes(addrs, tx)
	assert.True(t, tx.Empty(), "nothing changed, nothing to write")

	require.NoError(t, loaded.addTokenVault(7))
	tx = &sdk.Tx{}
	loaded.writes(addrs, tx)
	require.Len(t, tx.Writes, 1)
	assert.Equal(t, addrs.tokenVaultKey(), tx.Writes[0].Key)

	assert.ErrorIs(t, loaded.removeTokenVault(8), ErrInvariantViolation)
}

func TestConfigEncodingLayout(t *testing.T) {
	cfg := &Config{
		Owner:         solana.NewWallet().PublicKey(),
		Mint:          solana.NewWallet().PublicKey(),
		TaxRateBps:    500,
		Paused:        true,
		SwapThreshold: 1 << 40,
		Venues: []VenueSpec{
			{Kind: VenueAggregator, Program: solana.NewWallet().PublicKey()},
			{Kind: VenueOrderBook, Program: solana.NewWallet().PublicKey(), LotSize: 10},
		},
	}
	raw := encodeConfig(cfg)
	back, err := decodeConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)

	// version, owner, mint, then the big endian rate and the paused flag
	assert.Equal(t, []byte{0x01, 0xf4}, raw[65:67])
	assert.Equal(t, byte(1), raw[67])

	raw[67] = 2
	_, err = decodeConfig(raw)
	assert.Error(t, err, "paused flag must be 0 or 1")
}
