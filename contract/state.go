package contract

import (
	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
)

// -----------------------------------------------------------------------------
// Loading
// -----------------------------------------------------------------------------

// loadAccounts reads every record an instruction may touch. holder is the zero key when the
// instruction has no per holder record.
func loadAccounts(host sdk.Host, addrs addresses, holder solana.PublicKey) (*Accounts, error) {
	acc := &Accounts{loaded: make(map[string]string, 5)}

	get := func(key string) ([]byte, bool) {
		ptr := host.StateGetObject(key)
		if ptr == nil || *ptr == "" {
			return nil, false
		}
		acc.loaded[key] = *ptr
		return []byte(*ptr), true
	}

	if raw, ok := get(addrs.configKey()); ok {
		cfg, err := decodeConfig(raw)
		if err != nil {
			return nil, fail(ErrInvariantViolation, "corrupt config record: %v", err)
		}
		acc.Config = cfg
	}
	if raw, ok := get(addrs.globalKey()); ok {
		g, err := decodeGlobal(raw)
		if err != nil {
			return nil, fail(ErrInvariantViolation, "corrupt global record: %v", err)
		}
		acc.Global = g
	}
	if raw, ok := get(addrs.tokenVaultKey()); ok {
		bal, bump, err := decodeVault(raw)
		if err != nil {
			return nil, fail(ErrInvariantViolation, "corrupt token vault record: %v", err)
		}
		acc.TokenVault = &TokenVault{Balance: bal, Bump: bump}
	}
	if raw, ok := get(addrs.rewardVaultKey()); ok {
		bal, bump, err := decodeVault(raw)
		if err != nil {
			return nil, fail(ErrInvariantViolation, "corrupt reward vault record: %v", err)
		}
		acc.RewardVault = &RewardVault{Balance: bal, Bump: bump}
	}

	// the singletons exist all together or not at all
	if acc.Config != nil && (acc.Global == nil || acc.TokenVault == nil || acc.RewardVault == nil) {
		return nil, fail(ErrInvariantViolation, "partially initialized state")
	}

	if !holder.IsZero() {
		userAddr, _, err := addrs.userAddress(holder)
		if err != nil {
			return nil, fail(ErrInvariantViolation, "%v", err)
		}
		acc.userAddr = userAddr
		if raw, ok := get(userKey(userAddr)); ok {
			u, err := decodeUserInfo(raw)
			if err != nil {
				return nil, fail(ErrInvariantViolation, "corrupt user info for %s: %v", holder, err)
			}
			if !u.Owner.Equals(holder) {
				return nil, fail(ErrInvariantViolation, "user info at %s owned by %s", userAddr, u.Owner)
			}
			acc.User = u
		}
	}
	return acc, nil
}

// -----------------------------------------------------------------------------
// Persisting
// -----------------------------------------------------------------------------

// writes diffs the records against what was loaded and queues only what changed, so we dont
// thrash storage with identical rewrites.
func (a *Accounts) writes(addrs addresses, tx *sdk.Tx) {
	setIfChanged := func(key string, value []byte) {
		if prev, ok := a.loaded[key]; ok && prev == string(value) {
			return
		}
		tx.Set(key, string(value))
	}

	if a.Config != nil {
		setIfChanged(addrs.configKey(), encodeConfig(a.Config))
	}
	if a.Global != nil {
		setIfChanged(addrs.globalKey(), encodeGlobal(a.Global))
	}
	if a.TokenVault != nil {
		setIfChanged(addrs.tokenVaultKey(), encodeVault(a.TokenVault.Balance, a.TokenVault.Bump))
	}
	if a.RewardVault != nil {
		setIfChanged(addrs.rewardVaultKey(), encodeVault(a.RewardVault.Balance, a.RewardVault.Bump))
	}

	if a.userAddr.IsZero() {
		return
	}
	key := userKey(a.userAddr)
	switch {
	case a.userClosed:
		if _, ok := a.loaded[key]; ok {
			tx.Delete(key)
		}
	case a.User != nil:
		setIfChanged(key, encodeUserInfo(a.User))
	}
}

// -----------------------------------------------------------------------------
// Vault balances
// -----------------------------------------------------------------------------

// addTokenVault credits collected tax to the token vault record.
func (a *Accounts) addTokenVault(amount uint64) error {
	bal, ok := addU64(a.TokenVault.Balance, amount)
	if !ok {
		return fail(ErrArithmetic, "token vault overflow")
	}
	a.TokenVault.Balance = bal
	return nil
}

// removeTokenVault debits swapped tokens. Going below zero is a defect, not a user error.
func (a *Accounts) removeTokenVault(amount uint64) error {
	bal, ok := subU64(a.TokenVault.Balance, amount)
	if !ok {
		return fail(ErrInvariantViolation, "token vault underflow: %d - %d", a.TokenVault.Balance, amount)
	}
	a.TokenVault.Balance = bal
	return nil
}
