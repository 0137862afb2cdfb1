package contract

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tax_reward/logger"
	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// Options wires a Contract to its program id, the managed mint and the host it runs on.
type Options struct {
	ProgramID solana.PublicKey
	Mint      solana.PublicKey
	Host      sdk.Host
	Logger    *slog.Logger
}

func (cfg *Options) Validate() error {
	if cfg.ProgramID.IsZero() {
		return errors.New("program id is required")
	}
	if cfg.Mint.IsZero() {
		return errors.New("mint is required")
	}
	if cfg.Mint.Equals(sdk.NativeMint) {
		return errors.New("mint cannot be the reference currency")
	}
	if cfg.Host == nil {
		return errors.New("host is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	return nil
}

// Contract is the tax and reward engine for one mint. Instructions are serialized: each one
// loads its accounts, runs to completion and commits as a single host transaction.
type Contract struct {
	log   *slog.Logger
	host  sdk.Host
	addrs addresses
	mu    sync.Mutex
}

func New(cfg Options) (*Contract, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	addrs, err := deriveAddresses(cfg.ProgramID, cfg.Mint)
	if err != nil {
		return nil, err
	}
	return &Contract{
		log:   cfg.Logger.With("mint", cfg.Mint.String()),
		host:  cfg.Host,
		addrs: addrs,
	}, nil
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

// execute runs fn against freshly loaded accounts and commits its writes, effects and events
// in one sdk.Tx. An error or panic anywhere before commit leaves the host untouched.
func (c *Contract) execute(name string, env sdk.Env, needsUser bool, fn func(x *execution) error) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fail(ErrInvariantViolation, "panic in %s: %v", name, r)
		}
		c.observe(name, env, start, err)
	}()

	if env.Sender.Address.IsZero() {
		return fail(ErrUnauthorized, "missing sender")
	}
	holder := solana.PublicKey{}
	if needsUser {
		holder = env.Sender.Address
	}
	acc, err := loadAccounts(c.host, c.addrs, holder)
	if err != nil {
		return err
	}
	if name != ActionInitialize && !acc.Initialized() {
		return ErrNotInitialized
	}

	x := &execution{env: env, host: c.host, addrs: c.addrs, acc: acc}
	if err := fn(x); err != nil {
		return err
	}

	tx := &sdk.Tx{ID: env.TxID, Effects: x.effects, Logs: x.logs}
	acc.writes(c.addrs, tx)
	if err := c.host.Commit(tx); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitRejected, err)
	}

	TaxCollectedTotal.Add(float64(x.taxCollected))
	RewardsAccruedTotal.Add(float64(x.accrued))
	RewardsPaidTotal.Add(float64(x.paid))
	return nil
}

// observe records metrics and logs for one finished instruction.
func (c *Contract) observe(name string, env sdk.Env, start time.Time, err error) {
	if err == nil {
		InstructionsTotal.WithLabelValues(name, "ok").Inc()
		c.log.Debug("instruction committed",
			"instruction", name,
			"tx", env.TxID,
			"sender", env.Sender.Address.String(),
			"duration", time.Since(start))
		return
	}
	InstructionsTotal.WithLabelValues(name, SymbolOf(err)).Inc()
	if ClassOf(err) == ClassInvariant {
		InvariantViolationsTotal.Inc()
		c.log.Error("invariant violation",
			"instruction", name,
			"tx", env.TxID,
			"sender", env.Sender.Address.String(),
			"error", err)
		return
	}
	c.log.Debug("instruction reverted",
		"instruction", name,
		"tx", env.TxID,
		"symbol", SymbolOf(err),
		"error", err)
}

// -----------------------------------------------------------------------------
// Instructions
// -----------------------------------------------------------------------------

// Initialize sets up config, global state and both vaults. The sender becomes the owner.
func (c *Contract) Initialize(env sdk.Env, args InitializeArgs) error {
	return c.execute(ActionInitialize, env, false, func(x *execution) error {
		return x.initialize(args)
	})
}

// TaxedOperation runs one taxed transfer and distributes the collected tax.
func (c *Contract) TaxedOperation(env sdk.Env, args TaxedArgs) (*TaxedResult, error) {
	var res *TaxedResult
	err := c.execute(ActionTaxed, env, true, func(x *execution) error {
		var err error
		res, err = x.taxedOperation(args)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ClaimRewards pays the sender what it is owed.
func (c *Contract) ClaimRewards(env sdk.Env) (*ClaimResult, error) {
	var res *ClaimResult
	err := c.execute(ActionClaim, env, true, func(x *execution) error {
		var err error
		res, err = x.claimRewards()
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateConfig changes rate, pause flag and optionally venues and threshold. Owner only.
func (c *Contract) UpdateConfig(env sdk.Env, args UpdateConfigArgs) error {
	return c.execute(ActionUpdateConfig, env, false, func(x *execution) error {
		return x.updateConfig(args)
	})
}

// CloseUserInfo deletes the sender's empty record and refunds its storage deposit.
func (c *Contract) CloseUserInfo(env sdk.Env) (*CloseResult, error) {
	var res *CloseResult
	err := c.execute(ActionCloseUserInfo, env, true, func(x *execution) error {
		var err error
		res, err = x.closeUserInfo()
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

// Accounts loads the current records, including holder's UserInfo when holder is not zero.
// The returned value is a copy, changing it has no effect.
func (c *Contract) Accounts(holder solana.PublicKey) (*Accounts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return loadAccounts(c.host, c.addrs, holder)
}

// PendingRewards is what holder could claim right now. Zero for holders without a record.
func (c *Contract) PendingRewards(holder solana.PublicKey) (uint64, error) {
	acc, err := c.Accounts(holder)
	if err != nil {
		return 0, err
	}
	if !acc.Initialized() {
		return 0, ErrNotInitialized
	}
	if acc.User == nil {
		return 0, nil
	}
	return Owed(acc.User, acc.Global.CumRewardPerUnit)
}

// CumRewardPerUnit returns the accumulator, zero before initialization.
func (c *Contract) CumRewardPerUnit() uint128.Uint128 {
	acc, err := c.Accounts(solana.PublicKey{})
	if err != nil || acc.Global == nil {
		return uint128.Zero
	}
	return acc.Global.CumRewardPerUnit
}

// TokenVault is the ledger account holding collected tax.
func (c *Contract) TokenVault() solana.PublicKey { return c.addrs.tokenVault }

// RewardVault is the ledger account holding undistributed rewards.
func (c *Contract) RewardVault() solana.PublicKey { return c.addrs.rewardVault }

// Mint is the managed token.
func (c *Contract) Mint() solana.PublicKey { return c.addrs.mint }

// UserInfoAddress derives where holder's record lives.
func (c *Contract) UserInfoAddress(holder solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := c.addrs.userAddress(holder)
	return addr, err
}
