package sdk

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// rent parameters of the reference runtime: lamports per byte-year, two years exempt, plus the
// fixed account header.
const (
	rentLamportsPerByteYear = 3480
	rentExemptYears         = 2
	rentAccountOverhead     = 128
)

type balanceKey struct {
	owner solana.PublicKey
	asset Asset
}

// MemoryHost is a single-process Host. It keeps the KV state, the token and currency ledgers and
// the registered exchanges in memory and commits a Tx only after validating all of it.
type MemoryHost struct {
	mu        sync.Mutex
	db        map[string]string
	balances  map[balanceKey]uint64
	exchanges map[solana.PublicKey]Exchange
	logs      []string
	commits   uint64
}

// NewMemoryHost returns an empty host.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		db:        make(map[string]string),
		balances:  make(map[balanceKey]uint64),
		exchanges: make(map[solana.PublicKey]Exchange),
	}
}

func (m *MemoryHost) StateGetObject(key string) *string {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.db[key]
	if !ok {
		return nil
	}
	return &val
}

func (m *MemoryHost) GetBalance(owner solana.PublicKey, asset Asset) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[balanceKey{owner, asset}]
}

// StorageDeposit follows the rent-exempt minimum of the reference runtime.
func (m *MemoryHost) StorageDeposit(size int) uint64 {
	if size < 0 {
		size = 0
	}
	return uint64(rentAccountOverhead+size) * rentLamportsPerByteYear * rentExemptYears
}

func (m *MemoryHost) Exchange(program solana.PublicKey) Exchange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchanges[program]
}

// RegisterExchange makes an exchange reachable under program. A nil ex removes it.
func (m *MemoryHost) RegisterExchange(program solana.PublicKey, ex Exchange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ex == nil {
		delete(m.exchanges, program)
		return
	}
	m.exchanges[program] = ex
}

// Mint credits amount of asset to owner out of thin air. Funding helper for tests and the runner.
func (m *MemoryHost) Mint(owner solana.PublicKey, asset Asset, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := balanceKey{owner, asset}
	if m.balances[k]+amount < m.balances[k] {
		return fmt.Errorf("mint %d %s to %s: balance overflow", amount, asset, owner)
	}
	m.balances[k] += amount
	return nil
}

// Logs returns every event line committed so far.
func (m *MemoryHost) Logs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.logs))
	copy(out, m.logs)
	return out
}

// Commits counts successfully applied transactions.
func (m *MemoryHost) Commits() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// Commit validates every effect against a scratch copy of the ledger and only then applies the
// writes, the effects and the logs. A failed validation leaves the host untouched.
func (m *MemoryHost) Commit(tx *Tx) error {
	if tx == nil {
		return errors.New("nil tx")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	scratch := make(map[balanceKey]uint64, len(tx.Effects)*2)
	get := func(k balanceKey) uint64 {
		if v, ok := scratch[k]; ok {
			return v
		}
		return m.balances[k]
	}
	for i, e := range tx.Effects {
		if e.Amount == 0 && e.AmountOut == 0 {
			continue
		}
		from := balanceKey{e.From, e.Asset}
		if get(from) < e.Amount {
			return fmt.Errorf("tx %s effect %d (%s): %w", tx.ID, i, e, ErrInsufficientFunds)
		}
		scratch[from] = get(from) - e.Amount

		credit := balanceKey{e.To, e.Asset}
		amount := e.Amount
		if e.Kind == EffectSwap {
			ex := m.exchanges[e.Venue]
			if ex == nil {
				return fmt.Errorf("tx %s effect %d: no exchange at %s", tx.ID, i, e.Venue)
			}
			q, err := ex.Quote(e.Asset.Mint(), e.Amount)
			if err != nil {
				return fmt.Errorf("tx %s effect %d: %w", tx.ID, i, err)
			}
			if q < e.AmountOut {
				return fmt.Errorf("tx %s effect %d: %w: quoted %d, fill wants %d", tx.ID, i, ErrFillRejected, q, e.AmountOut)
			}
			credit = balanceKey{e.To, AssetNative}
			amount = e.AmountOut
		}
		if get(credit)+amount < get(credit) {
			return fmt.Errorf("tx %s effect %d (%s): balance overflow", tx.ID, i, e)
		}
		scratch[credit] = get(credit) + amount
	}

	for _, e := range tx.Effects {
		if e.Kind == EffectSwap && e.Amount > 0 {
			if err := m.exchanges[e.Venue].Settle(e.Asset.Mint(), e.Amount, e.AmountOut); err != nil {
				// validated above against the same exchange state
				panic(fmt.Sprintf("settle after validation: %v", err))
			}
		}
	}
	for k, v := range scratch {
		if v == 0 {
			delete(m.balances, k)
			continue
		}
		m.balances[k] = v
	}
	for _, w := range tx.Writes {
		if w.Value == nil {
			delete(m.db, w.Key)
			continue
		}
		m.db[w.Key] = *w.Value
	}
	m.logs = append(m.logs, tx.Logs...)
	m.commits++
	return nil
}

// HostSnapshot is a comparable copy of everything observable on the host.
type HostSnapshot struct {
	State    map[string]string
	Balances map[string]uint64
}

// Snapshot copies the KV state and ledger so callers can compare before and after a call.
func (m *MemoryHost) Snapshot() HostSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := HostSnapshot{
		State:    make(map[string]string, len(m.db)),
		Balances: make(map[string]uint64, len(m.balances)),
	}
	for k, v := range m.db {
		s.State[hex.EncodeToString([]byte(k))] = hex.EncodeToString([]byte(v))
	}
	for k, v := range m.balances {
		s.Balances[k.owner.String()+"/"+k.asset.String()] = v
	}
	return s
}
