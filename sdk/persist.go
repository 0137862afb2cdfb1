package sdk

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/gagliardetto/solana-go"
)

// ---- file persistence for the runner ----

//tinyjson:json
type persistedBalance struct {
	Owner  string `json:"owner"`
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

// persistedHost is the state file. KV keys and values are binary so they travel hex encoded.
//
//tinyjson:json
type persistedHost struct {
	State    map[string]string  `json:"state"`
	Balances []persistedBalance `json:"balances"`
	Logs     []string           `json:"logs"`
}

// SaveToFile writes state, ledger and committed logs to a JSON file.
func (m *MemoryHost) SaveToFile(filename string) error {
	m.mu.Lock()
	p := persistedHost{State: make(map[string]string, len(m.db))}
	p.Logs = append(p.Logs, m.logs...)
	for k, v := range m.db {
		p.State[hex.EncodeToString([]byte(k))] = hex.EncodeToString([]byte(v))
	}
	for k, v := range m.balances {
		p.Balances = append(p.Balances, persistedBalance{
			Owner:  k.owner.String(),
			Asset:  solana.PublicKey(k.asset).String(),
			Amount: v,
		})
	}
	m.mu.Unlock()

	sort.Slice(p.Balances, func(i, j int) bool {
		if p.Balances[i].Owner != p.Balances[j].Owner {
			return p.Balances[i].Owner < p.Balances[j].Owner
		}
		return p.Balances[i].Asset < p.Balances[j].Asset
	})
	data, err := tinyjson.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// LoadFromFile replaces state, ledger and logs with the content of filename. A missing file is
// not an error, the host just stays empty.
func (m *MemoryHost) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var p persistedHost
	if err := tinyjson.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	db := make(map[string]string, len(p.State))
	for k, v := range p.State {
		kb, err := hex.DecodeString(k)
		if err != nil {
			return fmt.Errorf("state key %q: %w", k, err)
		}
		vb, err := hex.DecodeString(v)
		if err != nil {
			return fmt.Errorf("state value for %q: %w", k, err)
		}
		db[string(kb)] = string(vb)
	}
	balances := make(map[balanceKey]uint64, len(p.Balances))
	for _, b := range p.Balances {
		owner, err := solana.PublicKeyFromBase58(b.Owner)
		if err != nil {
			return fmt.Errorf("balance owner %q: %w", b.Owner, err)
		}
		asset, err := solana.PublicKeyFromBase58(b.Asset)
		if err != nil {
			return fmt.Errorf("balance asset %q: %w", b.Asset, err)
		}
		balances[balanceKey{owner, Asset(asset)}] = b.Amount
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.db = db
	m.balances = balances
	m.logs = p.Logs
	return nil
}

// ---- codecs ----

// readFields walks one object and calls fn for every non null field; fn must consume the value.
func readFields(in *jlexer.Lexer, fn func(key string)) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		fn(key)
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func (v persistedBalance) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"owner":`)
	out.String(v.Owner)
	out.RawString(`,"asset":`)
	out.String(v.Asset)
	out.RawString(`,"amount":`)
	out.Uint64(v.Amount)
	out.RawByte('}')
}

func (v *persistedBalance) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readFields(in, func(key string) {
		switch key {
		case "owner":
			v.Owner = in.String()
		case "asset":
			v.Asset = in.String()
		case "amount":
			v.Amount = in.Uint64()
		default:
			in.SkipRecursive()
		}
	})
}

func (v persistedHost) MarshalTinyJSON(out *jwriter.Writer) {
	keys := make([]string, 0, len(v.State))
	for k := range v.State {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out.RawString(`{"state":{`)
	for i, k := range keys {
		if i > 0 {
			out.RawByte(',')
		}
		out.String(k)
		out.RawByte(':')
		out.String(v.State[k])
	}
	out.RawString(`},"balances":[`)
	for i, b := range v.Balances {
		if i > 0 {
			out.RawByte(',')
		}
		b.MarshalTinyJSON(out)
	}
	out.RawString(`],"logs":[`)
	for i, l := range v.Logs {
		if i > 0 {
			out.RawByte(',')
		}
		out.String(l)
	}
	out.RawString(`]}`)
}

func (v *persistedHost) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readFields(in, func(key string) {
		switch key {
		case "state":
			v.State = make(map[string]string)
			in.Delim('{')
			for !in.IsDelim('}') {
				k := in.String()
				in.WantColon()
				v.State[k] = in.String()
				in.WantComma()
			}
			in.Delim('}')
		case "balances":
			in.Delim('[')
			for !in.IsDelim(']') {
				var b persistedBalance
				b.UnmarshalTinyJSON(in)
				v.Balances = append(v.Balances, b)
				in.WantComma()
			}
			in.Delim(']')
		case "logs":
			in.Delim('[')
			for !in.IsDelim(']') {
				v.Logs = append(v.Logs, in.String())
				in.WantComma()
			}
			in.Delim(']')
		default:
			in.SkipRecursive()
		}
	})
}
