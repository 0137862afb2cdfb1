////////////////////////////////////////////////////////////////////////////////
// tax_reward: taxed transfers with pro-rata reward distribution
// local runner, replays an instruction script against the in-memory host
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"regexp"
	"strings"

	flag "github.com/spf13/pflag"

	"tax_reward/contract"
	"tax_reward/logger"
	"tax_reward/sdk"

	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const (
	defaultTokenDecimals  = 6
	defaultNativeDecimals = 9
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	scriptFlag := flag.String("script", "", "JSONL instruction script, - for stdin (or set TAX_REWARD_SCRIPT env var)")
	stateFlag := flag.String("state", "", "file the host state is loaded from and saved to (or set TAX_REWARD_STATE env var)")
	metricsAddrFlag := flag.String("metrics-addr", "", "address to serve prometheus metrics on (or set TAX_REWARD_METRICS_ADDR env var)")
	programFlag := flag.String("program", "", "program id, base58 (or set TAX_REWARD_PROGRAM env var)")
	mintFlag := flag.String("mint", "", "managed token mint, base58 (or set TAX_REWARD_MINT env var)")
	tokenDecimalsFlag := flag.Int32("token-decimals", defaultTokenDecimals, "decimals used to print token amounts")

	flag.Parse()

	log := logger.New(*verboseFlag)

	// Override flags with environment variables if set
	if v := os.Getenv("TAX_REWARD_SCRIPT"); v != "" {
		*scriptFlag = v
	}
	if v := os.Getenv("TAX_REWARD_STATE"); v != "" {
		*stateFlag = v
	}
	if v := os.Getenv("TAX_REWARD_METRICS_ADDR"); v != "" {
		*metricsAddrFlag = v
	}
	if v := os.Getenv("TAX_REWARD_PROGRAM"); v != "" {
		*programFlag = v
	}
	if v := os.Getenv("TAX_REWARD_MINT"); v != "" {
		*mintFlag = v
	}

	if *scriptFlag == "" {
		return fmt.Errorf("--script is required")
	}

	program, err := keyOrDefault(*programFlag, "program")
	if err != nil {
		return fmt.Errorf("invalid --program: %w", err)
	}
	mint, err := keyOrDefault(*mintFlag, "mint")
	if err != nil {
		return fmt.Errorf("invalid --mint: %w", err)
	}

	if *metricsAddrFlag != "" {
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("failed to start prometheus metrics server listener", "error", err)
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("failed to start prometheus metrics server", "error", err)
			}
		}()
	}

	host := sdk.NewMemoryHost()
	if *stateFlag != "" {
		if err := host.LoadFromFile(*stateFlag); err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
	}

	c, err := contract.New(contract.Options{ProgramID: program, Mint: mint, Host: host, Logger: log})
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if *scriptFlag != "-" {
		f, err := os.Open(*scriptFlag)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	r := &runner{
		log:           log,
		host:          host,
		c:             c,
		program:       program,
		out:           os.Stdout,
		tokenDecimals: *tokenDecimalsFlag,
	}
	if err := r.replay(in); err != nil {
		return err
	}

	if *stateFlag != "" {
		if err := host.SaveToFile(*stateFlag); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
		log.Info("state saved", "file", *stateFlag, "commits", host.Commits())
	}
	return nil
}

// keyOrDefault parses a base58 key, or derives a stable placeholder when none is given so
// repeated runs against the same state file line up.
func keyOrDefault(s, seed string) (solana.PublicKey, error) {
	if s != "" {
		return solana.PublicKeyFromBase58(s)
	}
	return solana.CreateWithSeed(solana.SystemProgramID, "tax_reward_"+seed, solana.SystemProgramID)
}

// -----------------------------------------------------------------------------
// Script replay
// -----------------------------------------------------------------------------

// step is one script line. Which fields matter depends on Op:
//
//	{"op":"fund","to":"$alice","asset":"token","amount":1000}
//	{"op":"pool","program":"$amm","kind":"cp","token_reserve":1000000,"native_reserve":50000,"fee_bps":30}
//	{"op":"call","sender":"$owner","action":"initialize","payload":{"tax_rate_bps":500,"venues":[...]}}
//	{"op":"exec","sender":"$alice","tag":1,"amount":250,"min_out":0}
//	{"op":"balance","of":"$alice"}
//
//tinyjson:json
type step struct {
	Op      string `json:"op"`
	Sender  string `json:"sender"`
	Action  string `json:"action"`
	Payload []byte `json:"payload"`

	To     string `json:"to"`
	Of     string `json:"of"`
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`

	Program       string `json:"program"`
	Kind          string `json:"kind"`
	TokenReserve  uint64 `json:"token_reserve"`
	NativeReserve uint64 `json:"native_reserve"`
	FeeBps        uint16 `json:"fee_bps"`
	Price         uint64 `json:"price"`
	PerUnits      uint64 `json:"per_units"`

	Tag    byte   `json:"tag"`
	MinOut uint64 `json:"min_out"`
}

// UnmarshalTinyJSON keeps the payload as raw JSON, it is decoded later by the contract.
func (s *step) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "op":
			s.Op = in.String()
		case "sender":
			s.Sender = in.String()
		case "action":
			s.Action = in.String()
		case "payload":
			s.Payload = append([]byte(nil), in.Raw()...)
		case "to":
			s.To = in.String()
		case "of":
			s.Of = in.String()
		case "asset":
			s.Asset = in.String()
		case "amount":
			s.Amount = in.Uint64()
		case "program":
			s.Program = in.String()
		case "kind":
			s.Kind = in.String()
		case "token_reserve":
			s.TokenReserve = in.Uint64()
		case "native_reserve":
			s.NativeReserve = in.Uint64()
		case "fee_bps":
			s.FeeBps = in.Uint16()
		case "price":
			s.Price = in.Uint64()
		case "per_units":
			s.PerUnits = in.Uint64()
		case "tag":
			s.Tag = in.Uint8()
		case "min_out":
			s.MinOut = in.Uint64()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

type runner struct {
	log           *slog.Logger
	host          *sdk.MemoryHost
	c             *contract.Contract
	program       solana.PublicKey
	out           io.Writer
	tokenDecimals int32
}

var nameRef = regexp.MustCompile(`"\$([A-Za-z0-9_]+)"`)

func (r *runner) replay(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var s step
		if err := tinyjson.Unmarshal([]byte(text), &s); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := r.apply(s); err != nil {
			return fmt.Errorf("line %d (%s): %w", line, s.Op, err)
		}
	}
	return scanner.Err()
}

func (r *runner) apply(s step) error {
	switch s.Op {
	case "fund":
		to, err := r.resolve(s.To)
		if err != nil {
			return err
		}
		asset, err := r.asset(s.Asset)
		if err != nil {
			return err
		}
		return r.host.Mint(to, asset, s.Amount)

	case "pool":
		program, err := r.resolve(s.Program)
		if err != nil {
			return err
		}
		ex, err := r.exchange(s)
		if err != nil {
			return err
		}
		r.host.RegisterExchange(program, ex)
		r.log.Debug("exchange registered", "program", program.String(), "kind", s.Kind)
		return nil

	case "call":
		env, err := r.env(s.Sender)
		if err != nil {
			return err
		}
		payload, err := r.substitute(s.Payload)
		if err != nil {
			return err
		}
		res, err := r.c.Dispatch(env, s.Action, payload)
		r.print(s.Action, res, err)
		return nil

	case "exec":
		env, err := r.env(s.Sender)
		if err != nil {
			return err
		}
		res, err := r.c.Execute(env, contract.EncodeInstruction(s.Tag, s.Amount, s.MinOut))
		r.print(fmt.Sprintf("tag %d", s.Tag), res, err)
		return nil

	case "balance":
		of, err := r.resolve(s.Of)
		if err != nil {
			return err
		}
		pending, err := r.c.PendingRewards(of)
		if err != nil {
			return err
		}
		token := r.host.GetBalance(of, sdk.TokenAsset(r.c.Mint()))
		native := r.host.GetBalance(of, sdk.AssetNative)
		fmt.Fprintf(r.out, "%s token=%s native=%s pending=%s\n", s.Of,
			formatAmount(token, r.tokenDecimals),
			formatAmount(native, defaultNativeDecimals),
			formatAmount(pending, defaultNativeDecimals))
		return nil

	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}

// print writes the JSON result of a call, or the rendered error. Reverts are part of a script,
// they do not stop the replay.
func (r *runner) print(what string, res []byte, err error) {
	if err != nil {
		rendered, _ := tinyjson.Marshal(contract.NewErrorResult(err))
		fmt.Fprintf(r.out, "%s -> %s\n", what, rendered)
		return
	}
	fmt.Fprintf(r.out, "%s -> %s\n", what, res)
}

func (r *runner) env(sender string) (sdk.Env, error) {
	addr, err := r.resolve(sender)
	if err != nil {
		return sdk.Env{}, err
	}
	return sdk.NewEnv(uuid.NewString(), addr), nil
}

// resolve accepts a base58 key, or $name for a key derived from name.
func (r *runner) resolve(ref string) (solana.PublicKey, error) {
	if name, ok := strings.CutPrefix(ref, "$"); ok {
		return solana.CreateWithSeed(r.program, name, r.program)
	}
	if ref == "" {
		return solana.PublicKey{}, fmt.Errorf("missing account")
	}
	return solana.PublicKeyFromBase58(ref)
}

// substitute swaps every "$name" string in a payload for its derived key.
func (r *runner) substitute(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var err error
	out := nameRef.ReplaceAllFunc(payload, func(m []byte) []byte {
		k, rerr := r.resolve(string(m[1 : len(m)-1]))
		if rerr != nil {
			err = rerr
			return m
		}
		return []byte(`"` + k.String() + `"`)
	})
	return out, err
}

func (r *runner) asset(s string) (sdk.Asset, error) {
	switch s {
	case "native", "":
		return sdk.AssetNative, nil
	case "token":
		return sdk.TokenAsset(r.c.Mint()), nil
	default:
		return sdk.Asset{}, fmt.Errorf("unknown asset %q", s)
	}
}

func (r *runner) exchange(s step) (sdk.Exchange, error) {
	mint := r.c.Mint()
	switch s.Kind {
	case "cp":
		return sdk.NewConstantProductPool(mint, s.TokenReserve, s.NativeReserve, s.FeeBps), nil
	case "fixed":
		return &sdk.FixedRateExchange{Mint: mint, Price: s.Price, PerUnits: s.PerUnits}, nil
	case "fail":
		return sdk.FailingExchange{Reason: "disabled by script"}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown exchange kind %q", s.Kind)
	}
}

func formatAmount(v uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals).String()
}
