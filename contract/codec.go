package contract

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// record layout versions, first byte of every encoded record
const (
	configVersion byte = 1
	globalVersion byte = 1
	vaultVersion  byte = 1
	userVersion   byte = 1
)

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter { return &binWriter{} }

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeByte(b byte) { w.buf.WriteByte(b) }

// writeBool emits 1 or 0, the paused flag is the only bool in a record.
func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *binWriter) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// Fixed width integers in records are big endian.
func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// writeUint128 holds cum_reward_per_token and per user last_cum.
func (w *binWriter) writeUint128(v uint128.Uint128) {
	var b [16]byte
	v.PutBytesBE(b[:])
	w.buf.Write(b[:])
}

// writeVarUint prefixes the venue list.
func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) writeKey(k solana.PublicKey) {
	w.buf.Write(k[:])
}

type binReader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *binReader {
	return &binReader{data: data}
}

var errUnexpectedEOF = errors.New("unexpected EOF")

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// readBool rejects anything but 0 or 1 so a corrupt flag surfaces as a decode error.
func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.New("invalid bool byte")
	}
}

func (r *binReader) readUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return val, nil
}

func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

func (r *binReader) readUint128() (uint128.Uint128, error) {
	if r.pos+16 > len(r.data) {
		return uint128.Zero, errUnexpectedEOF
	}
	val := uint128.FromBytesBE(r.data[r.pos : r.pos+16])
	r.pos += 16
	return val, nil
}

func (r *binReader) readVarUint() (uint64, error) {
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readKey() (solana.PublicKey, error) {
	if r.pos+solana.PublicKeyLength > len(r.data) {
		return solana.PublicKey{}, errUnexpectedEOF
	}
	var k solana.PublicKey
	copy(k[:], r.data[r.pos:r.pos+solana.PublicKeyLength])
	r.pos += solana.PublicKeyLength
	return k, nil
}

// done makes sure a decoder consumed everything, trailing bytes mean a layout mismatch.
func (r *binReader) done() error {
	if r.pos != len(r.data) {
		return errors.New("trailing bytes")
	}
	return nil
}

func (r *binReader) expectVersion(want byte) error {
	v, err := r.readByte()
	if err != nil {
		return err
	}
	if v != want {
		return errors.New("unsupported record version")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

func encodeConfig(cfg *Config) []byte {
	w := newWriter()
	w.writeByte(configVersion)
	w.writeKey(cfg.Owner)
	w.writeKey(cfg.Mint)
	w.writeUint16(cfg.TaxRateBps)
	w.writeBool(cfg.Paused)
	w.writeUint64(cfg.SwapThreshold)
	w.writeByte(cfg.Bump)
	w.writeVarUint(uint64(len(cfg.Venues)))
	for _, v := range cfg.Venues {
		w.writeByte(byte(v.Kind))
		w.writeKey(v.Program)
		w.writeUint64(v.LotSize)
	}
	return w.bytes()
}

func decodeConfig(data []byte) (*Config, error) {
	r := newReader(data)
	if err := r.expectVersion(configVersion); err != nil {
		return nil, err
	}
	cfg := &Config{}
	var err error
	if cfg.Owner, err = r.readKey(); err != nil {
		return nil, err
	}
	if cfg.Mint, err = r.readKey(); err != nil {
		return nil, err
	}
	if cfg.TaxRateBps, err = r.readUint16(); err != nil {
		return nil, err
	}
	if cfg.Paused, err = r.readBool(); err != nil {
		return nil, err
	}
	if cfg.SwapThreshold, err = r.readUint64(); err != nil {
		return nil, err
	}
	if cfg.Bump, err = r.readByte(); err != nil {
		return nil, err
	}
	n, err := r.readVarUint()
	if err != nil {
		return nil, err
	}
	if n > MaxVenues {
		return nil, errors.New("too many venues")
	}
	cfg.Venues = make([]VenueSpec, 0, n)
	for i := uint64(0); i < n; i++ {
		var v VenueSpec
		kind, err := r.readByte()
		if err != nil {
			return nil, err
		}
		v.Kind = VenueKind(kind)
		if v.Program, err = r.readKey(); err != nil {
			return nil, err
		}
		if v.LotSize, err = r.readUint64(); err != nil {
			return nil, err
		}
		cfg.Venues = append(cfg.Venues, v)
	}
	return cfg, r.done()
}

// -----------------------------------------------------------------------------
// GlobalState
// -----------------------------------------------------------------------------

func encodeGlobal(g *GlobalState) []byte {
	w := newWriter()
	w.writeByte(globalVersion)
	w.writeUint64(g.TotalSupply)
	w.writeUint128(g.CumRewardPerUnit)
	w.writeUint64(g.TotalTax)
	w.writeUint64(g.TotalAccrued)
	w.writeUint64(g.TotalPaid)
	w.writeByte(g.Bump)
	return w.bytes()
}

func decodeGlobal(data []byte) (*GlobalState, error) {
	r := newReader(data)
	if err := r.expectVersion(globalVersion); err != nil {
		return nil, err
	}
	g := &GlobalState{}
	var err error
	if g.TotalSupply, err = r.readUint64(); err != nil {
		return nil, err
	}
	if g.CumRewardPerUnit, err = r.readUint128(); err != nil {
		return nil, err
	}
	if g.TotalTax, err = r.readUint64(); err != nil {
		return nil, err
	}
	if g.TotalAccrued, err = r.readUint64(); err != nil {
		return nil, err
	}
	if g.TotalPaid, err = r.readUint64(); err != nil {
		return nil, err
	}
	if g.Bump, err = r.readByte(); err != nil {
		return nil, err
	}
	return g, r.done()
}

// -----------------------------------------------------------------------------
// Vaults
// -----------------------------------------------------------------------------

// both vaults share one layout: version | balance | bump
func encodeVault(balance uint64, bump uint8) []byte {
	w := newWriter()
	w.writeByte(vaultVersion)
	w.writeUint64(balance)
	w.writeByte(bump)
	return w.bytes()
}

func decodeVault(data []byte) (uint64, uint8, error) {
	r := newReader(data)
	if err := r.expectVersion(vaultVersion); err != nil {
		return 0, 0, err
	}
	bal, err := r.readUint64()
	if err != nil {
		return 0, 0, err
	}
	bump, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	return bal, bump, r.done()
}

// -----------------------------------------------------------------------------
// UserInfo
// -----------------------------------------------------------------------------

// userInfoSize is the encoded size of every UserInfo, the basis of its storage deposit.
const userInfoSize = 1 + solana.PublicKeyLength + 16 + 8 + 8 + 8 + 1

func encodeUserInfo(u *UserInfo) []byte {
	w := newWriter()
	w.writeByte(userVersion)
	w.writeKey(u.Owner)
	w.writeUint128(u.LastCum)
	w.writeUint64(u.Snapshot)
	w.writeUint64(u.TotalClaimed)
	w.writeUint64(u.Deposit)
	w.writeByte(u.Bump)
	return w.bytes()
}

func decodeUserInfo(data []byte) (*UserInfo, error) {
	r := newReader(data)
	if err := r.expectVersion(userVersion); err != nil {
		return nil, err
	}
	u := &UserInfo{}
	var err error
	if u.Owner, err = r.readKey(); err != nil {
		return nil, err
	}
	if u.LastCum, err = r.readUint128(); err != nil {
		return nil, err
	}
	if u.Snapshot, err = r.readUint64(); err != nil {
		return nil, err
	}
	if u.TotalClaimed, err = r.readUint64(); err != nil {
		return nil, err
	}
	if u.Deposit, err = r.readUint64(); err != nil {
		return nil, err
	}
	if u.Bump, err = r.readByte(); err != nil {
		return nil, err
	}
	return u, r.done()
}
