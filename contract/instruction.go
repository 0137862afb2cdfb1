package contract

import (
	"encoding/binary"

	"tax_reward/sdk"

	"github.com/CosmWasm/tinyjson"
)

// Compact binary instruction tags: one tag byte followed by little endian u64 arguments.
const (
	TagBuy   byte = 0
	TagSell  byte = 1
	TagClaim byte = 2
)

// Instruction is a decoded binary instruction. Buy and sell are both taxed operations, the
// direction only matters to clients.
type Instruction struct {
	Tag    byte
	Action string
	Taxed  TaxedArgs
}

// DecodeInstruction parses tag|amount_le[|min_out_le] for buy and sell and a bare tag for claim.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return Instruction{}, fail(ErrInvalidPayload, "empty instruction")
	}
	ix := Instruction{Tag: data[0]}
	rest := data[1:]
	switch ix.Tag {
	case TagBuy, TagSell:
		if len(rest) != 8 && len(rest) != 16 {
			return Instruction{}, fail(ErrInvalidPayload, "taxed instruction wants 8 or 16 bytes, got %d", len(rest))
		}
		ix.Action = ActionTaxed
		ix.Taxed.AmountIn = binary.LittleEndian.Uint64(rest[:8])
		if len(rest) == 16 {
			ix.Taxed.MinAmountOut = binary.LittleEndian.Uint64(rest[8:])
		}
	case TagClaim:
		if len(rest) != 0 {
			return Instruction{}, fail(ErrInvalidPayload, "claim takes no arguments")
		}
		ix.Action = ActionClaim
	default:
		return Instruction{}, fail(ErrInvalidPayload, "unknown tag %d", ix.Tag)
	}
	return ix, nil
}

// EncodeInstruction is the inverse of DecodeInstruction. minOut is omitted when zero.
func EncodeInstruction(tag byte, amount, minOut uint64) []byte {
	if tag == TagClaim {
		return []byte{TagClaim}
	}
	out := make([]byte, 1, 17)
	out[0] = tag
	out = binary.LittleEndian.AppendUint64(out, amount)
	if minOut != 0 {
		out = binary.LittleEndian.AppendUint64(out, minOut)
	}
	return out
}

// Execute runs a binary instruction and returns the JSON result like Dispatch.
func (c *Contract) Execute(env sdk.Env, data []byte) ([]byte, error) {
	ix, err := DecodeInstruction(data)
	if err != nil {
		return nil, err
	}
	if ix.Action == ActionTaxed {
		res, err := c.TaxedOperation(env, ix.Taxed)
		if err != nil {
			return nil, err
		}
		return tinyjson.Marshal(res)
	}
	return c.Dispatch(env, ix.Action, nil)
}
