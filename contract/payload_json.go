package contract

import (
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"
	"lukechampine.com/uint128"
)

// readObject walks one JSON object and hands every non null field to fn, which must consume
// the value. Unknown fields are skipped by the callers' default branch.
func readObject(in *jlexer.Lexer, fn func(key string)) {
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

// readVenues returns nil for a missing or null list and a non nil slice otherwise, so update
// payloads can tell "leave alone" from "replace with nothing".
func readVenues(in *jlexer.Lexer) []VenueArgs {
	if in.IsNull() {
		in.Skip()
		return nil
	}
	in.Delim('[')
	out := make([]VenueArgs, 0, MaxVenues)
	for !in.IsDelim(']') {
		var v VenueArgs
		v.UnmarshalTinyJSON(in)
		out = append(out, v)
		in.WantComma()
	}
	in.Delim(']')
	return out
}

func writeVenues(out *jwriter.Writer, venues []VenueArgs) {
	out.RawByte('[')
	for i, v := range venues {
		if i > 0 {
			out.RawByte(',')
		}
		v.MarshalTinyJSON(out)
	}
	out.RawByte(']')
}

// ---- VenueArgs ----

func (v *VenueArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "kind":
			v.Kind = in.String()
		case "program":
			v.Program = in.String()
		case "lot_size":
			v.LotSize = in.Uint64()
		default:
			in.SkipRecursive()
		}
	})
}

func (v VenueArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"kind":`)
	out.String(v.Kind)
	out.RawString(`,"program":`)
	out.String(v.Program)
	if v.LotSize != 0 {
		out.RawString(`,"lot_size":`)
		out.Uint64(v.LotSize)
	}
	out.RawByte('}')
}

// ---- InitializeArgs ----

func (v *InitializeArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "tax_rate_bps":
			v.TaxRateBps = in.Uint64()
		case "venues":
			v.Venues = readVenues(in)
		case "swap_threshold":
			v.SwapThreshold = in.Uint64()
		default:
			in.SkipRecursive()
		}
	})
}

func (v InitializeArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"tax_rate_bps":`)
	out.Uint64(v.TaxRateBps)
	out.RawString(`,"venues":`)
	writeVenues(out, v.Venues)
	if v.SwapThreshold != 0 {
		out.RawString(`,"swap_threshold":`)
		out.Uint64(v.SwapThreshold)
	}
	out.RawByte('}')
}

// ---- TaxedArgs ----

func (v *TaxedArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "amount_in":
			v.AmountIn = in.Uint64()
		case "min_amount_out":
			v.MinAmountOut = in.Uint64()
		case "recipient":
			v.Recipient = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

func (v TaxedArgs) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"amount_in":`)
	out.Uint64(v.AmountIn)
	out.RawString(`,"min_amount_out":`)
	out.Uint64(v.MinAmountOut)
	if v.Recipient != "" {
		out.RawString(`,"recipient":`)
		out.String(v.Recipient)
	}
	out.RawByte('}')
}

// ---- UpdateConfigArgs ----

func (v *UpdateConfigArgs) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "tax_rate_bps":
			r := in.Uint64()
			v.TaxRateBps = &r
		case "paused":
			p := in.Bool()
			v.Paused = &p
		case "venues":
			v.Venues = readVenues(in)
		case "swap_threshold":
			t := in.Uint64()
			v.SwapThreshold = &t
		default:
			in.SkipRecursive()
		}
	})
}

func (v UpdateConfigArgs) MarshalTinyJSON(out *jwriter.Writer) {
	sep := byte('{')
	field := func(name string) {
		out.RawByte(sep)
		out.String(name)
		out.RawByte(':')
		sep = ','
	}
	if v.TaxRateBps != nil {
		field("tax_rate_bps")
		out.Uint64(*v.TaxRateBps)
	}
	if v.Paused != nil {
		field("paused")
		out.Bool(*v.Paused)
	}
	if v.Venues != nil {
		field("venues")
		writeVenues(out, v.Venues)
	}
	if v.SwapThreshold != nil {
		field("swap_threshold")
		out.Uint64(*v.SwapThreshold)
	}
	if sep == '{' {
		out.RawByte('{')
	}
	out.RawByte('}')
}

// ---- results ----

func (v TaxedResult) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"amount_out":`)
	out.Uint64(v.AmountOut)
	out.RawString(`,"tax":`)
	out.Uint64(v.Tax)
	out.RawString(`,"reward_delta":`)
	out.String(v.RewardDelta.String())
	out.RawString(`,"paid":`)
	out.Uint64(v.Paid)
	out.RawString(`,"swapped":`)
	out.Uint64(v.Swapped)
	if v.Venue != "" {
		out.RawString(`,"venue":`)
		out.String(v.Venue)
	}
	out.RawByte('}')
}

func (v *TaxedResult) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "amount_out":
			v.AmountOut = in.Uint64()
		case "tax":
			v.Tax = in.Uint64()
		case "reward_delta":
			d, err := uint128.FromString(in.String())
			if err != nil {
				in.AddError(err)
				return
			}
			v.RewardDelta = d
		case "paid":
			v.Paid = in.Uint64()
		case "swapped":
			v.Swapped = in.Uint64()
		case "venue":
			v.Venue = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

func (v ClaimResult) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"amount_paid":`)
	out.Uint64(v.AmountPaid)
	out.RawByte('}')
}

func (v *ClaimResult) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "amount_paid":
			v.AmountPaid = in.Uint64()
		default:
			in.SkipRecursive()
		}
	})
}

func (v CloseResult) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"rent_reclaimed":`)
	out.Uint64(v.RentReclaimed)
	out.RawByte('}')
}

func (v *CloseResult) UnmarshalTinyJSON(in *jlexer.Lexer) {
	readObject(in, func(key string) {
		switch key {
		case "rent_reclaimed":
			v.RentReclaimed = in.Uint64()
		default:
			in.SkipRecursive()
		}
	})
}

func (v OkResult) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"ok":`)
	out.Bool(v.Ok)
	out.RawByte('}')
}

func (v ErrorResult) MarshalTinyJSON(out *jwriter.Writer) {
	out.RawString(`{"error":`)
	out.String(v.Error)
	out.RawString(`,"symbol":`)
	out.String(v.Symbol)
	out.RawString(`,"class":`)
	out.String(v.Class)
	out.RawByte('}')
}
