package contract

import (
	"tax_reward/sdk"

	"github.com/CosmWasm/tinyjson"
)

// Dispatch is the JSON entrypoint: it decodes payload for action, runs the instruction and
// encodes the result. Errors come back typed, use NewErrorResult to render them.
// Example payload: Dispatch(env, "claim_rewards", nil)
func (c *Contract) Dispatch(env sdk.Env, action string, payload []byte) ([]byte, error) {
	switch action {
	case ActionInitialize:
		var args InitializeArgs
		if err := decodePayload(payload, &args); err != nil {
			return nil, err
		}
		if err := c.Initialize(env, args); err != nil {
			return nil, err
		}
		return tinyjson.Marshal(OkResult{Ok: true})

	case ActionTaxed:
		var args TaxedArgs
		if err := decodePayload(payload, &args); err != nil {
			return nil, err
		}
		res, err := c.TaxedOperation(env, args)
		if err != nil {
			return nil, err
		}
		return tinyjson.Marshal(res)

	case ActionClaim:
		res, err := c.ClaimRewards(env)
		if err != nil {
			return nil, err
		}
		return tinyjson.Marshal(res)

	case ActionUpdateConfig:
		var args UpdateConfigArgs
		if err := decodePayload(payload, &args); err != nil {
			return nil, err
		}
		if err := c.UpdateConfig(env, args); err != nil {
			return nil, err
		}
		return tinyjson.Marshal(OkResult{Ok: true})

	case ActionCloseUserInfo:
		res, err := c.CloseUserInfo(env)
		if err != nil {
			return nil, err
		}
		return tinyjson.Marshal(res)

	default:
		InstructionsTotal.WithLabelValues("unknown", ErrUnknownAction.Symbol).Inc()
		return nil, fail(ErrUnknownAction, "%q", action)
	}
}

// decodePayload maps any JSON problem to ErrInvalidPayload.
func decodePayload(payload []byte, v tinyjson.Unmarshaler) error {
	if len(payload) == 0 {
		return fail(ErrInvalidPayload, "payload missing")
	}
	if err := tinyjson.Unmarshal(payload, v); err != nil {
		return fail(ErrInvalidPayload, "%v", err)
	}
	return nil
}
