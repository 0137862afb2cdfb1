package contract

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Events are terse pipe delimited lines. They are queued on the execution and only reach the
// host log when the instruction commits, so a reverted call never leaves an event behind.

// emitInitEvent announces the owner, rate and number of venues of a fresh deployment.
func (x *execution) emitInitEvent(owner solana.PublicKey, rateBps uint16, venues int) {
	x.logf("in|o:%s|r:%d|v:%d", owner, rateBps, venues)
}

// emitConfigEvent fires on every successful update_config.
func (x *execution) emitConfigEvent(rateBps uint16, paused bool, venues int) {
	x.logf("cf|r:%d|p:%t|v:%d", rateBps, paused, venues)
}

// emitTaxedEvent summarizes a taxed operation; d is the accumulator delta.
func (x *execution) emitTaxedEvent(holder solana.PublicKey, amount, tax, out uint64, delta fmt.Stringer) {
	x.logf("tx|by:%s|am:%d|tax:%d|out:%d|d:%s", holder, amount, tax, out, delta)
}

// emitSwapEvent is the fill that went through.
func (x *execution) emitSwapEvent(v VenueSpec, in, out uint64) {
	x.logf("sw|v:%s|k:%s|in:%d|out:%d", v.Program, v.Kind, in, out)
}

// emitSwapFailedEvent logs a venue the router skipped. Only ever committed when a later venue filled.
func (x *execution) emitSwapFailedEvent(v VenueSpec, err error) {
	x.logf("sf|v:%s|e:%s", v.Program, SymbolOf(err))
}

// emitClaimEvent is any reward payout, from claim or from a taxed operation settle.
func (x *execution) emitClaimEvent(holder solana.PublicKey, amount uint64) {
	x.logf("cl|by:%s|am:%d", holder, amount)
}

// emitUserCreatedEvent logs the lazy creation of a holder record and its deposit.
func (x *execution) emitUserCreatedEvent(holder solana.PublicKey, deposit uint64) {
	x.logf("uc|by:%s|dep:%d", holder, deposit)
}

// emitUserClosedEvent logs a closed record and the refunded deposit.
func (x *execution) emitUserClosedEvent(holder solana.PublicKey, deposit uint64) {
	x.logf("ux|by:%s|dep:%d", holder, deposit)
}
