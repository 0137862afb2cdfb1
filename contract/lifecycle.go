package contract

import (
	"tax_reward/sdk"

	"github.com/gagliardetto/solana-go"
)

// -----------------------------------------------------------------------------
// Holder records
// -----------------------------------------------------------------------------

// ensureUser returns the holder's record, creating it on first touch. A new record starts
// checkpointed at the current accumulator with an empty snapshot and costs the holder the
// host's storage deposit, which close_user_info gives back.
func (x *execution) ensureUser(holder solana.PublicKey) (*UserInfo, error) {
	if x.acc.User != nil {
		return x.acc.User, nil
	}
	addr, bump, err := x.addrs.userAddress(holder)
	if err != nil {
		return nil, fail(ErrInvariantViolation, "%v", err)
	}
	deposit := x.host.StorageDeposit(userInfoSize)
	if have := x.host.GetBalance(holder, sdk.AssetNative); have < deposit {
		return nil, fail(ErrInsufficientDeposit, "need %d, holder has %d", deposit, have)
	}
	u := &UserInfo{
		Owner:   holder,
		LastCum: x.acc.Global.CumRewardPerUnit,
		Deposit: deposit,
		Bump:    bump,
	}
	x.acc.User = u
	x.acc.userAddr = addr
	x.acc.userCreated = true
	x.acc.userClosed = false
	x.transfer(sdk.AssetNative, holder, addr, deposit)
	x.emitUserCreatedEvent(holder, deposit)
	return u, nil
}

// closeUserInfo destroys an empty holder record and refunds its deposit. Allowed while paused.
func (x *execution) closeUserInfo() (*CloseResult, error) {
	holder := x.sender()
	u := x.acc.User
	if u == nil {
		return nil, fail(ErrAccountNotFound, "holder %s", holder)
	}
	owed, err := Owed(u, x.acc.Global.CumRewardPerUnit)
	if err != nil {
		return nil, err
	}
	if owed != 0 || u.Snapshot != 0 {
		return nil, fail(ErrAccountNotEmpty, "snapshot %d, owed %d", u.Snapshot, owed)
	}
	x.transfer(sdk.AssetNative, x.acc.userAddr, holder, u.Deposit)
	x.emitUserClosedEvent(holder, u.Deposit)
	x.acc.User = nil
	x.acc.userClosed = true
	return &CloseResult{RentReclaimed: u.Deposit}, nil
}
