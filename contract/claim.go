package contract

// claimRewards pays out everything the holder is owed and refreshes its snapshot to the current
// token balance. A second claim without an accrual in between pays zero.
func (x *execution) claimRewards() (*ClaimResult, error) {
	if err := requireActive(x.acc.Config); err != nil {
		return nil, err
	}
	holder := x.sender()
	user, err := x.ensureUser(holder)
	if err != nil {
		return nil, err
	}
	balance := x.host.GetBalance(holder, x.tokenAsset())
	paid, err := Settle(user, x.acc.Global, x.acc.RewardVault, balance)
	if err != nil {
		return nil, err
	}
	x.payout(holder, paid)
	return &ClaimResult{AmountPaid: paid}, nil
}
