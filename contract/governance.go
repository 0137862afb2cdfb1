package contract

// -----------------------------------------------------------------------------
// Initialization
// -----------------------------------------------------------------------------

// initialize creates Config, GlobalState and both vaults in their zero state. The sender
// becomes the owner. Runs exactly once per program and mint.
func (x *execution) initialize(args InitializeArgs) error {
	if x.acc.Initialized() {
		return ErrAlreadyInitialized
	}
	rate, err := checkRate(args.TaxRateBps)
	if err != nil {
		return err
	}
	venues, err := toVenueSpecs(args.Venues)
	if err != nil {
		return err
	}

	x.acc.Config = &Config{
		Owner:         x.sender(),
		Mint:          x.addrs.mint,
		TaxRateBps:    rate,
		Venues:        venues,
		SwapThreshold: args.SwapThreshold,
		Bump:          x.addrs.configBump,
	}
	x.acc.Global = &GlobalState{Bump: x.addrs.globalBump}
	x.acc.TokenVault = &TokenVault{Bump: x.addrs.tokenVaultBump}
	x.acc.RewardVault = &RewardVault{Bump: x.addrs.rewardVaultBump}

	x.emitInitEvent(x.sender(), rate, len(venues))
	return nil
}

// -----------------------------------------------------------------------------
// Config updates
// -----------------------------------------------------------------------------

// updateConfig is owner only and stays available while paused, otherwise there would be no way
// to unpause. Only the fields present in args change.
func (x *execution) updateConfig(args UpdateConfigArgs) error {
	cfg := x.acc.Config
	if !x.env.Signed(cfg.Owner) {
		return fail(ErrUnauthorized, "sender %s", x.sender())
	}
	rate := cfg.TaxRateBps
	if args.TaxRateBps != nil {
		var err error
		if rate, err = checkRate(*args.TaxRateBps); err != nil {
			return err
		}
	}
	venues := cfg.Venues
	if args.Venues != nil {
		var err error
		if venues, err = toVenueSpecs(args.Venues); err != nil {
			return err
		}
	}

	cfg.TaxRateBps = rate
	cfg.Venues = venues
	if args.Paused != nil {
		cfg.Paused = *args.Paused
	}
	if args.SwapThreshold != nil {
		cfg.SwapThreshold = *args.SwapThreshold
	}
	x.emitConfigEvent(rate, cfg.Paused, len(cfg.Venues))
	return nil
}

// requireActive rejects value moving instructions while paused.
func requireActive(cfg *Config) error {
	if cfg.Paused {
		return ErrPaused
	}
	return nil
}
