package contract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InstructionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tax_reward_instructions_total",
			Help: "Total number of executed instructions",
		},
		[]string{"instruction", "result"},
	)

	SwapAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tax_reward_swap_attempts_total",
			Help: "Total number of venue attempts made by the swap router",
		},
		[]string{"venue_kind", "outcome"},
	)

	TaxCollectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tax_reward_tax_collected_total",
			Help: "Total taxed token units moved into the token vault",
		},
	)

	RewardsAccruedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tax_reward_rewards_accrued_total",
			Help: "Total reference currency credited to the reward vault",
		},
	)

	RewardsPaidTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tax_reward_rewards_paid_total",
			Help: "Total reference currency paid out to holders",
		},
	)

	InvariantViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tax_reward_invariant_violations_total",
			Help: "Total number of instructions aborted by an invariant violation",
		},
	)
)
