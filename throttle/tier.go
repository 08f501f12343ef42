package throttle

import (
	"fmt"
)

// Tier is one capital band of the ladder: its size cap, the performance
// floor the account must hold while inside it, and the stress test it may
// demand before unlocking. Immutable once configured.
type Tier struct {
	Name string `json:"name" yaml:"name"`

	// ThresholdAmount is the upper capital bound of the band. Zero marks
	// the last, unbounded tier.
	ThresholdAmount float64 `json:"threshold_amount" yaml:"threshold_amount"`

	MaxPositionSizePct float64 `json:"max_position_size_pct" yaml:"max_position_size_pct"`
	MaxDailyRiskPct    float64 `json:"max_daily_risk_pct" yaml:"max_daily_risk_pct"`

	RequiredWinRate      float64 `json:"required_win_rate" yaml:"required_win_rate"`
	RequiredProfitFactor float64 `json:"required_profit_factor" yaml:"required_profit_factor"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`

	SimulationRequired bool `json:"simulation_required" yaml:"simulation_required"`

	StressTestDrawdownPct    float64 `json:"stress_test_drawdown_pct" yaml:"stress_test_drawdown_pct"`
	StressTestDurationTrades int     `json:"stress_test_duration_trades" yaml:"stress_test_duration_trades"`
	MinRecoverySpeedPct      float64 `json:"min_recovery_speed_pct" yaml:"min_recovery_speed_pct"`
}

// Tiers is the tier ladder, ordered by ThresholdAmount ascending with the
// unbounded tier last.
type Tiers []Tier

// Validate checks ordering and per-tier sanity.
func (ts Tiers) Validate() error {
	if len(ts) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	prev := 0.0
	for i, t := range ts {
		last := i == len(ts)-1
		if !last {
			if t.ThresholdAmount <= 0 {
				return fmt.Errorf("tier %d: threshold_amount must be positive (only the last tier may be unbounded)", i)
			}
			if t.ThresholdAmount <= prev {
				return fmt.Errorf("tier %d: threshold_amount %.2f not ascending", i, t.ThresholdAmount)
			}
			prev = t.ThresholdAmount
		}
		if t.MaxPositionSizePct <= 0 || t.MaxPositionSizePct >= 1 {
			return fmt.Errorf("tier %d: max_position_size_pct must be in (0,1), got %v", i, t.MaxPositionSizePct)
		}
		if t.RequiredWinRate < 0 || t.RequiredWinRate >= 1 {
			return fmt.Errorf("tier %d: required_win_rate must be in [0,1), got %v", i, t.RequiredWinRate)
		}
		if t.MaxDrawdownPct <= 0 || t.MaxDrawdownPct >= 1 {
			return fmt.Errorf("tier %d: max_drawdown_pct must be in (0,1), got %v", i, t.MaxDrawdownPct)
		}
		if t.SimulationRequired {
			if t.StressTestDrawdownPct <= 0 || t.StressTestDrawdownPct >= 1 {
				return fmt.Errorf("tier %d: stress_test_drawdown_pct must be in (0,1), got %v", i, t.StressTestDrawdownPct)
			}
			if t.StressTestDurationTrades <= 0 {
				return fmt.Errorf("tier %d: stress_test_duration_trades must be positive", i)
			}
			if t.MinRecoverySpeedPct <= 0 || t.MinRecoverySpeedPct > 1 {
				return fmt.Errorf("tier %d: min_recovery_speed_pct must be in (0,1], got %v", i, t.MinRecoverySpeedPct)
			}
		}
	}
	return nil
}

// ActiveIndex returns the index of the first tier whose bound exceeds the
// given capital; the last tier catches everything above the ladder.
func (ts Tiers) ActiveIndex(capital float64) int {
	for i, t := range ts {
		if i == len(ts)-1 {
			return i
		}
		if capital < t.ThresholdAmount {
			return i
		}
	}
	return len(ts) - 1
}

// Active returns the tier selected by the given capital.
func (ts Tiers) Active(capital float64) Tier {
	return ts[ts.ActiveIndex(capital)]
}
