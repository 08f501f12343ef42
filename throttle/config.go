package throttle

import (
	"fmt"
)

// Config is the immutable configuration of the capital throttle.
type Config struct {
	// InitialCapital seeds a fresh state when no persisted state exists.
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`

	// RuinThresholdPct is the capital-loss fraction treated as ruin in
	// periodic analyses.
	RuinThresholdPct float64 `json:"ruin_threshold_pct" yaml:"ruin_threshold_pct"`

	// MaxAcceptableRuinProb is the ceiling on the Monte Carlo ruin
	// probability; above it the throttle escalates to Strict.
	MaxAcceptableRuinProb float64 `json:"max_acceptable_ruin_prob" yaml:"max_acceptable_ruin_prob"`

	// LockRuinProb is the probability at which the throttle locks trading
	// entirely rather than merely restricting it.
	LockRuinProb float64 `json:"lock_ruin_prob" yaml:"lock_ruin_prob"`

	// RiskUpdateIntervalTrades is how many trades pass between ruin
	// analyses.
	RiskUpdateIntervalTrades int `json:"risk_update_interval_trades" yaml:"risk_update_interval_trades"`

	// MinTradeHistory is the trade count below which performance checks
	// and ruin analyses defer.
	MinTradeHistory int `json:"min_trade_history" yaml:"min_trade_history"`

	// AnalysisSimulations and AnalysisHorizonTrades bound the periodic
	// Monte Carlo batches.
	AnalysisSimulations   int `json:"analysis_simulations" yaml:"analysis_simulations"`
	AnalysisHorizonTrades int `json:"analysis_horizon_trades" yaml:"analysis_horizon_trades"`

	Tiers Tiers `json:"tiers" yaml:"tiers"`
}

// DefaultConfig returns a conservative five-tier ladder for an account
// starting at $10,000. From the scale tier ($50k) up, every tier demands
// stress-test evidence before it unlocks.
func DefaultConfig() Config {
	return Config{
		InitialCapital:           10000,
		RuinThresholdPct:         0.50,
		MaxAcceptableRuinProb:    0.05,
		LockRuinProb:             0.25,
		RiskUpdateIntervalTrades: 10,
		MinTradeHistory:          20,
		AnalysisSimulations:      5000,
		AnalysisHorizonTrades:    200,
		Tiers: Tiers{
			{
				Name:                 "starter",
				ThresholdAmount:      10000,
				MaxPositionSizePct:   0.030,
				MaxDailyRiskPct:      0.060,
				RequiredWinRate:      0.40,
				RequiredProfitFactor: 1.10,
				MaxDrawdownPct:       0.25,
			},
			{
				Name:                 "growth",
				ThresholdAmount:      50000,
				MaxPositionSizePct:   0.025,
				MaxDailyRiskPct:      0.050,
				RequiredWinRate:      0.42,
				RequiredProfitFactor: 1.15,
				MaxDrawdownPct:       0.22,
			},
			{
				Name:                     "scale",
				ThresholdAmount:          100000,
				MaxPositionSizePct:       0.020,
				MaxDailyRiskPct:          0.040,
				RequiredWinRate:          0.45,
				RequiredProfitFactor:     1.20,
				MaxDrawdownPct:           0.20,
				SimulationRequired:       true,
				StressTestDrawdownPct:    0.25,
				StressTestDurationTrades: 30,
				MinRecoverySpeedPct:      0.60,
			},
			{
				Name:                     "professional",
				ThresholdAmount:          250000,
				MaxPositionSizePct:       0.015,
				MaxDailyRiskPct:          0.030,
				RequiredWinRate:          0.48,
				RequiredProfitFactor:     1.30,
				MaxDrawdownPct:           0.18,
				SimulationRequired:       true,
				StressTestDrawdownPct:    0.20,
				StressTestDurationTrades: 40,
				MinRecoverySpeedPct:      0.65,
			},
			{
				Name:                     "institutional",
				MaxPositionSizePct:       0.010,
				MaxDailyRiskPct:          0.020,
				RequiredWinRate:          0.50,
				RequiredProfitFactor:     1.40,
				MaxDrawdownPct:           0.15,
				SimulationRequired:       true,
				StressTestDrawdownPct:    0.15,
				StressTestDurationTrades: 50,
				MinRecoverySpeedPct:      0.70,
			},
		},
	}
}

// Validate checks the configuration before a throttle is constructed.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %v", c.InitialCapital)
	}
	if c.RuinThresholdPct <= 0 || c.RuinThresholdPct >= 1 {
		return fmt.Errorf("ruin_threshold_pct must be in (0,1), got %v", c.RuinThresholdPct)
	}
	if c.MaxAcceptableRuinProb <= 0 || c.MaxAcceptableRuinProb >= 1 {
		return fmt.Errorf("max_acceptable_ruin_prob must be in (0,1), got %v", c.MaxAcceptableRuinProb)
	}
	if c.LockRuinProb <= c.MaxAcceptableRuinProb {
		return fmt.Errorf("lock_ruin_prob %v must exceed max_acceptable_ruin_prob %v",
			c.LockRuinProb, c.MaxAcceptableRuinProb)
	}
	if c.RiskUpdateIntervalTrades <= 0 {
		return fmt.Errorf("risk_update_interval_trades must be positive, got %d", c.RiskUpdateIntervalTrades)
	}
	if c.MinTradeHistory <= 0 {
		return fmt.Errorf("min_trade_history must be positive, got %d", c.MinTradeHistory)
	}
	if c.AnalysisSimulations <= 0 {
		return fmt.Errorf("analysis_simulations must be positive, got %d", c.AnalysisSimulations)
	}
	if c.AnalysisHorizonTrades <= 0 {
		return fmt.Errorf("analysis_horizon_trades must be positive, got %d", c.AnalysisHorizonTrades)
	}
	if err := c.Tiers.Validate(); err != nil {
		return fmt.Errorf("tiers: %w", err)
	}
	return nil
}
