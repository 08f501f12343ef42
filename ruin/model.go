// Package ruin models account survivability: expectancy and Kelly sizing
// from trade statistics, a closed-form gambler's-ruin probability, and
// Monte Carlo path simulation across market regimes.
package ruin

import (
	"fmt"
	"math"
)

// Params holds the trading statistics an analysis runs against.
// All percentages are fractions (0.02 == 2%), wins and losses are
// expressed in R multiples (multiples of the amount risked per trade).
type Params struct {
	WinRate          float64 `json:"win_rate" yaml:"win_rate"`
	AvgWin           float64 `json:"avg_win" yaml:"avg_win"`
	AvgLoss          float64 `json:"avg_loss" yaml:"avg_loss"`
	InitialCapital   float64 `json:"initial_capital" yaml:"initial_capital"`
	PositionSizePct  float64 `json:"position_size_pct" yaml:"position_size_pct"`
	RuinThresholdPct float64 `json:"ruin_threshold_pct" yaml:"ruin_threshold_pct"`
	NumTrades        int     `json:"num_trades" yaml:"num_trades"`
	NumSimulations   int     `json:"num_simulations" yaml:"num_simulations"`

	// Seed fixes the Monte Carlo RNG for reproducible batches.
	// Zero means seed from the wall clock.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Validate rejects parameters the model cannot meaningfully analyze.
func (p Params) Validate() error {
	if p.WinRate <= 0 || p.WinRate >= 1 {
		return fmt.Errorf("win_rate must be in (0,1) exclusive, got %v", p.WinRate)
	}
	if p.AvgWin <= 0 {
		return fmt.Errorf("avg_win must be positive, got %v", p.AvgWin)
	}
	if p.AvgLoss <= 0 {
		return fmt.Errorf("avg_loss must be positive, got %v", p.AvgLoss)
	}
	if p.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %v", p.InitialCapital)
	}
	if p.PositionSizePct <= 0 || p.PositionSizePct >= 1 {
		return fmt.Errorf("position_size_pct must be in (0,1), got %v", p.PositionSizePct)
	}
	if p.RuinThresholdPct <= 0 || p.RuinThresholdPct >= 1 {
		return fmt.Errorf("ruin_threshold_pct must be in (0,1), got %v", p.RuinThresholdPct)
	}
	if p.NumTrades <= 0 {
		return fmt.Errorf("num_trades must be positive, got %d", p.NumTrades)
	}
	if p.NumSimulations <= 0 {
		return fmt.Errorf("num_simulations must be positive, got %d", p.NumSimulations)
	}
	return nil
}

// Expectancy returns the expected R multiple per trade:
// winRate*avgWin - (1-winRate)*avgLoss.
func Expectancy(winRate, avgWin, avgLoss float64) float64 {
	return winRate*avgWin - (1-winRate)*avgLoss
}

// PayoffRatio returns avgWin/avgLoss, the "b" in the Kelly formula.
func PayoffRatio(avgWin, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 0
	}
	return avgWin / avgLoss
}

// KellyFraction returns the growth-optimal fraction of capital to risk per
// trade and the half-Kelly fraction. Full Kelly maximizes long-run growth
// but with brutal variance; half-Kelly is the conservative figure surfaced
// to callers. A negative edge clamps to zero.
func KellyFraction(winRate, avgWin, avgLoss float64) (kelly, halfKelly float64) {
	b := PayoffRatio(avgWin, avgLoss)
	if b == 0 {
		return 0, 0
	}
	kelly = (winRate*b - (1 - winRate)) / b
	if kelly < 0 {
		kelly = 0
	}
	return kelly, kelly / 2
}

// TheoreticalRuinProbability returns the closed-form gambler's-ruin
// probability (q/p)^units, where units is the number of consecutive
// unit losses that would exhaust the ruin threshold.
//
// A win rate at or below 0.5 means the edge is non-positive and ruin is
// certain over unbounded trials, so the result is exactly 1.0. That is a
// strict invariant of the model, not an approximation.
func TheoreticalRuinProbability(winRate, positionSizePct, ruinThresholdPct float64) float64 {
	if winRate <= 0.5 {
		return 1.0
	}
	if positionSizePct <= 0 {
		return 1.0
	}
	units := ruinThresholdPct / positionSizePct
	odds := (1 - winRate) / winRate
	return math.Pow(odds, units)
}
