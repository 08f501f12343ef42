package throttle

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/riskgate/ruin"
	"github.com/rustyeddy/riskgate/stress"
)

// Report is a read-only snapshot of the throttle for operators and
// dashboards. Producing one has no side effects.
type Report struct {
	Capital     float64   `json:"capital"`
	PeakCapital float64   `json:"peak_capital"`
	DrawdownPct float64   `json:"drawdown_pct"`
	LastUpdated time.Time `json:"last_updated"`

	Tier            Tier    `json:"tier"`
	MaxPositionSize float64 `json:"max_position_size"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	ProfitFactor  float64 `json:"profit_factor"`

	Level       Level     `json:"-"`
	LevelLabel  string    `json:"level"`
	Reason      Reason    `json:"-"`
	ReasonLabel string    `json:"reason,omitempty"`
	Throttled   bool      `json:"throttled"`
	ThrottledAt time.Time `json:"throttled_at,omitzero"`

	RuinProbability float64      `json:"ruin_probability"`
	LastAnalysis    *ruin.Result `json:"last_analysis,omitempty"`

	StressTestGated  bool           `json:"stress_test_gated"`
	StressTestPassed bool           `json:"stress_test_passed"`
	LastStressTest   *stress.Result `json:"last_stress_test,omitempty"`
}

// StatusReport assembles the current snapshot.
func (t *Throttle) StatusReport() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := t.cfg.Tiers[t.tierIdx].MaxPositionSizePct
	if t.gated {
		if prior := t.cfg.Tiers[t.gatePriorIdx].MaxPositionSizePct; prior < base {
			base = prior
		}
	}

	return Report{
		Capital:     t.state.CurrentCapital,
		PeakCapital: t.state.PeakCapital,
		DrawdownPct: t.state.CurrentDrawdownPct,
		LastUpdated: t.state.LastUpdated,

		Tier:            t.cfg.Tiers[t.tierIdx],
		MaxPositionSize: base * t.state.Level.Multiplier(),

		TotalTrades:   t.state.TotalTrades,
		WinningTrades: t.state.WinningTrades,
		LosingTrades:  t.state.LosingTrades,
		WinRate:       t.state.WinRate,
		ProfitFactor:  t.state.ProfitFactor,

		Level:       t.state.Level,
		LevelLabel:  t.state.Level.String(),
		Reason:      t.state.Reason,
		ReasonLabel: t.state.Reason.String(),
		Throttled:   t.state.Level != Unrestricted,
		ThrottledAt: t.state.ThrottledAt,

		RuinProbability: t.state.RuinProbability,
		LastAnalysis:    t.lastAnalysis,

		StressTestGated:  t.gated,
		StressTestPassed: t.state.StressTestPassed,
		LastStressTest:   t.state.LastStress,
	}
}

// Format renders the report as a plain-text block for the CLI.
func (r Report) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Account\n")
	fmt.Fprintf(&b, "  Capital:        %12.2f (peak %.2f, drawdown %.2f%%)\n",
		r.Capital, r.PeakCapital, 100*r.DrawdownPct)
	fmt.Fprintf(&b, "  Tier:           %s (size cap %.2f%%, daily risk %.2f%%)\n",
		r.Tier.Name, 100*r.Tier.MaxPositionSizePct, 100*r.Tier.MaxDailyRiskPct)
	fmt.Fprintf(&b, "  Max position:   %.3f%% of capital\n", 100*r.MaxPositionSize)

	fmt.Fprintf(&b, "Performance\n")
	fmt.Fprintf(&b, "  Trades:         %d (%d wins / %d losses)\n",
		r.TotalTrades, r.WinningTrades, r.LosingTrades)
	fmt.Fprintf(&b, "  Win rate:       %.1f%%\n", 100*r.WinRate)
	fmt.Fprintf(&b, "  Profit factor:  %.2f\n", r.ProfitFactor)

	fmt.Fprintf(&b, "Throttle\n")
	fmt.Fprintf(&b, "  Level:          %s\n", r.LevelLabel)
	if r.Throttled {
		fmt.Fprintf(&b, "  Reason:         %s (since %s)\n",
			r.ReasonLabel, r.ThrottledAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "  Ruin prob:      %.2f%%\n", 100*r.RuinProbability)

	if r.StressTestGated {
		fmt.Fprintf(&b, "Stress test:      REQUIRED before tier unlock\n")
	} else if r.LastStressTest != nil {
		s := r.LastStressTest
		status := "FAILED"
		if s.Passed {
			status = "PASSED"
		}
		if !s.Eligible {
			status = "NOT ELIGIBLE"
		}
		fmt.Fprintf(&b, "Stress test:      %s (recovery %.1f%%, run %s)\n",
			status, 100*s.RecoveryProbability, s.RunAt.Format(time.RFC3339))
	}

	return b.String()
}
