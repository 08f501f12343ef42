// Package stress simulates forced deep-drawdown recovery. Before a capital
// tier that demands statistical evidence unlocks, the account must show an
// acceptable empirical probability of climbing back out of a drawdown at
// its own recent trade statistics.
package stress

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/internal/id"
)

// MinTradeHistory is the completed-trade sample size required before a
// stress test is allowed to run. Below it the numbers would be noise, so
// the result reports "not eligible" rather than a false pass or a fake
// zero probability.
const MinTradeHistory = 50

// profitFactorFloor replaces a profit factor at or below 1.0 when deriving
// the simulated average win, so a flat account still produces a sane,
// pessimistic simulation instead of a degenerate one.
const profitFactorFloor = 1.1

// Config describes one stress-test run.
type Config struct {
	// DrawdownPct is the simulated starting drawdown as a fraction of
	// capital (0.25 == start 25% under water).
	DrawdownPct float64 `json:"drawdown_pct" yaml:"drawdown_pct"`

	// DurationTrades bounds each recovery path.
	DurationTrades int `json:"duration_trades" yaml:"duration_trades"`

	// MinRecoveryProb is the empirical recovery probability a run must
	// reach to pass.
	MinRecoveryProb float64 `json:"min_recovery_prob" yaml:"min_recovery_prob"`

	// PositionSizePct is the fraction of capital risked per simulated
	// trade during recovery.
	PositionSizePct float64 `json:"position_size_pct" yaml:"position_size_pct"`

	// NumSimulations defaults to 1000 when zero.
	NumSimulations int `json:"num_simulations" yaml:"num_simulations"`

	// Seed fixes the RNG; zero seeds from the wall clock.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the operator-facing defaults: a 25% drawdown,
// 30 trades to recover half of it, 60% of paths required to make it.
func DefaultConfig() Config {
	return Config{
		DrawdownPct:     0.25,
		DurationTrades:  30,
		MinRecoveryProb: 0.60,
		PositionSizePct: 0.02,
		NumSimulations:  1000,
	}
}

// Input carries the account's recent statistics into a run.
type Input struct {
	TradeHistory    int     // completed trades on record
	WinRate         float64 // recent win rate
	ProfitFactor    float64 // recent gross profit / gross loss
	StartingCapital float64 // capital before the simulated drawdown
}

// Result is the outcome of one stress-test run.
type Result struct {
	RunID string    `json:"run_id"`
	RunAt time.Time `json:"run_at"`

	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"` // set when not eligible

	Passed              bool    `json:"passed"`
	RecoveryProbability float64 `json:"recovery_probability"`
	RecoveredPaths      int     `json:"recovered_paths"`
	Simulations         int     `json:"simulations"`

	DrawdownPct     float64 `json:"drawdown_pct"`     // simulated drawdown depth
	DrawdownCapital float64 `json:"drawdown_capital"` // capital each path starts from
	TargetCapital   float64 `json:"target_capital"`   // capital a path must reach to count
	DurationTrades  int     `json:"duration_trades"`
}

// Simulator runs drawdown stress tests.
type Simulator struct {
	log zerolog.Logger
}

// NewSimulator returns a stress-test simulator. Logging defaults to off.
func NewSimulator() *Simulator {
	return &Simulator{log: zerolog.Nop()}
}

// SetLogger attaches a logger.
func (s *Simulator) SetLogger(log zerolog.Logger) { s.log = log }

// Run simulates recovery from a forced drawdown and measures the fraction
// of paths that claw back half the simulated loss within the trade window.
//
// Each path starts at startingCapital*(1-drawdown) and must reach
// startingCapital*(1-drawdown/2); a path counts as recovered the moment it
// first touches the target and stops there. All trades are drawn at the
// account's recent win rate with an average win derived from its recent
// profit factor.
func (s *Simulator) Run(cfg Config, in Input) (Result, error) {
	if cfg.DrawdownPct <= 0 || cfg.DrawdownPct >= 1 {
		return Result{}, fmt.Errorf("stress: drawdown_pct must be in (0,1), got %v", cfg.DrawdownPct)
	}
	if cfg.DurationTrades <= 0 {
		return Result{}, fmt.Errorf("stress: duration_trades must be positive, got %d", cfg.DurationTrades)
	}
	if in.StartingCapital <= 0 {
		return Result{}, fmt.Errorf("stress: starting capital must be positive, got %v", in.StartingCapital)
	}

	sims := cfg.NumSimulations
	if sims <= 0 {
		sims = 1000
	}
	sizePct := cfg.PositionSizePct
	if sizePct <= 0 {
		sizePct = DefaultConfig().PositionSizePct
	}

	res := Result{
		RunID:           id.New(),
		RunAt:           time.Now().UTC(),
		Simulations:     sims,
		DurationTrades:  cfg.DurationTrades,
		DrawdownPct:     cfg.DrawdownPct,
		DrawdownCapital: in.StartingCapital * (1 - cfg.DrawdownPct),
		TargetCapital:   in.StartingCapital * (1 - cfg.DrawdownPct*0.5),
	}

	if in.TradeHistory < MinTradeHistory {
		res.Eligible = false
		res.Reason = fmt.Sprintf("insufficient history: %d trades recorded, %d required",
			in.TradeHistory, MinTradeHistory)
		s.log.Warn().
			Int("trade_history", in.TradeHistory).
			Int("required", MinTradeHistory).
			Msg("stress test deferred")
		return res, nil
	}
	res.Eligible = true

	winRate := in.WinRate
	if winRate <= 0 || winRate >= 1 {
		res.Reason = fmt.Sprintf("win rate %.3f outside (0,1)", winRate)
		res.Eligible = false
		return res, nil
	}

	// Derive the average win (in R multiples, avg loss normalized to 1R)
	// from the profit factor: PF = winRate*avgWin / ((1-winRate)*avgLoss).
	pf := in.ProfitFactor
	if pf <= 1.0 {
		pf = profitFactorFloor
	}
	avgWin := pf * (1 - winRate) / winRate

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	recovered := 0
	for i := 0; i < sims; i++ {
		capital := res.DrawdownCapital
		for t := 0; t < cfg.DurationTrades; t++ {
			risk := capital * sizePct
			if rng.Float64() < winRate {
				capital += risk * avgWin
			} else {
				capital -= risk
			}
			if capital >= res.TargetCapital {
				recovered++
				break
			}
		}
	}

	res.RecoveredPaths = recovered
	res.RecoveryProbability = float64(recovered) / float64(sims)
	res.Passed = res.RecoveryProbability >= cfg.MinRecoveryProb

	s.log.Info().
		Str("run_id", res.RunID).
		Float64("recovery_prob", res.RecoveryProbability).
		Float64("required", cfg.MinRecoveryProb).
		Bool("passed", res.Passed).
		Msg("stress test complete")

	return res, nil
}
