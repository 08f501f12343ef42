package throttle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/internal/id"
	"github.com/rustyeddy/riskgate/ruin"
	"github.com/rustyeddy/riskgate/store"
	"github.com/rustyeddy/riskgate/stress"
)

// Throttle is the capital risk gate. Construct one per account and pass it
// by reference to whatever needs MaxPositionSize; there is no package-level
// instance.
//
// All state mutation goes through RecordTrade, UpdateCapital and
// RunStressTest, serialized under one lock around the full
// read-modify-write-persist cycle, so concurrent callers never observe a
// partial update. The Monte Carlo batches those operations trigger are
// pure and share nothing with the throttle state while they run.
type Throttle struct {
	mu       sync.Mutex
	cfg      Config
	analyzer *ruin.Analyzer
	stress   *stress.Simulator
	store    store.Store
	journal  store.TradeJournal
	log      zerolog.Logger

	state        State
	lastAnalysis *ruin.Result

	tierIdx       int
	gated         bool // stress-test gate pending for the active tier
	gatePriorIdx  int  // tier the account grew out of when the gate closed
	passedTierIdx int  // highest tier a recorded pass was earned in

	seed int64 // non-zero fixes simulation RNGs, for reproducible runs
}

// New builds a throttle from config, restoring state from the store when
// one is present. A corrupt or unreadable persisted state is logged and
// replaced with fresh defaults seeded from cfg.InitialCapital; it never
// fails construction. st may be nil for an ephemeral throttle.
func New(cfg Config, st store.Store, log zerolog.Logger) (*Throttle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("throttle config: %w", err)
	}

	acfg := ruin.DefaultAnalyzerConfig()
	acfg.MaxAcceptableRuinProb = cfg.MaxAcceptableRuinProb

	analyzer := ruin.NewAnalyzer(acfg)
	analyzer.SetLogger(log)

	sim := stress.NewSimulator()
	sim.SetLogger(log)

	t := &Throttle{
		cfg:      cfg,
		analyzer: analyzer,
		stress:   sim,
		store:    st,
		log:      log,
	}
	if j, ok := st.(store.TradeJournal); ok {
		t.journal = j
	}

	t.loadState()
	return t, nil
}

// SetSeed fixes the RNG seed used for analyses and stress tests, making
// runs reproducible. Zero restores wall-clock seeding.
func (t *Throttle) SetSeed(seed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seed = seed
}

func (t *Throttle) loadState() {
	fresh := func() State {
		return State{
			CurrentCapital: t.cfg.InitialCapital,
			PeakCapital:    t.cfg.InitialCapital,
			LastUpdated:    time.Now().UTC(),
		}
	}

	if t.store == nil {
		t.state = fresh()
	} else {
		rec, err := t.store.Load(context.Background())
		switch {
		case err == nil:
			t.state = stateFromRecord(rec)
			t.log.Info().
				Float64("capital", t.state.CurrentCapital).
				Int("total_trades", t.state.TotalTrades).
				Str("level", t.state.Level.String()).
				Msg("throttle state restored")
		case errors.Is(err, store.ErrNotFound):
			t.state = fresh()
		default:
			t.log.Error().Err(err).
				Float64("initial_capital", t.cfg.InitialCapital).
				Msg("persisted throttle state unreadable, starting fresh")
			t.state = fresh()
		}
	}

	t.tierIdx = t.cfg.Tiers.ActiveIndex(t.state.CurrentCapital)
	if t.state.StressTestPassed {
		t.passedTierIdx = t.tierIdx
	}
	if t.state.Reason == ReasonStressTestRequired {
		t.gated = true
		t.gatePriorIdx = t.tierIdx
		if t.gatePriorIdx > 0 {
			t.gatePriorIdx--
		}
	}
}

// RecordTrade folds one completed trade into the account state: counters,
// capital, derived statistics, tier, the periodic ruin analysis, and the
// resulting throttle level. Degraded risk signals are state transitions,
// never errors; the returned error only reports persistence failure.
func (t *Throttle) RecordTrade(ctx context.Context, isWinner bool, profitLoss float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	t.state.TotalTrades++
	if isWinner {
		t.state.WinningTrades++
		t.state.TotalProfit += math.Abs(profitLoss)
	} else {
		t.state.LosingTrades++
		t.state.TotalLoss += math.Abs(profitLoss)
	}

	t.state.CurrentCapital += profitLoss
	if t.state.CurrentCapital > t.state.PeakCapital {
		t.state.PeakCapital = t.state.CurrentCapital
	}
	t.state.recalc()

	t.retierLocked()
	t.maybeAnalyzeLocked()
	t.evaluateLocked()
	t.state.LastUpdated = now

	if t.journal != nil {
		rec := store.TradeRecord{
			TradeID:       id.New(),
			Time:          now,
			Winner:        isWinner,
			ProfitLoss:    profitLoss,
			CapitalAfter:  t.state.CurrentCapital,
			ThrottleLevel: t.state.Level.String(),
		}
		if err := t.journal.RecordTrade(ctx, rec); err != nil {
			t.log.Warn().Err(err).Msg("trade journal write failed")
		}
	}

	return t.persistLocked(ctx)
}

// UpdateCapital refreshes the account balance from an external snapshot
// and recomputes peak, drawdown, tier and throttle level.
func (t *Throttle) UpdateCapital(ctx context.Context, newCapital float64) error {
	if newCapital <= 0 {
		return fmt.Errorf("update capital: balance must be positive, got %v", newCapital)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.CurrentCapital = newCapital
	if newCapital > t.state.PeakCapital {
		t.state.PeakCapital = newCapital
	}
	t.state.recalc()

	t.retierLocked()
	t.evaluateLocked()
	t.state.LastUpdated = time.Now().UTC()

	return t.persistLocked(ctx)
}

// RunStressTest runs the drawdown stress test that unlocks a gated tier.
// drawdownPct and durationTrades override the active tier's configured
// stress parameters when positive; pass zero to use them as configured.
// An ineligible run (insufficient history) is reported in the result, not
// as an error, and leaves the gate in place.
func (t *Throttle) RunStressTest(ctx context.Context, drawdownPct float64, durationTrades int) (stress.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tier := t.cfg.Tiers[t.tierIdx]

	scfg := stress.DefaultConfig()
	if tier.SimulationRequired {
		scfg.DrawdownPct = tier.StressTestDrawdownPct
		scfg.DurationTrades = tier.StressTestDurationTrades
		scfg.MinRecoveryProb = tier.MinRecoverySpeedPct
	}
	scfg.PositionSizePct = tier.MaxPositionSizePct
	scfg.Seed = t.seed
	if drawdownPct > 0 {
		scfg.DrawdownPct = drawdownPct
	}
	if durationTrades > 0 {
		scfg.DurationTrades = durationTrades
	}

	// The journal can hold more history than the state counters, e.g.
	// after a corrupt-state fallback reset them; eligibility counts every
	// trade on record.
	history := t.state.TotalTrades
	if t.journal != nil {
		if n, err := t.journal.CountTrades(ctx); err != nil {
			t.log.Warn().Err(err).Msg("trade journal count failed")
		} else if n > history {
			history = n
		}
	}

	in := stress.Input{
		TradeHistory:    history,
		WinRate:         t.state.WinRate,
		ProfitFactor:    t.state.ProfitFactor,
		StartingCapital: t.state.CurrentCapital,
	}

	res, err := t.stress.Run(scfg, in)
	if err != nil {
		return res, fmt.Errorf("stress test: %w", err)
	}

	t.state.LastStress = &res
	lastRun := res.RunAt
	t.state.StressTestLastRun = &lastRun

	if res.Eligible && res.Passed {
		t.state.StressTestPassed = true
		t.passedTierIdx = t.tierIdx
		t.gated = false
		t.log.Info().
			Str("tier", tier.Name).
			Float64("recovery_prob", res.RecoveryProbability).
			Msg("stress test passed, tier unlocked")
	}

	t.evaluateLocked()
	t.state.LastUpdated = time.Now().UTC()

	if perr := t.persistLocked(ctx); perr != nil {
		return res, perr
	}
	return res, nil
}

// MaxPositionSize returns the maximum position-size fraction the account
// may risk right now. While a stress-test gate is pending the base cap is
// held down to the prior tier's, and the throttle level multiplier applies
// on top. This is the sole sizing signal consumed by the order layer.
func (t *Throttle) MaxPositionSize() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := t.cfg.Tiers[t.tierIdx].MaxPositionSizePct
	if t.gated {
		if prior := t.cfg.Tiers[t.gatePriorIdx].MaxPositionSizePct; prior < base {
			base = prior
		}
	}
	return base * t.state.Level.Multiplier()
}

// Level returns the current throttle level.
func (t *Throttle) Level() Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Level
}

// Reason returns the current throttle reason.
func (t *Throttle) Reason() Reason {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Reason
}

// retierLocked recomputes the active tier from current capital and arms
// the stress-test gate when the account grows into a tier demanding
// evidence it does not yet have.
func (t *Throttle) retierLocked() {
	newIdx := t.cfg.Tiers.ActiveIndex(t.state.CurrentCapital)
	if newIdx == t.tierIdx {
		return
	}
	oldIdx := t.tierIdx
	t.tierIdx = newIdx

	t.log.Info().
		Str("from", t.cfg.Tiers[oldIdx].Name).
		Str("to", t.cfg.Tiers[newIdx].Name).
		Float64("capital", t.state.CurrentCapital).
		Msg("capital tier changed")

	if newIdx > oldIdx {
		tier := t.cfg.Tiers[newIdx]
		if tier.SimulationRequired && !(t.state.StressTestPassed && t.passedTierIdx >= newIdx) {
			// A pass earned in a lower tier does not carry up; each gated
			// boundary wants fresh evidence at current statistics.
			t.state.StressTestPassed = false
			t.gated = true
			t.gatePriorIdx = oldIdx
		}
	} else if t.gated && !t.cfg.Tiers[newIdx].SimulationRequired {
		// Fell back below the gated boundary; the gate is moot.
		t.gated = false
	}
}

// maybeAnalyzeLocked re-runs the ruin analysis every configured trade
// interval once enough history exists. Insufficient or one-sided history
// silently defers; that is steady-state behavior, not a fault.
func (t *Throttle) maybeAnalyzeLocked() {
	if t.state.TotalTrades < t.cfg.MinTradeHistory {
		return
	}
	if t.state.TotalTrades%t.cfg.RiskUpdateIntervalTrades != 0 {
		return
	}
	avgWin, avgLoss, ok := t.state.avgWinLossR()
	if !ok {
		return
	}
	if t.state.WinRate <= 0 || t.state.WinRate >= 1 {
		return
	}

	params := ruin.Params{
		WinRate:          t.state.WinRate,
		AvgWin:           avgWin,
		AvgLoss:          avgLoss,
		InitialCapital:   t.state.CurrentCapital,
		PositionSizePct:  t.cfg.Tiers[t.tierIdx].MaxPositionSizePct,
		RuinThresholdPct: t.cfg.RuinThresholdPct,
		NumTrades:        t.cfg.AnalysisHorizonTrades,
		NumSimulations:   t.cfg.AnalysisSimulations,
		Seed:             t.seed,
	}

	res, err := t.analyzer.Analyze(params)
	if err != nil {
		t.log.Warn().Err(err).Msg("periodic ruin analysis skipped")
		return
	}

	t.lastAnalysis = res
	t.state.RuinProbability = res.MonteCarloRuinProb
}

// evaluateLocked collapses every active risk signal into one throttle
// level and reason. Running the full decision on each event means
// de-escalation happens exactly when all disqualifying conditions have
// cleared, and an escalation from any single source is immediate.
func (t *Throttle) evaluateLocked() {
	level, reason := t.targetLocked()
	if level == t.state.Level && reason == t.state.Reason {
		return
	}

	prev := t.state.Level
	switch {
	case level > prev:
		t.log.Warn().
			Str("from", prev.String()).
			Str("to", level.String()).
			Str("reason", reason.String()).
			Msg("throttle escalated")
	case level < prev:
		t.log.Info().
			Str("from", prev.String()).
			Str("to", level.String()).
			Msg("throttle de-escalated")
	}

	if prev == Unrestricted && level != Unrestricted {
		t.state.ThrottledAt = time.Now().UTC()
	}
	if level == Unrestricted {
		t.state.ThrottledAt = time.Time{}
	}
	t.state.Level = level
	t.state.Reason = reason
}

// targetLocked ranks the active conditions: stress-test gates outrank the
// ruin signal, which outranks tier performance, which outranks the soft
// elevated-ruin bands. Ruin probability in the upper half of the band
// below the ceiling draws Moderate, the lower half Conservative.
func (t *Throttle) targetLocked() (Level, Reason) {
	if t.gated {
		return Strict, ReasonStressTestRequired
	}
	if s := t.state.LastStress; s != nil && s.Eligible && !s.Passed && !t.state.StressTestPassed {
		return Strict, ReasonStressTestFailed
	}
	if t.state.RuinProbability >= t.cfg.LockRuinProb {
		return Locked, ReasonHighRuinRisk
	}
	if t.state.RuinProbability > t.cfg.MaxAcceptableRuinProb {
		return Strict, ReasonHighRuinRisk
	}
	if r := t.performanceViolationLocked(); r != ReasonNone {
		return Strict, r
	}
	if t.state.RuinProbability > t.cfg.MaxAcceptableRuinProb*0.75 {
		return Moderate, ReasonHighRuinRisk
	}
	if t.state.RuinProbability > t.cfg.MaxAcceptableRuinProb/2 {
		return Conservative, ReasonHighRuinRisk
	}
	return Unrestricted, ReasonNone
}

// performanceViolationLocked checks the account against the active tier's
// requirements. Checks defer until minimum history exists.
func (t *Throttle) performanceViolationLocked() Reason {
	if t.state.TotalTrades < t.cfg.MinTradeHistory {
		return ReasonNone
	}
	tier := t.cfg.Tiers[t.tierIdx]
	if t.state.WinRate < tier.RequiredWinRate {
		return ReasonWinRateLow
	}
	if t.state.ProfitFactor < tier.RequiredProfitFactor {
		return ReasonProfitFactorLow
	}
	if t.state.CurrentDrawdownPct > tier.MaxDrawdownPct {
		return ReasonDrawdownExceeded
	}
	return ReasonNone
}

func (t *Throttle) persistLocked(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.Save(ctx, t.state.toRecord()); err != nil {
		t.log.Error().Err(err).Msg("throttle state checkpoint failed")
		return fmt.Errorf("persist throttle state: %w", err)
	}
	return nil
}
