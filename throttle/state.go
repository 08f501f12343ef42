package throttle

import (
	"time"

	"github.com/rustyeddy/riskgate/store"
	"github.com/rustyeddy/riskgate/stress"
)

// State is the mutable account state owned by the throttle. It is only
// ever touched under the throttle's lock and checkpointed to the store
// after every mutation.
type State struct {
	CurrentCapital     float64
	PeakCapital        float64
	CurrentDrawdownPct float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalProfit   float64
	TotalLoss     float64

	WinRate         float64
	ProfitFactor    float64
	RuinProbability float64

	Level       Level
	Reason      Reason
	ThrottledAt time.Time

	StressTestPassed  bool
	StressTestLastRun *time.Time
	LastStress        *stress.Result

	LastUpdated time.Time
}

// recalc refreshes the derived statistics after counters or capital move.
// Drawdown is clamped at zero: a fresh equity high is not a negative
// drawdown.
func (s *State) recalc() {
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	} else {
		s.WinRate = 0
	}

	if s.TotalLoss > 0 {
		s.ProfitFactor = s.TotalProfit / s.TotalLoss
	} else if s.TotalProfit > 0 {
		s.ProfitFactor = s.TotalProfit
	} else {
		s.ProfitFactor = 0
	}

	if s.PeakCapital > 0 {
		dd := (s.PeakCapital - s.CurrentCapital) / s.PeakCapital
		if dd < 0 {
			dd = 0
		}
		s.CurrentDrawdownPct = dd
	} else {
		s.CurrentDrawdownPct = 0
	}
}

// avgWinLossR returns the account's average win and loss in R multiples,
// normalized so the average loss is 1R. Reports false when either side of
// the ledger is still empty.
func (s *State) avgWinLossR() (avgWin, avgLoss float64, ok bool) {
	if s.WinningTrades == 0 || s.LosingTrades == 0 {
		return 0, 0, false
	}
	meanWin := s.TotalProfit / float64(s.WinningTrades)
	meanLoss := s.TotalLoss / float64(s.LosingTrades)
	if meanLoss <= 0 || meanWin <= 0 {
		return 0, 0, false
	}
	return meanWin / meanLoss, 1.0, true
}

// toRecord maps the state onto the persisted shape.
func (s *State) toRecord() store.StateRecord {
	rec := store.StateRecord{
		CurrentCapital:     s.CurrentCapital,
		PeakCapital:        s.PeakCapital,
		CurrentDrawdownPct: s.CurrentDrawdownPct,
		TotalTrades:        s.TotalTrades,
		WinningTrades:      s.WinningTrades,
		LosingTrades:       s.LosingTrades,
		TotalProfit:        s.TotalProfit,
		TotalLoss:          s.TotalLoss,
		WinRate:            s.WinRate,
		ProfitFactor:       s.ProfitFactor,
		RuinProbability:    s.RuinProbability,
		IsThrottled:        s.Level != Unrestricted,
		ThrottleReason:     s.Reason.String(),
		ThrottleLevel:      s.Level.String(),
		StressTestPassed:   s.StressTestPassed,
		StressTestLastRun:  s.StressTestLastRun,
		LastUpdated:        s.LastUpdated,
	}
	if s.LastStress != nil {
		rec.StressTest = &store.StressRecord{
			RunID:               s.LastStress.RunID,
			RunAt:               s.LastStress.RunAt,
			Eligible:            s.LastStress.Eligible,
			Passed:              s.LastStress.Passed,
			RecoveryProbability: s.LastStress.RecoveryProbability,
			DurationTrades:      s.LastStress.DurationTrades,
			TargetCapital:       s.LastStress.TargetCapital,
		}
	}
	return rec
}

// stateFromRecord rebuilds state from a persisted record.
func stateFromRecord(rec store.StateRecord) State {
	s := State{
		CurrentCapital:    rec.CurrentCapital,
		PeakCapital:       rec.PeakCapital,
		TotalTrades:       rec.TotalTrades,
		WinningTrades:     rec.WinningTrades,
		LosingTrades:      rec.LosingTrades,
		TotalProfit:       rec.TotalProfit,
		TotalLoss:         rec.TotalLoss,
		RuinProbability:   rec.RuinProbability,
		Level:             ParseLevel(rec.ThrottleLevel),
		Reason:            ParseReason(rec.ThrottleReason),
		StressTestPassed:  rec.StressTestPassed,
		StressTestLastRun: rec.StressTestLastRun,
		LastUpdated:       rec.LastUpdated,
	}
	if !rec.IsThrottled {
		s.Level = Unrestricted
		s.Reason = ReasonNone
	}
	if rec.StressTest != nil {
		s.LastStress = &stress.Result{
			RunID:               rec.StressTest.RunID,
			RunAt:               rec.StressTest.RunAt,
			Eligible:            rec.StressTest.Eligible,
			Passed:              rec.StressTest.Passed,
			RecoveryProbability: rec.StressTest.RecoveryProbability,
			DurationTrades:      rec.StressTest.DurationTrades,
			TargetCapital:       rec.StressTest.TargetCapital,
		}
	}
	s.recalc()
	return s
}
