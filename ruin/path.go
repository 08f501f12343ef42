package ruin

import (
	"math/rand"
)

// PathResult summarizes one simulated trading path.
type PathResult struct {
	FinalCapital         float64
	MaxDrawdownPct       float64
	MaxConsecutiveLosses int
	Ruined               bool
	TradesTaken          int
}

// SimulatePath runs a single fixed-fraction betting path under the given
// regime and returns its terminal statistics.
//
// Each trade is an independent Bernoulli draw at the regime-adjusted win
// rate; the path risks capital*positionSizePct per trade, gaining
// risk*avgWin on a win and losing risk*avgLoss on a loss. The path exits
// the instant capital falls to or below initial*(1-ruinThresholdPct):
// further trades on a ruined account are meaningless, and the early return
// keeps large batches cheap.
func SimulatePath(p Params, regime Regime, rng *rand.Rand) PathResult {
	p = regime.apply(p)

	capital := p.InitialCapital
	peak := capital
	ruinFloor := p.InitialCapital * (1 - p.RuinThresholdPct)

	var res PathResult
	consecutiveLosses := 0

	for i := 0; i < p.NumTrades; i++ {
		res.TradesTaken++
		risk := capital * p.PositionSizePct

		if rng.Float64() < p.WinRate {
			capital += risk * p.AvgWin
			consecutiveLosses = 0
		} else {
			capital -= risk * p.AvgLoss
			consecutiveLosses++
			if consecutiveLosses > res.MaxConsecutiveLosses {
				res.MaxConsecutiveLosses = consecutiveLosses
			}
		}

		if capital > peak {
			peak = capital
		}
		if peak > 0 {
			dd := (peak - capital) / peak
			if dd > res.MaxDrawdownPct {
				res.MaxDrawdownPct = dd
			}
		}

		if capital <= ruinFloor {
			res.Ruined = true
			break
		}
	}

	res.FinalCapital = capital
	return res
}
