package ruin

// Regime selects a market condition for path simulation. Each regime is a
// fixed multiplier set applied to the trade statistics before a path runs,
// so adding a regime means adding a table row, not new branches.
type Regime int

const (
	RegimeNormal Regime = iota
	RegimeBull
	RegimeBear
	RegimeHighVolatility
)

func (r Regime) String() string {
	switch r {
	case RegimeNormal:
		return "normal"
	case RegimeBull:
		return "bull"
	case RegimeBear:
		return "bear"
	case RegimeHighVolatility:
		return "high_volatility"
	default:
		return "unknown"
	}
}

// adjustment scales win rate and average win/loss for a regime.
type adjustment struct {
	winRate float64
	avgWin  float64
	avgLoss float64
}

var regimeAdjustments = map[Regime]adjustment{
	RegimeNormal:         {winRate: 1.00, avgWin: 1.00, avgLoss: 1.00},
	RegimeBull:           {winRate: 1.10, avgWin: 1.10, avgLoss: 0.90},
	RegimeBear:           {winRate: 0.85, avgWin: 0.90, avgLoss: 1.15},
	RegimeHighVolatility: {winRate: 0.95, avgWin: 1.30, avgLoss: 1.30},
}

// apply returns a copy of p with the regime multipliers folded in.
// Win rate is clamped below 0.95 so a strong bull adjustment can never
// produce a certainty.
func (r Regime) apply(p Params) Params {
	adj, ok := regimeAdjustments[r]
	if !ok {
		return p
	}
	p.WinRate *= adj.winRate
	if p.WinRate > 0.95 {
		p.WinRate = 0.95
	}
	p.AvgWin *= adj.avgWin
	p.AvgLoss *= adj.avgLoss
	return p
}
