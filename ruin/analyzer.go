package ruin

import (
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskgate/internal/id"
)

// Rating is the categorical risk classification derived from the empirical
// ruin probability.
type Rating int

const (
	RatingLow Rating = iota
	RatingModerate
	RatingHigh
	RatingExtreme
)

func (r Rating) String() string {
	switch r {
	case RatingLow:
		return "LOW"
	case RatingModerate:
		return "MODERATE"
	case RatingHigh:
		return "HIGH"
	case RatingExtreme:
		return "EXTREME"
	default:
		return "UNKNOWN"
	}
}

// classifyRating maps an empirical ruin probability onto fixed bands.
func classifyRating(ruinProb float64) Rating {
	switch {
	case ruinProb < 0.01:
		return RatingLow
	case ruinProb < 0.05:
		return RatingModerate
	case ruinProb < 0.15:
		return RatingHigh
	default:
		return RatingExtreme
	}
}

// AnalyzerConfig tunes warning thresholds and batch execution.
type AnalyzerConfig struct {
	// MaxAcceptableRuinProb is the ceiling above which the analysis warns.
	MaxAcceptableRuinProb float64 `json:"max_acceptable_ruin_prob" yaml:"max_acceptable_ruin_prob"`

	// LowEdgeExpectancy is the R-multiple expectancy below which the
	// recommended position size is cut by a further 25%.
	LowEdgeExpectancy float64 `json:"low_edge_expectancy" yaml:"low_edge_expectancy"`

	// PsychLossLimit is the consecutive-loss streak a trader is assumed
	// able to sit through; observed streaks beyond it draw a warning.
	PsychLossLimit int `json:"psych_loss_limit" yaml:"psych_loss_limit"`

	// BearAlertRuinProb and HighVolAlertRuinProb are the per-regime
	// ruin probabilities above which the analysis warns.
	BearAlertRuinProb    float64 `json:"bear_alert_ruin_prob" yaml:"bear_alert_ruin_prob"`
	HighVolAlertRuinProb float64 `json:"high_vol_alert_ruin_prob" yaml:"high_vol_alert_ruin_prob"`

	// Workers bounds the Monte Carlo fan-out. Zero means GOMAXPROCS.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// DefaultAnalyzerConfig returns the thresholds used when nothing is configured.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MaxAcceptableRuinProb: 0.05,
		LowEdgeExpectancy:     0.10,
		PsychLossLimit:        8,
		BearAlertRuinProb:     0.10,
		HighVolAlertRuinProb:  0.15,
	}
}

// Recommended position size clamps.
const (
	minRecommendedSize = 0.005
	maxRecommendedSize = 0.05
)

// regimeBatchDivisor shrinks the per-regime batches relative to the main
// run; regimeBatchFloor keeps their estimates statistically usable.
const (
	regimeBatchDivisor = 5
	regimeBatchFloor   = 1000
)

// Result is the immutable output of one Analyze call.
type Result struct {
	RunID string    `json:"run_id"`
	RunAt time.Time `json:"run_at"`

	Params Params `json:"params"`

	Expectancy  float64 `json:"expectancy"`
	PayoffRatio float64 `json:"payoff_ratio"`
	Kelly       float64 `json:"kelly"`
	HalfKelly   float64 `json:"half_kelly"`

	TheoreticalRuinProb float64 `json:"theoretical_ruin_prob"`
	MonteCarloRuinProb  float64 `json:"monte_carlo_ruin_prob"`

	FinalCapitalP5  float64 `json:"final_capital_p5"`
	FinalCapitalP50 float64 `json:"final_capital_p50"`
	FinalCapitalP95 float64 `json:"final_capital_p95"`

	AvgMaxDrawdownPct    float64 `json:"avg_max_drawdown_pct"`
	WorstMaxDrawdownPct  float64 `json:"worst_max_drawdown_pct"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`

	BullRuinProb    float64 `json:"bull_ruin_prob"`
	BearRuinProb    float64 `json:"bear_ruin_prob"`
	HighVolRuinProb float64 `json:"high_vol_ruin_prob"`

	RecommendedPositionSize float64  `json:"recommended_position_size"`
	Rating                  Rating   `json:"-"`
	RatingLabel             string   `json:"rating"`
	Warnings                []string `json:"warnings,omitempty"`
}

// Analyzer orchestrates Monte Carlo batches over the path simulator and
// classifies the outcome. It is stateless between calls and safe for
// concurrent use.
type Analyzer struct {
	cfg AnalyzerConfig
	log zerolog.Logger
}

// NewAnalyzer returns an analyzer with the given thresholds. Pass
// DefaultAnalyzerConfig() unless the caller has tuned values.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.MaxAcceptableRuinProb <= 0 {
		cfg.MaxAcceptableRuinProb = DefaultAnalyzerConfig().MaxAcceptableRuinProb
	}
	return &Analyzer{cfg: cfg, log: zerolog.Nop()}
}

// SetLogger attaches a logger; the default discards everything.
func (a *Analyzer) SetLogger(log zerolog.Logger) { a.log = log }

// Analyze runs the full risk-of-ruin workup for the given parameters:
// closed-form arithmetic, a normal-regime Monte Carlo batch, reduced
// per-regime batches, classification, and warnings.
func (a *Analyzer) Analyze(p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	res := &Result{
		RunID:  id.New(),
		RunAt:  time.Now().UTC(),
		Params: p,
	}

	res.Expectancy = Expectancy(p.WinRate, p.AvgWin, p.AvgLoss)
	res.PayoffRatio = PayoffRatio(p.AvgWin, p.AvgLoss)
	res.Kelly, res.HalfKelly = KellyFraction(p.WinRate, p.AvgWin, p.AvgLoss)
	res.TheoreticalRuinProb = TheoreticalRuinProbability(p.WinRate, p.PositionSizePct, p.RuinThresholdPct)

	main := a.runBatch(p, RegimeNormal, p.NumSimulations, seed)
	res.MonteCarloRuinProb = main.ruinProb()
	res.FinalCapitalP5 = percentile(main.finalCapitals, 5)
	res.FinalCapitalP50 = percentile(main.finalCapitals, 50)
	res.FinalCapitalP95 = percentile(main.finalCapitals, 95)
	res.AvgMaxDrawdownPct = main.avgDrawdown()
	res.WorstMaxDrawdownPct = main.worstDrawdown
	res.MaxConsecutiveLosses = main.maxConsecutiveLosses

	regimeSims := p.NumSimulations / regimeBatchDivisor
	if regimeSims < regimeBatchFloor {
		regimeSims = regimeBatchFloor
	}
	res.BullRuinProb = a.runBatch(p, RegimeBull, regimeSims, seed+1).ruinProb()
	res.BearRuinProb = a.runBatch(p, RegimeBear, regimeSims, seed+2).ruinProb()
	res.HighVolRuinProb = a.runBatch(p, RegimeHighVolatility, regimeSims, seed+3).ruinProb()

	res.Rating = classifyRating(res.MonteCarloRuinProb)
	res.RatingLabel = res.Rating.String()
	res.RecommendedPositionSize = a.recommendSize(res.HalfKelly, res.Expectancy)
	res.Warnings = a.warnings(p, res)

	a.log.Debug().
		Str("run_id", res.RunID).
		Float64("mc_ruin_prob", res.MonteCarloRuinProb).
		Float64("theoretical_ruin_prob", res.TheoreticalRuinProb).
		Str("rating", res.RatingLabel).
		Int("warnings", len(res.Warnings)).
		Msg("ruin analysis complete")

	return res, nil
}

// recommendSize derives the position size surfaced to the sizing layer:
// half-Kelly, cut by a quarter when the edge is thin, clamped to a band a
// live account can actually trade.
func (a *Analyzer) recommendSize(halfKelly, expectancy float64) float64 {
	size := halfKelly
	if expectancy < a.cfg.LowEdgeExpectancy {
		size *= 0.75
	}
	if size < minRecommendedSize {
		size = minRecommendedSize
	}
	if size > maxRecommendedSize {
		size = maxRecommendedSize
	}
	return size
}

func (a *Analyzer) warnings(p Params, res *Result) []string {
	var w []string

	if res.MonteCarloRuinProb > a.cfg.MaxAcceptableRuinProb {
		w = append(w, fmt.Sprintf("ruin probability %.2f%% exceeds acceptable ceiling %.2f%%",
			100*res.MonteCarloRuinProb, 100*a.cfg.MaxAcceptableRuinProb))
	}
	if p.PositionSizePct > res.Kelly && res.Kelly > 0 {
		w = append(w, fmt.Sprintf("position size %.2f%% exceeds full Kelly %.2f%%",
			100*p.PositionSizePct, 100*res.Kelly))
	}
	if res.Expectancy <= 0 {
		w = append(w, fmt.Sprintf("non-positive expectancy (%.3fR): the system has no edge at these statistics",
			res.Expectancy))
	}
	if res.MaxConsecutiveLosses > a.cfg.PsychLossLimit {
		w = append(w, fmt.Sprintf("observed losing streak of %d exceeds the %d-loss psychological limit",
			res.MaxConsecutiveLosses, a.cfg.PsychLossLimit))
	}
	if res.BearRuinProb > a.cfg.BearAlertRuinProb {
		w = append(w, fmt.Sprintf("bear-regime ruin probability %.2f%% above %.2f%% alert threshold",
			100*res.BearRuinProb, 100*a.cfg.BearAlertRuinProb))
	}
	if res.HighVolRuinProb > a.cfg.HighVolAlertRuinProb {
		w = append(w, fmt.Sprintf("high-volatility ruin probability %.2f%% above %.2f%% alert threshold",
			100*res.HighVolRuinProb, 100*a.cfg.HighVolAlertRuinProb))
	}

	return w
}

// batchStats aggregates one Monte Carlo batch.
type batchStats struct {
	finalCapitals        []float64
	ruinedCount          int
	drawdownSum          float64
	worstDrawdown        float64
	maxConsecutiveLosses int
}

func (b batchStats) ruinProb() float64 {
	if len(b.finalCapitals) == 0 {
		return 0
	}
	return float64(b.ruinedCount) / float64(len(b.finalCapitals))
}

func (b batchStats) avgDrawdown() float64 {
	if len(b.finalCapitals) == 0 {
		return 0
	}
	return b.drawdownSum / float64(len(b.finalCapitals))
}

// runBatch fans n independent paths across a bounded worker pool. Every
// path seeds its own RNG from the batch seed and path index, so results do
// not depend on goroutine scheduling. Paths share nothing mutable; each
// worker reduces locally and the partials merge at the end.
func (a *Analyzer) runBatch(p Params, regime Regime, n int, seed int64) batchStats {
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	results := make([]PathResult, n)

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				rng := newPathRNG(seed, int64(i))
				results[i] = SimulatePath(p, regime, rng)
			}
		}(start, end)
	}
	wg.Wait()

	stats := batchStats{finalCapitals: make([]float64, 0, n)}
	for _, r := range results {
		stats.finalCapitals = append(stats.finalCapitals, r.FinalCapital)
		if r.Ruined {
			stats.ruinedCount++
		}
		stats.drawdownSum += r.MaxDrawdownPct
		if r.MaxDrawdownPct > stats.worstDrawdown {
			stats.worstDrawdown = r.MaxDrawdownPct
		}
		if r.MaxConsecutiveLosses > stats.maxConsecutiveLosses {
			stats.maxConsecutiveLosses = r.MaxConsecutiveLosses
		}
	}
	return stats
}

// newPathRNG derives an independent RNG for one path. Mixing the path
// index with a large odd constant decorrelates neighboring streams.
func newPathRNG(seed, path int64) *rand.Rand {
	mixed := seed ^ (path+1)*2654435761
	return rand.New(rand.NewSource(mixed))
}

// percentile returns the pth percentile of values using nearest-rank on a
// sorted copy.
func percentile(values []float64, p int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
