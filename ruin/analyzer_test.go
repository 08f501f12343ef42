package ruin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRejectsInvalidParams(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(DefaultAnalyzerConfig())

	p := testParams()
	p.WinRate = 0
	_, err := a.Analyze(p)
	assert.Error(t, err)
}

func TestAnalyzeConvergesToClosedForm(t *testing.T) {
	t.Parallel()

	// At a 55% win rate with symmetric 1R wins and losses the Monte Carlo
	// estimate should land within a few points of the gambler's-ruin
	// arithmetic. The gap that remains is structural: fixed-fraction bets
	// shrink as capital falls, so simulated ruin runs slightly below the
	// fixed-unit closed form.
	p := Params{
		WinRate:          0.55,
		AvgWin:           1.0,
		AvgLoss:          1.0,
		InitialCapital:   10000,
		PositionSizePct:  0.02,
		RuinThresholdPct: 0.3,
		NumTrades:        1000,
		NumSimulations:   10000,
		Seed:             12345,
	}

	a := NewAnalyzer(DefaultAnalyzerConfig())
	res, err := a.Analyze(p)
	require.NoError(t, err)

	assert.InDelta(t, res.TheoreticalRuinProb, res.MonteCarloRuinProb, 0.03)
}

func TestAnalyzeDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.Seed = 777

	a := NewAnalyzer(DefaultAnalyzerConfig())

	first, err := a.Analyze(p)
	require.NoError(t, err)
	second, err := a.Analyze(p)
	require.NoError(t, err)

	assert.Equal(t, first.MonteCarloRuinProb, second.MonteCarloRuinProb)
	assert.Equal(t, first.FinalCapitalP50, second.FinalCapitalP50)
	assert.Equal(t, first.BearRuinProb, second.BearRuinProb)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAnalyzeOrdersPercentiles(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.Seed = 4

	a := NewAnalyzer(DefaultAnalyzerConfig())
	res, err := a.Analyze(p)
	require.NoError(t, err)

	assert.LessOrEqual(t, res.FinalCapitalP5, res.FinalCapitalP50)
	assert.LessOrEqual(t, res.FinalCapitalP50, res.FinalCapitalP95)
	assert.GreaterOrEqual(t, res.WorstMaxDrawdownPct, res.AvgMaxDrawdownPct)
}

func TestAnalyzeRegimeOrdering(t *testing.T) {
	t.Parallel()

	// Bear conditions must not look safer than normal ones at the same
	// statistics; bulls must not look riskier.
	p := testParams()
	p.PositionSizePct = 0.05
	p.RuinThresholdPct = 0.3
	p.NumTrades = 500
	p.NumSimulations = 10000
	p.Seed = 9

	a := NewAnalyzer(DefaultAnalyzerConfig())
	res, err := a.Analyze(p)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.BearRuinProb, res.MonteCarloRuinProb)
	assert.LessOrEqual(t, res.BullRuinProb, res.MonteCarloRuinProb+0.01)
}

func TestAnalyzeWarnsOnNegativeEdge(t *testing.T) {
	t.Parallel()

	p := testParams()
	p.WinRate = 0.40
	p.AvgWin = 1.0
	p.Seed = 2

	a := NewAnalyzer(DefaultAnalyzerConfig())
	res, err := a.Analyze(p)
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.TheoreticalRuinProb)
	assert.Equal(t, "EXTREME", res.RatingLabel)
	assert.NotEmpty(t, res.Warnings)
}

func TestRecommendSizeClamps(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(DefaultAnalyzerConfig())

	assert.InDelta(t, 0.005, a.recommendSize(0.001, 0.5), 1e-12)
	assert.InDelta(t, 0.05, a.recommendSize(0.20, 0.5), 1e-12)
	// Low edge trims by a quarter before clamping.
	assert.InDelta(t, 0.02*0.75, a.recommendSize(0.02, 0.05), 1e-12)
}

func TestClassifyRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prob float64
		want Rating
	}{
		{"well under one percent", 0.001, RatingLow},
		{"just under one percent", 0.0099, RatingLow},
		{"one percent", 0.01, RatingModerate},
		{"just under five", 0.0499, RatingModerate},
		{"five percent", 0.05, RatingHigh},
		{"just under fifteen", 0.1499, RatingHigh},
		{"fifteen percent", 0.15, RatingExtreme},
		{"certain", 1.0, RatingExtreme},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyRating(tt.prob))
		})
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	values := []float64{5, 1, 4, 2, 3}

	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 3.0, percentile(values, 50))
	assert.Equal(t, 5.0, percentile(values, 95))
	assert.Equal(t, 0.0, percentile(nil, 50))

	// Input order is preserved.
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestRunBatchAggregates(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(DefaultAnalyzerConfig())
	p := testParams()

	// The aggregates must be callable straight off the batch result, the
	// way Analyze chains the per-regime batches.
	prob := a.runBatch(p, RegimeBear, 2000, 11).ruinProb()
	assert.GreaterOrEqual(t, prob, 0.0)
	assert.LessOrEqual(t, prob, 1.0)

	stats := a.runBatch(p, RegimeNormal, 2000, 11)
	assert.Len(t, stats.finalCapitals, 2000)
	assert.LessOrEqual(t, stats.avgDrawdown(), stats.worstDrawdown)
	assert.InDelta(t, float64(stats.ruinedCount)/2000, stats.ruinProb(), 1e-12)
}

func TestPathRNGStreamsAreIndependent(t *testing.T) {
	t.Parallel()

	a := newPathRNG(1, 0).Float64()
	b := newPathRNG(1, 1).Float64()
	c := newPathRNG(1, 0).Float64()

	assert.Equal(t, a, c)
	assert.False(t, math.Abs(a-b) < 1e-15)
}
