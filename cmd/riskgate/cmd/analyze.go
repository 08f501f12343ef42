package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/ruin"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a risk-of-ruin analysis",
	Long: `Run the full risk-of-ruin workup for a set of trading statistics:
expectancy, Kelly sizing, the closed-form gambler's-ruin probability,
Monte Carlo simulation under normal and stressed market regimes, and a
categorical risk rating with warnings.

Wins and losses are expressed in R multiples (multiples of the amount
risked per trade).

Example:
  riskgate analyze --win-rate 0.55 --avg-win 1.8 --avg-loss 1.0 \
    --capital 25000 --size 0.02`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var (
	analyzeWinRate  float64
	analyzeAvgWin   float64
	analyzeAvgLoss  float64
	analyzeCapital  float64
	analyzeSize     float64
	analyzeRuinPct  float64
	analyzeTrades   int
	analyzeSims     int
	analyzeSeed     int64
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Float64Var(&analyzeWinRate, "win-rate", 0.55, "win probability in (0,1)")
	analyzeCmd.Flags().Float64Var(&analyzeAvgWin, "avg-win", 1.5, "average win in R multiples")
	analyzeCmd.Flags().Float64Var(&analyzeAvgLoss, "avg-loss", 1.0, "average loss in R multiples")
	analyzeCmd.Flags().Float64Var(&analyzeCapital, "capital", 10000, "starting capital")
	analyzeCmd.Flags().Float64Var(&analyzeSize, "size", 0.02, "position size fraction in (0,1)")
	analyzeCmd.Flags().Float64Var(&analyzeRuinPct, "ruin-threshold", 0.5, "capital-loss fraction treated as ruin")
	analyzeCmd.Flags().IntVar(&analyzeTrades, "trades", 200, "trades per simulated path")
	analyzeCmd.Flags().IntVar(&analyzeSims, "sims", 10000, "number of Monte Carlo paths")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "RNG seed (0 = random)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	acfg := ruin.DefaultAnalyzerConfig()
	acfg.MaxAcceptableRuinProb = cfg.Throttle.MaxAcceptableRuinProb

	analyzer := ruin.NewAnalyzer(acfg)
	analyzer.SetLogger(cfg.NewLogger())

	res, err := analyzer.Analyze(ruin.Params{
		WinRate:          analyzeWinRate,
		AvgWin:           analyzeAvgWin,
		AvgLoss:          analyzeAvgLoss,
		InitialCapital:   analyzeCapital,
		PositionSizePct:  analyzeSize,
		RuinThresholdPct: analyzeRuinPct,
		NumTrades:        analyzeTrades,
		NumSimulations:   analyzeSims,
		Seed:             analyzeSeed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", res.RunID)
	fmt.Printf("Edge\n")
	fmt.Printf("  Expectancy:       %.3fR per trade\n", res.Expectancy)
	fmt.Printf("  Payoff ratio:     %.2f\n", res.PayoffRatio)
	fmt.Printf("  Kelly:            %.2f%% (half-Kelly %.2f%%)\n", 100*res.Kelly, 100*res.HalfKelly)
	fmt.Printf("Ruin probability\n")
	fmt.Printf("  Closed form:      %.4f%%\n", 100*res.TheoreticalRuinProb)
	fmt.Printf("  Monte Carlo:      %.4f%% (%d paths)\n", 100*res.MonteCarloRuinProb, res.Params.NumSimulations)
	fmt.Printf("  Bull / Bear / HV: %.2f%% / %.2f%% / %.2f%%\n",
		100*res.BullRuinProb, 100*res.BearRuinProb, 100*res.HighVolRuinProb)
	fmt.Printf("Final capital (of %.0f)\n", res.Params.InitialCapital)
	fmt.Printf("  P5 / P50 / P95:   %.0f / %.0f / %.0f\n",
		res.FinalCapitalP5, res.FinalCapitalP50, res.FinalCapitalP95)
	fmt.Printf("Drawdown\n")
	fmt.Printf("  Mean / worst:     %.1f%% / %.1f%%\n",
		100*res.AvgMaxDrawdownPct, 100*res.WorstMaxDrawdownPct)
	fmt.Printf("  Worst streak:     %d consecutive losses\n", res.MaxConsecutiveLosses)
	fmt.Printf("Rating: %s\n", res.RatingLabel)
	fmt.Printf("Recommended size: %.2f%% of capital\n", 100*res.RecommendedPositionSize)

	if len(res.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, w := range res.Warnings {
			fmt.Printf("  ! %s\n", w)
		}
	}
	return nil
}
