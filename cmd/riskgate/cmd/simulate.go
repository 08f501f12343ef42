package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive the throttle with a synthetic trade stream",
	Long: `Feed the throttle a Bernoulli stream of synthetic trades and watch the
state machine react: tier crossings, periodic ruin analysis, throttle
escalation and de-escalation.

Each winning trade books --avg-win, each losing trade books --avg-loss,
both scaled by the throttle's current maximum position size. The run
persists through the configured store; point -c at a scratch config
(store.type: none, or a throwaway path) to keep a demo out of real
state.

Example:
  riskgate simulate --trades 300 --win-rate 0.58 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

var (
	simTrades  int
	simWinRate float64
	simAvgWin  float64
	simAvgLoss float64
	simSeed    int64
	simEvery   int
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simTrades, "trades", 200, "number of synthetic trades")
	simulateCmd.Flags().Float64Var(&simWinRate, "win-rate", 0.55, "win probability in (0,1)")
	simulateCmd.Flags().Float64Var(&simAvgWin, "avg-win", 1.5, "win size in R multiples")
	simulateCmd.Flags().Float64Var(&simAvgLoss, "avg-loss", 1.0, "loss size in R multiples")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "RNG seed (0 = random)")
	simulateCmd.Flags().IntVar(&simEvery, "report-every", 50, "print a status line every N trades")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simWinRate <= 0 || simWinRate >= 1 {
		return fmt.Errorf("win-rate must be in (0,1), got %v", simWinRate)
	}
	if simTrades <= 0 {
		return fmt.Errorf("trades must be positive, got %d", simTrades)
	}

	ctx := context.Background()

	t, st, err := openThrottle(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	seed := simSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	t.SetSeed(seed)

	rep := t.StatusReport()
	fmt.Printf("Simulating %d trades at %.0f%% win rate (seed %d)\n",
		simTrades, 100*simWinRate, seed)
	fmt.Printf("Starting capital %.2f, tier %q, level %s\n\n",
		rep.Capital, rep.Tier.Name, rep.LevelLabel)

	lastLevel := t.Level()
	for i := 1; i <= simTrades; i++ {
		riskAmount := t.StatusReport().Capital * t.MaxPositionSize()
		if riskAmount <= 0 {
			fmt.Printf("trade %d: throttle level %s allows no position, stopping\n",
				i, t.Level())
			break
		}

		win := rng.Float64() < simWinRate
		pl := riskAmount * simAvgWin
		if !win {
			pl = -riskAmount * simAvgLoss
		}
		if err := t.RecordTrade(ctx, win, pl); err != nil {
			return fmt.Errorf("trade %d: %w", i, err)
		}

		if level := t.Level(); level != lastLevel {
			fmt.Printf("trade %d: throttle %s -> %s (%s)\n",
				i, lastLevel, level, t.Reason())
			lastLevel = level
		}
		if simEvery > 0 && i%simEvery == 0 {
			r := t.StatusReport()
			fmt.Printf("trade %d: capital %.2f, win rate %.1f%%, max size %.2f%%\n",
				i, r.Capital, 100*r.WinRate, 100*t.MaxPositionSize())
		}
	}

	fmt.Println()
	fmt.Print(t.StatusReport().Format())
	return nil
}
