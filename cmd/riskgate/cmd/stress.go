package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Run a drawdown stress test against stored state",
	Long: `Run a drawdown stress test for the account's current statistics and
persist the outcome. A passing test clears any pending tier-promotion
gate; a failing test keeps the throttle restricted.

With no flags the drawdown depth and recovery window come from the
active capital tier.

Example:
  riskgate stress -c riskgate.yaml --drawdown 0.30 --trades 40`,
	Args: cobra.NoArgs,
	RunE: runStress,
}

var (
	stressDrawdown float64
	stressTrades   int
)

func init() {
	rootCmd.AddCommand(stressCmd)

	stressCmd.Flags().Float64Var(&stressDrawdown, "drawdown", 0, "drawdown depth to simulate (0 = tier default)")
	stressCmd.Flags().IntVar(&stressTrades, "trades", 0, "recovery window in trades (0 = tier default)")
}

func runStress(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	t, st, err := openThrottle(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	res, err := t.RunStressTest(ctx, stressDrawdown, stressTrades)
	if err != nil {
		return err
	}

	fmt.Printf("Stress test %s\n", res.RunID)
	if !res.Eligible {
		fmt.Printf("  Not eligible: %s\n", res.Reason)
		return nil
	}

	fmt.Printf("  Scenario:   %.0f%% drawdown, %d-trade recovery window\n",
		100*res.DrawdownPct, res.DurationTrades)
	fmt.Printf("  Capital:    %.0f -> target %.0f\n", res.DrawdownCapital, res.TargetCapital)
	fmt.Printf("  Recovery:   %.1f%% of paths (%d/%d)\n",
		100*res.RecoveryProbability, res.RecoveredPaths, res.Simulations)
	if res.Passed {
		fmt.Println("  Result:     PASSED")
	} else {
		fmt.Println("  Result:     FAILED")
	}
	return nil
}
