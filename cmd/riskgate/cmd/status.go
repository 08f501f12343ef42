package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current throttle status",
	Long: `Load persisted throttle state and print the full status report:
capital, active tier, performance statistics, last ruin analysis and
stress-test state. With --trades N the journaled trade history is
appended, newest first (stores without a journal omit it).

Example:
  riskgate status -c riskgate.yaml --trades 10`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusTrades int

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusTrades, "trades", 0, "also list the N most recent journaled trades")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	t, st, err := openThrottle(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	fmt.Print(t.StatusReport().Format())

	if statusTrades > 0 {
		lister, ok := st.(interface {
			ListTrades(ctx context.Context, limit int) ([]store.TradeRecord, error)
		})
		if !ok {
			fmt.Println("Trade history:    not available for this store type")
			return nil
		}
		trades, err := lister.ListTrades(ctx, statusTrades)
		if err != nil {
			return fmt.Errorf("list trades: %w", err)
		}
		fmt.Println("Recent trades:")
		for _, tr := range trades {
			outcome := "LOSS"
			if tr.Winner {
				outcome = "WIN "
			}
			fmt.Printf("  %s  %s  %+10.2f  capital %.2f  [%s]\n",
				tr.Time.Format("2006-01-02 15:04:05"), outcome,
				tr.ProfitLoss, tr.CapitalAfter, tr.ThrottleLevel)
		}
	}
	return nil
}
