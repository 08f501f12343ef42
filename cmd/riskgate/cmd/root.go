package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/config"
	"github.com/rustyeddy/riskgate/store"
	"github.com/rustyeddy/riskgate/throttle"
)

var rootCmd = &cobra.Command{
	Use:   "riskgate",
	Short: "Capital risk gating for automated trading accounts",
	Long: `Riskgate decides how aggressively a trading account may size positions
as its capital grows, and refuses to scale past configured tiers until a
statistically grounded survivability test passes.

It provides tools for:
  - Risk-of-ruin analysis (Kelly sizing, gambler's-ruin arithmetic,
    Monte Carlo simulation across market regimes)
  - Drawdown stress tests that gate capital tier promotions
  - A persisted capital throttle with graduated de-risking
  - Status reporting on capital, performance and throttle state

Complete documentation is available at https://github.com/rustyeddy/riskgate`,
}

var cfgPath string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (built-in defaults when empty)")
}

// loadConfig loads the configured or default application config.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openThrottle wires store, logger and throttle from config. Callers must
// Close the returned store when it is non-nil.
func openThrottle(ctx context.Context) (*throttle.Throttle, store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	st, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	t, err := throttle.New(cfg.Throttle, st, cfg.NewLogger())
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}
	return t, st, nil
}
