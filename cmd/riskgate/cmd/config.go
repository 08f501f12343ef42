package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage riskgate configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  riskgate config init -o riskgate.yaml
  riskgate config validate -f riskgate.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with the default capital tiers,
thresholds and a SQLite store.

Example:
  riskgate config init -o riskgate.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check that a configuration file parses and that its tiers and
thresholds are internally consistent.

Example:
  riskgate config validate -f riskgate.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "riskgate.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  riskgate status -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Account: %s\n", cfg.Account.ID)
	fmt.Printf("  Initial capital: %.2f (ruin threshold %.0f%%)\n",
		cfg.Throttle.InitialCapital, 100*cfg.Throttle.RuinThresholdPct)
	fmt.Printf("  Tiers: %d\n", len(cfg.Throttle.Tiers))
	for _, tier := range cfg.Throttle.Tiers {
		bound := "unbounded"
		if tier.ThresholdAmount > 0 {
			bound = fmt.Sprintf("< %.0f", tier.ThresholdAmount)
		}
		fmt.Printf("    %-14s %-10s max size %.2f%%\n",
			tier.Name, bound, 100*tier.MaxPositionSizePct)
	}
	fmt.Printf("  Store: %s\n", cfg.Store.Type)
	return nil
}
