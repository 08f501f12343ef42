package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the riskgate CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("riskgate version %s\n", version)
		fmt.Println("Capital risk gating for automated trading accounts")
		fmt.Println("https://github.com/rustyeddy/riskgate")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
