package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datachat-io/datachat/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "datachat",
	Short: "Chat with your tabular data, in French or English",
	Long:  "Imports CSV/JSON/XLSX files into SQLite, answers natural-language questions as SQL, and optionally enriches matches with an OSINT scan and an AI report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
