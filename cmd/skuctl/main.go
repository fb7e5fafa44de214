package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rxcatalog/rxcatalog/internal/app"
)

var (
	cfg    *app.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "skuctl",
	Short:         "Administer the drug SKU catalogue",
	Long:          "Seeds sample data, repairs stored statuses, reports duplicate names, runs label OCR locally and manages the background job queue.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logger = app.NewLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, repairStatusCmd, duplicatesCmd, extractCmd, jobsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "skuctl:", err)
		os.Exit(1)
	}
}
