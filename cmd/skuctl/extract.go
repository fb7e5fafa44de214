package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rxcatalog/rxcatalog/internal/app"
	"github.com/rxcatalog/rxcatalog/internal/labelscan"
	"github.com/rxcatalog/rxcatalog/internal/ocr"
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Run OCR and field extraction on a local label image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := app.NewOCREngine(cfg)
		if err != nil {
			return err
		}
		return runExtract(cmd.Context(), engine, logger, args[0], cmd.OutOrStdout())
	},
}

func runExtract(ctx context.Context, engine ocr.Engine, log *slog.Logger, path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	res, err := labelscan.NewService(engine, log).Scan(ctx, data)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
