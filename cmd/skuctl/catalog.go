package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rxcatalog/rxcatalog/internal/app"
	"github.com/rxcatalog/rxcatalog/internal/sku"
)

// catalogOps is the slice of sku.Service the admin commands drive.
type catalogOps interface {
	Seed(ctx context.Context) (int, error)
	RepairStatuses(ctx context.Context) (int, error)
	Duplicates(ctx context.Context) ([]sku.DuplicateGroup, error)
}

func withCatalog(cmd *cobra.Command, fn func(context.Context, catalogOps) error) error {
	ctx := cmd.Context()
	catalog, err := app.OpenCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer catalog.Close() //nolint:errcheck
	return fn(ctx, catalog.Service)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample SKUs, skipping ndcs already registered",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCatalog(cmd, func(ctx context.Context, ops catalogOps) error {
			return runSeed(ctx, ops, cmd.OutOrStdout())
		})
	},
}

var repairStatusCmd = &cobra.Command{
	Use:   "repair-status",
	Short: "Rewrite stored statuses outside the known set",
	Long:  "ACTIVE (any case) becomes APPROVED; every other unknown status becomes DRAFT.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCatalog(cmd, func(ctx context.Context, ops catalogOps) error {
			return runRepair(ctx, ops, cmd.OutOrStdout())
		})
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List SKUs sharing a product name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withCatalog(cmd, func(ctx context.Context, ops catalogOps) error {
			return runDuplicates(ctx, ops, cmd.OutOrStdout(), asJSON)
		})
	},
}

func init() {
	duplicatesCmd.Flags().Bool("json", false, "print the report as JSON")
}

func runSeed(ctx context.Context, ops catalogOps, w io.Writer) error {
	added, err := ops.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(w, "Added %d of %d sample SKUs.\n", added, len(sku.SampleSKUs()))
	return nil
}

func runRepair(ctx context.Context, ops catalogOps, w io.Writer) error {
	fixed, err := ops.RepairStatuses(ctx)
	if err != nil {
		return fmt.Errorf("repair-status: %w", err)
	}
	if fixed == 0 {
		fmt.Fprintln(w, "All statuses are valid.")
		return nil
	}
	fmt.Fprintf(w, "Fixed %d records.\n", fixed)
	return nil
}

func runDuplicates(ctx context.Context, ops catalogOps, w io.Writer, asJSON bool) error {
	groups, err := ops.Duplicates(ctx)
	if err != nil {
		return fmt.Errorf("duplicates: %w", err)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}
	if len(groups) == 0 {
		fmt.Fprintln(w, "No duplicate names found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tNDC\tMANUFACTURER\tSTATUS")
	for _, g := range groups {
		for _, rec := range g.Records {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", g.Name, rec.ID, rec.NDC, rec.Manufacturer, rec.Status)
		}
	}
	return tw.Flush()
}
