package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xshopai/seeder/internal/seeder"
)

var (
	seedService   string
	seedNoClear   bool
	seedValidate  bool
	seedDryRun    bool
	seedBatchSize int
	seedExportIDs string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed service databases from fixtures",
	Long: `Seed one service, or every service with a converter in seed order.

A full run always clears each service first. A single service can only be
seeded once its dependencies have seeded in the same run, so on its own that
works for services without dependencies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, orch, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orch.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		opts := seeder.Options{
			Clear:     cfg.DefaultClear && !seedNoClear,
			Validate:  seedValidate,
			DryRun:    seedDryRun,
			BatchSize: seedBatchSize,
			Verbose:   verbose,
		}
		if opts.DryRun {
			color.Yellow("🔍 Dry run: converting fixtures without writing")
		}

		results := runSeed(ctx, orch, opts)
		summary := seeder.Summarize(results, orch.IDs())
		seeder.PrintSummary(color.Output, summary)

		if seedExportIDs != "" {
			if err := orch.IDs().Export().WriteYAML(seedExportIDs); err != nil {
				return fmt.Errorf("failed to export identities: %w", err)
			}
			color.Green("💾 Identity mappings written to %s", seedExportIDs)
		}

		if !summary.OK() {
			return fmt.Errorf("%d service(s) failed: %s", len(summary.Failed), strings.Join(summary.Failed, ", "))
		}
		if !opts.DryRun && orch.Seeded("user-service") {
			seeder.PrintCredentials(color.Output)
		}
		color.Green("\n🎉 Seeding complete!")
		return nil
	},
}

func runSeed(ctx context.Context, orch *seeder.Orchestrator, opts seeder.Options) []seeder.ServiceResult {
	if seedService == "" {
		return orch.SeedAll(ctx, opts)
	}
	res, _ := orch.SeedOne(ctx, seedService, opts)
	return []seeder.ServiceResult{res}
}

func init() {
	seedCmd.Flags().StringVarP(&seedService, "service", "s", "", "Seed only this service")
	seedCmd.Flags().BoolVar(&seedNoClear, "no-clear", false, "Keep existing rows (single-service runs only)")
	seedCmd.Flags().BoolVar(&seedValidate, "validate", false, "Recount rows after seeding")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Convert fixtures but write nothing")
	seedCmd.Flags().IntVar(&seedBatchSize, "batch-size", 0, "Documents per insert batch (default from config)")
	seedCmd.Flags().StringVar(&seedExportIDs, "export-ids", "", "Write the identity mappings to this YAML file")

	rootCmd.AddCommand(seedCmd)
}
