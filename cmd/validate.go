package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xshopai/seeder/internal/config"
	"github.com/xshopai/seeder/internal/validator"
)

var validateFix bool

var validateReviewsCmd = &cobra.Command{
	Use:   "validate-reviews",
	Short: "Check that every review fixture matches a purchase",
	Long: `Check every review in the fixtures against the order fixture: a user may
only review products they ordered. With --fix, the review fixture is
regenerated from purchase history; the old file is kept as reviews.json.bak.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		v, err := validator.New(cfg.FixturesDir)
		if err != nil {
			return err
		}

		color.Cyan("🔍 Validating %d reviews against %d orders...", len(v.Reviews), len(v.Orders))
		res := v.ValidateReviews()
		color.Green("  ✅ %d valid", len(res.Valid))
		if res.OK() {
			color.Green("✅ All reviews are backed by a purchase")
			return nil
		}

		color.Yellow("  ⚠️  %d invalid:", len(res.Invalid))
		for _, violation := range res.Violations {
			fmt.Printf("     • %s\n", violation)
		}

		if !validateFix {
			color.Cyan("💡 Run with --fix to regenerate reviews from purchase history")
			return fmt.Errorf("%d review(s) without a matching purchase", len(res.Invalid))
		}

		n, err := v.Repair(cfg.FixturesDir)
		if err != nil {
			return err
		}
		color.Green("✅ Wrote %d reviews (backup: reviews.json.bak)", n)
		return nil
	},
}

func init() {
	validateReviewsCmd.Flags().BoolVar(&validateFix, "fix", false, "Regenerate the review fixture from purchase history")
	rootCmd.AddCommand(validateReviewsCmd)
}
