package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearService string

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete seeded data from one or all services",
	Long: `Delete every row or document from the tables each service declares.
Services are cleared in reverse seed order, so dependents go first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, orch, err := newOrchestrator()
		if err != nil {
			return err
		}
		defer orch.Close()

		var names []string
		if clearService != "" {
			names = []string{clearService}
		}
		if err := orch.ClearServices(cmd.Context(), names); err != nil {
			return fmt.Errorf("failed to clear services: %w", err)
		}
		color.Green("✅ Clear complete")
		return nil
	},
}

func init() {
	clearCmd.Flags().StringVarP(&clearService, "service", "s", "", "Clear only this service")
	rootCmd.AddCommand(clearCmd)
}
