package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xshopai/seeder/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured services and where they connect",
	Long: `Show each configured service with its store kind, host, port,
database, seed order and dependencies. Passwords are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		color.Cyan("📋 Configured services (fixtures: %s)\n", cfg.FixturesDir)
		fmt.Printf("%-18s  %-10s  %-22s  %-6s  %-22s  %-5s  %s\n", "SERVICE", "KIND", "HOST", "PORT", "DATABASE", "ORDER", "DEPENDS ON")
		fmt.Printf("%-18s  %-10s  %-22s  %-6s  %-22s  %-5s  %s\n",
			strings.Repeat("─", 18), strings.Repeat("─", 10), strings.Repeat("─", 22), strings.Repeat("─", 6),
			strings.Repeat("─", 22), strings.Repeat("─", 5), strings.Repeat("─", 20))

		cyan := color.New(color.FgCyan)
		yellow := color.New(color.FgYellow)
		for _, svc := range cfg.Sorted() {
			cyan.Printf("%-18s", svc.Name)
			fmt.Printf("  %-10s  ", svc.Kind)

			url, err := svc.GetURL()
			if err != nil {
				yellow.Printf("%-22s", "("+svc.URLEnv+" not set)")
				fmt.Printf("  %-6s  %-22s", "-", svc.Database)
			} else {
				loc := config.ParseLocator(svc.Kind, url)
				port := "-"
				if loc.Port > 0 {
					port = strconv.Itoa(loc.Port)
				}
				db := loc.Database
				if db == "" {
					db = svc.Database
				}
				fmt.Printf("%-22s  %-6s  %-22s", loc.Host, port, db)
			}

			deps := "-"
			if len(svc.DependsOn) > 0 {
				deps = strings.Join(svc.DependsOn, ", ")
			}
			fmt.Printf("  %-5d  %s\n", svc.SeedOrder, deps)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
