package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xshopai/seeder/internal/config"
	"github.com/xshopai/seeder/internal/seeder"
)

var (
	cfgFile string
	verbose bool
	Version = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed every xshopai service database with consistent demo data",
	Long: `
Seeder loads JSON fixtures and writes them into each service's own database,
keeping cross-service references consistent within a run.

Services and stores:
- user-service, product-service (MongoDB)
- inventory-service (MySQL)
- order-service (PostgreSQL)
- review-service (SQLite)

Connection URLs come from each service's *_DATABASE_URL environment variable,
read from the environment, .env or .env.local.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		color.Red("❌ %v", err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./seeder.config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print identity mapper details after each service")
	rootCmd.PersistentFlags().String("fixtures", "", "Directory holding the JSON fixtures (default is ./data)")

	viper.BindPFlag("fixtures_dir", rootCmd.PersistentFlags().Lookup("fixtures"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
	}
	godotenv.Load(".env.local")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("seeder.config")
	}

	viper.SetEnvPrefix("SEEDER")
	viper.AutomaticEnv()
	for _, key := range []string{"fixtures_dir", "batch_size", "batch_pause", "default_clear"} {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			color.Yellow("⚠️  Could not read config file %s: %v", cfgFile, err)
		}
	}
}

// newOrchestrator loads the configuration and builds the run's orchestrator.
func newOrchestrator() (*config.Config, *seeder.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	orch, err := seeder.NewOrchestrator(cfg, seeder.DefaultRegistry(), seeder.Deps{})
	if err != nil {
		return nil, nil, fmt.Errorf("invalid service graph: %w", err)
	}
	return cfg, orch, nil
}
