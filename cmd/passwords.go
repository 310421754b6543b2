package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xshopai/seeder/internal/config"
	"github.com/xshopai/seeder/internal/converter"
	"github.com/xshopai/seeder/internal/database"
)

var (
	guestPassword string
	adminPassword string
)

var updatePasswordsCmd = &cobra.Command{
	Use:   "update-passwords",
	Short: "Re-hash the demo account passwords in the user store",
	Long: `Replace the pre-computed demo password hashes with freshly salted bcrypt
hashes for the guest and admin accounts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		svc, err := cfg.Service("user-service")
		if err != nil {
			return err
		}
		url, err := svc.GetURL()
		if err != nil {
			return err
		}

		store, err := database.NewStore(svc.Kind)
		if err != nil {
			return err
		}
		users, ok := store.(database.DocumentStore)
		if !ok {
			return fmt.Errorf("%s store does not support document updates", svc.Kind)
		}

		ctx := cmd.Context()
		color.Cyan("📡 Connecting to %s...", svc.Name)
		if err := users.Connect(ctx, url); err != nil {
			return err
		}
		defer users.Close()

		accounts := []struct{ label, email, password string }{
			{"👤 Customer", "guest@xshopai.com", guestPassword},
			{"👑 Admin", "admin@xshopai.com", adminPassword},
		}
		for _, acct := range accounts {
			hash, err := converter.BcryptPassword(acct.password)
			if err != nil {
				return err
			}
			n, err := users.Update(ctx, "users",
				database.Record{"email": acct.email},
				database.Record{"password": hash, "updatedAt": time.Now().UTC()},
			)
			if err != nil {
				return fmt.Errorf("failed to update %s: %w", acct.email, err)
			}
			if n == 0 {
				color.Yellow("⚠️  %s not found, seed user-service first", acct.email)
				continue
			}
			color.Green("✅ Updated %s password (%d document(s))", acct.email, n)
		}

		fmt.Println("\n🔐 Login credentials:")
		for _, acct := range accounts {
			fmt.Printf("   %s: %s / %s\n", acct.label, acct.email, acct.password)
		}
		return nil
	},
}

func init() {
	updatePasswordsCmd.Flags().StringVar(&guestPassword, "guest-password", "Guest123!", "New password for guest@xshopai.com")
	updatePasswordsCmd.Flags().StringVar(&adminPassword, "admin-password", "Admin123!", "New password for admin@xshopai.com")
	rootCmd.AddCommand(updatePasswordsCmd)
}
