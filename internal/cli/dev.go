package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/db"
	"github.com/example/safecase/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working against a scratch database.

Point --db (or SAFECASE_DB_PATH) at a throwaway file before running these;
seeding a database that already holds fixtures fails on duplicate rows.`,
	}

	cmd.AddCommand(devSeedCmd())
	cmd.AddCommand(devFlagCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed fixture facilities, rooms, staff and cases",
		Long: `Seed fixture facilities, rooms, staff and cases, then publish the built-in
TIMEOUT and DEBRIEF templates for every fixture facility.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.GetDB()
			if err != nil {
				return err
			}
			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Fixtures seeded")

			actorID := session.ActorID
			if actorID == "" {
				actorID = db.FixtureAdminID
			}
			for _, facilityID := range db.FixtureFacilityIDs {
				if err := publishDefaults(facilityID, actorID); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func devFlagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flag <facility-id> <on|off>",
		Short: "Turn the TIMEOUT/DEBRIEF feature on or off for a facility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[1]) {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[1])
			}

			if err := wire.Services().Settings.SetEnableTimeoutDebrief(NewContext(), args[0], enabled); err != nil {
				return err
			}
			fmt.Printf("✓ Checklists %s for %s\n", strings.ToLower(args[1]), args[0])
			return nil
		},
	}
}
