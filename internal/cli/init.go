package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/config"
	"github.com/example/safecase/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the safecase database and config",
		Long: `Initialize the safecase database (default ~/.safecase/safecase.db) and
write the current --facility, --actor and --db values to the config file so
later commands can omit them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.Save(path, session); err != nil {
				return err
			}
			fmt.Printf("✓ Config written to %s\n", path)

			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}
			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Printf("✓ Database initialized at %s\n", dbPath)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  safecase template defaults")
			fmt.Println("  safecase checklist start <case-id> TIMEOUT")
			return nil
		},
	}
}
