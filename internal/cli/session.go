// Package cli provides CLI commands for the safecase application.
package cli

import (
	gocontext "context"
	"flag"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/config"
	"github.com/example/safecase/internal/ctxutil"
	"github.com/example/safecase/internal/db"
)

// session holds the resolved configuration for the current invocation.
// Set once at startup by LoadSession.
var session = &config.Config{}

// configPath is the --config flag value; empty means config.DefaultPath.
var configPath string

// RegisterSessionFlags adds the global identity and storage flags to root,
// along with glog's flags (-v, --logtostderr, --vmodule, ...).
func RegisterSessionFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.AddGoFlagSet(flag.CommandLine)
	flags.StringVar(&configPath, "config", "", "config file (default ~/.safecase/config.yaml)")
	flags.String("facility", "", "facility ID (overrides config)")
	flags.String("actor", "", "acting user ID (overrides config)")
	flags.String("db", "", "database file (overrides config)")
}

// LoadSession reads the config file and applies flag overrides. It is meant
// to run as the root command's PersistentPreRunE.
func LoadSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("facility"); v != "" {
		cfg.FacilityID = v
	}
	if v, _ := flags.GetString("actor"); v != "" {
		cfg.ActorID = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if cfg.DBPath != "" {
		db.SetPath(cfg.DBPath)
	}

	session = cfg
	return nil
}

// FacilityID returns the facility for this invocation.
func FacilityID() (string, error) {
	if session.FacilityID == "" {
		return "", fmt.Errorf("no facility set\nHint: pass --facility, set SAFECASE_FACILITY_ID, or run `safecase init --facility <id>`")
	}
	return session.FacilityID, nil
}

// ActorID returns the acting user for this invocation.
func ActorID() (string, error) {
	if session.ActorID == "" {
		return "", fmt.Errorf("no actor set\nHint: pass --actor, set SAFECASE_ACTOR_ID, or run `safecase init --actor <id>`")
	}
	return session.ActorID, nil
}

// NewContext creates a context.Background() carrying the session's facility
// and actor. CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if session.FacilityID != "" {
		ctx = ctxutil.WithFacilityID(ctx, session.FacilityID)
	}
	if session.ActorID != "" {
		ctx = ctxutil.WithActorID(ctx, session.ActorID)
	}
	return ctx
}

// identity resolves both facility and actor, for commands that write.
func identity() (facilityID, actorID string, err error) {
	if facilityID, err = FacilityID(); err != nil {
		return "", "", err
	}
	if actorID, err = ActorID(); err != nil {
		return "", "", err
	}
	return facilityID, actorID, nil
}
