package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/cli"
	"github.com/example/safecase/internal/version"
)

func main() {
	// Default for glog; --logtostderr=false still overrides it.
	_ = flag.Set("logtostderr", "true")
	defer glog.Flush()

	rootCmd := &cobra.Command{
		Use:     "safecase",
		Short:   "safecase - surgical safety checklists for ambulatory surgery centers",
		Version: version.String(),
		Long: `safecase runs the OR Time Out and post-op Debrief checklists: versioned
templates, append-only responses, role signatures, deferred reviews and the
case start/complete gates.`,
		SilenceUsage:      true,
		PersistentPreRunE: cli.LoadSession,
	}
	cli.RegisterSessionFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.TemplateCmd())
	rootCmd.AddCommand(cli.ChecklistCmd())
	rootCmd.AddCommand(cli.GateCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		glog.Flush()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
