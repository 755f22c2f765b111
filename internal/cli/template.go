package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/templates"
	"github.com/example/safecase/internal/wire"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage checklist templates",
	Long:  "Publish, inspect and export the TIMEOUT and DEBRIEF templates of a facility",
}

var templatePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a new template version from a YAML file",
	Long: `Publish a new immutable template version and make it current.

The file lists items and required_signatures (see 'template export'). Use
'-f -' to read from stdin. Checklists already started keep the version they
were started with.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("file")
		typeFlag, _ := cmd.Flags().GetString("type")

		var override checklist.Type
		if typeFlag != "" {
			if override, err = checklist.ParseType(typeFlag); err != nil {
				return err
			}
		}

		var r io.Reader = os.Stdin
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open template file: %w", err)
			}
			defer f.Close()
			r = f
		}

		return wire.TemplateAdapter().Publish(NewContext(), facilityID, actorID, override, r)
	},
}

var templateDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Publish the built-in TIMEOUT and DEBRIEF templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		return publishDefaults(facilityID, actorID)
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the facility's templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := FacilityID()
		if err != nil {
			return err
		}
		return wire.TemplateAdapter().List(NewContext(), facilityID)
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show <type>",
	Short: "Show the current version of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, t, err := templateTarget(args[0])
		if err != nil {
			return err
		}
		return wire.TemplateAdapter().Show(NewContext(), facilityID, t)
	},
}

var templateExportCmd = &cobra.Command{
	Use:   "export <type>",
	Short: "Print the current version as a publishable YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, t, err := templateTarget(args[0])
		if err != nil {
			return err
		}
		return wire.TemplateAdapter().Export(NewContext(), facilityID, t)
	},
}

func templateActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <type>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facilityID, t, err := templateTarget(args[0])
			if err != nil {
				return err
			}
			return wire.TemplateAdapter().SetActive(NewContext(), facilityID, t, active)
		},
	}
}

func templateTarget(arg string) (string, checklist.Type, error) {
	facilityID, err := FacilityID()
	if err != nil {
		return "", "", err
	}
	t, err := checklist.ParseType(arg)
	if err != nil {
		return "", "", err
	}
	return facilityID, t, nil
}

// publishDefaults publishes every embedded default template for a facility.
func publishDefaults(facilityID, actorID string) error {
	adapter := wire.TemplateAdapter()
	for _, t := range checklist.Types {
		content, err := templates.Default(t)
		if err != nil {
			return err
		}
		if err := adapter.Publish(NewContext(), facilityID, actorID, "", bytes.NewReader(content)); err != nil {
			return fmt.Errorf("failed to publish default %s template: %w", t, err)
		}
	}
	return nil
}

// TemplateCmd returns the template command
func TemplateCmd() *cobra.Command {
	templatePublishCmd.Flags().StringP("file", "f", "", "template YAML file ('-' for stdin)")
	templatePublishCmd.Flags().String("type", "", "checklist type (overrides the file's type)")
	templatePublishCmd.MarkFlagRequired("file")

	templateCmd.AddCommand(templatePublishCmd)
	templateCmd.AddCommand(templateDefaultsCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateExportCmd)
	templateCmd.AddCommand(templateActiveCmd("activate", "Activate a template", true))
	templateCmd.AddCommand(templateActiveCmd("deactivate", "Deactivate a template; new checklists cannot start", false))

	return templateCmd
}
