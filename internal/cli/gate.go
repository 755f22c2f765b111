package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/ports/primary"
	"github.com/example/safecase/internal/wire"
)

// errGateDenied makes a denied gate exit non-zero after the reason is printed.
var errGateDenied = errors.New("gate denied")

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check whether a case may start or complete",
	Long: `Check the case lifecycle gates. A case may start once its TIMEOUT is
completed and complete once its DEBRIEF is completed. Both gates pass when
the facility has checklists disabled. Exits non-zero when the gate is closed.`,
}

func gateCheckCmd(use, short string, check func(facilityID, caseID string) (*primary.GateDecision, error)) *cobra.Command {
	return &cobra.Command{
		Use:          use + " <case-id>",
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			facilityID, err := FacilityID()
			if err != nil {
				return err
			}
			d, err := check(facilityID, args[0])
			if err != nil {
				return err
			}
			if !d.Allowed {
				return errGateDenied
			}
			return nil
		},
	}
}

// GateCmd returns the gate command
func GateCmd() *cobra.Command {
	gateCmd.AddCommand(gateCheckCmd("start", "Check whether a case may start",
		func(facilityID, caseID string) (*primary.GateDecision, error) {
			return wire.GateAdapter().CanStart(NewContext(), facilityID, caseID)
		}))
	gateCmd.AddCommand(gateCheckCmd("complete", "Check whether a case may complete",
		func(facilityID, caseID string) (*primary.GateDecision, error) {
			return wire.GateAdapter().CanComplete(NewContext(), facilityID, caseID)
		}))
	return gateCmd
}
