package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/safecase/internal/core/checklist"
	"github.com/example/safecase/internal/ports/primary"
	"github.com/example/safecase/internal/wire"
)

var checklistCmd = &cobra.Command{
	Use:     "checklist",
	Aliases: []string{"cl"},
	Short:   "Run TIMEOUT and DEBRIEF checklists",
	Long:    "Start checklists on a case, record responses and signatures, and complete them",
}

var checklistStartCmd = &cobra.Command{
	Use:   "start <case-id> <type>",
	Short: "Start a checklist on a case",
	Long: `Start a TIMEOUT or DEBRIEF checklist on a case. The checklist is pinned to
the template version current at the time it starts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		t, err := checklist.ParseType(args[1])
		if err != nil {
			return err
		}
		room, _ := cmd.Flags().GetString("room")

		return wire.ChecklistAdapter().Start(NewContext(), primary.StartChecklistRequest{
			CaseID:     args[0],
			FacilityID: facilityID,
			Type:       t,
			ActorID:    actorID,
			RoomID:     room,
		})
	},
}

var checklistRespondCmd = &cobra.Command{
	Use:   "respond <checklist-id> <item-key> <value>",
	Short: "Record a response to one item",
	Long: `Record a response to one checklist item. Responses are append-only;
answering again supersedes the previous answer but keeps it in history.
Checkboxes take "true" or "false"; pass "" to clear an answer.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		return wire.ChecklistAdapter().Respond(NewContext(), primary.RecordResponseRequest{
			InstanceID: args[0],
			FacilityID: facilityID,
			ItemKey:    args[1],
			Value:      args[2],
			ActorID:    actorID,
		})
	},
}

var checklistSignCmd = &cobra.Command{
	Use:   "sign <checklist-id> <role>",
	Short: "Sign a checklist as a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		method, err := methodFlag(cmd)
		if err != nil {
			return err
		}
		return wire.ChecklistAdapter().Sign(NewContext(), primary.AddSignatureRequest{
			InstanceID: args[0],
			FacilityID: facilityID,
			Role:       checklist.ParseRole(args[1]),
			ActorID:    actorID,
			Method:     method,
		})
	},
}

var checklistCompleteCmd = &cobra.Command{
	Use:   "complete <checklist-id>",
	Short: "Complete a checklist",
	Long: `Complete a checklist. Every required item must be answered and every
currently required signature recorded. A DEBRIEF may complete without a
conditional SCRUB or SURGEON signature; that role is then flagged for review.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		return wire.ChecklistAdapter().Complete(NewContext(), primary.CompleteChecklistRequest{
			InstanceID: args[0],
			FacilityID: facilityID,
			ActorID:    actorID,
		})
	},
}

var checklistReviewCmd = &cobra.Command{
	Use:   "review <checklist-id> <role>",
	Short: "Record a deferred SCRUB or SURGEON review on a completed DEBRIEF",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, actorID, err := identity()
		if err != nil {
			return err
		}
		method, err := methodFlag(cmd)
		if err != nil {
			return err
		}
		notes, _ := cmd.Flags().GetString("notes")
		return wire.ChecklistAdapter().Review(NewContext(), primary.AsyncReviewRequest{
			InstanceID: args[0],
			FacilityID: facilityID,
			Role:       checklist.ParseRole(args[1]),
			ActorID:    actorID,
			Notes:      notes,
			Method:     method,
		})
	},
}

var checklistShowCmd = &cobra.Command{
	Use:   "show <checklist-id>",
	Short: "Show a checklist with its responses and signatures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := FacilityID()
		if err != nil {
			return err
		}
		return wire.ChecklistAdapter().Show(NewContext(), facilityID, args[0])
	},
}

var checklistListCmd = &cobra.Command{
	Use:   "list <case-id>",
	Short: "List the checklists of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := FacilityID()
		if err != nil {
			return err
		}
		return wire.ChecklistAdapter().List(NewContext(), facilityID, args[0])
	},
}

var checklistHistoryCmd = &cobra.Command{
	Use:   "history <checklist-id> [item-key]",
	Short: "Show every response recorded on a checklist",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := FacilityID()
		if err != nil {
			return err
		}
		var itemKey string
		if len(args) == 2 {
			itemKey = args[1]
		}
		return wire.ChecklistAdapter().History(NewContext(), facilityID, args[0], itemKey)
	},
}

var checklistPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List DEBRIEF checklists awaiting a deferred review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := FacilityID()
		if err != nil {
			return err
		}
		return wire.ChecklistAdapter().Pending(NewContext(), facilityID)
	},
}

var checklistAuditCmd = &cobra.Command{
	Use:   "audit [checklist-id]",
	Short: "Show the audit trail of a checklist or the whole facility",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facilityID, err := FacilityID()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		filters := primary.LogFilters{FacilityID: facilityID, Limit: limit}
		if len(args) == 1 {
			filters.EntityID = args[0]
		}
		return wire.LogAdapter().List(NewContext(), filters)
	},
}

func methodFlag(cmd *cobra.Command) (checklist.SignatureMethod, error) {
	raw, _ := cmd.Flags().GetString("method")
	return checklist.ParseMethod(raw)
}

// ChecklistCmd returns the checklist command
func ChecklistCmd() *cobra.Command {
	checklistStartCmd.Flags().String("room", "", "operating room ID")

	checklistSignCmd.Flags().String("method", "LOGIN", "capture method: LOGIN, PIN, BADGE or VERBAL")
	checklistReviewCmd.Flags().String("method", "LOGIN", "capture method: LOGIN, PIN, BADGE or VERBAL")
	checklistReviewCmd.Flags().String("notes", "", "review notes")

	checklistAuditCmd.Flags().IntP("limit", "n", 50, "maximum entries to show")

	checklistCmd.AddCommand(checklistStartCmd)
	checklistCmd.AddCommand(checklistRespondCmd)
	checklistCmd.AddCommand(checklistSignCmd)
	checklistCmd.AddCommand(checklistCompleteCmd)
	checklistCmd.AddCommand(checklistReviewCmd)
	checklistCmd.AddCommand(checklistShowCmd)
	checklistCmd.AddCommand(checklistListCmd)
	checklistCmd.AddCommand(checklistHistoryCmd)
	checklistCmd.AddCommand(checklistPendingCmd)
	checklistCmd.AddCommand(checklistAuditCmd)

	return checklistCmd
}
