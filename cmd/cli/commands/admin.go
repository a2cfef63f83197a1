package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
)

// Admin flag names
const (
	flagAdminJobID  = "job-id"
	flagRelease     = "release"
	flagResolveNote = "note"
)

func init() {
	adminCmd.AddCommand(waitlistJobCmd)
	adminCmd.AddCommand(triageDisputeCmd)
	adminCmd.AddCommand(resolveDisputeCmd)

	waitlistJobCmd.Flags().UintP(flagAdminJobID, "j", 0, "Job ID")
	waitlistJobCmd.Flags().String(flagReason, "", "Reason for waitlisting")
	_ = waitlistJobCmd.MarkFlagRequired(flagAdminJobID)

	triageDisputeCmd.Flags().UintP(flagAdminJobID, "j", 0, "Job ID")
	_ = triageDisputeCmd.MarkFlagRequired(flagAdminJobID)

	resolveDisputeCmd.Flags().UintP(flagAdminJobID, "j", 0, "Job ID")
	resolveDisputeCmd.Flags().Bool(flagRelease, false, "Resolve in the worker's favor, releasing escrow")
	resolveDisputeCmd.Flags().String(flagResolveNote, "", "Resolution note")
	_ = resolveDisputeCmd.MarkFlagRequired(flagAdminJobID)
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative job operations",
}

var waitlistJobCmd = &cobra.Command{
	Use:   "waitlist",
	Short: "Move a pending job onto the waitlist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagAdminJobID)
		reason, _ := cmd.Flags().GetString(flagReason)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/jobs/%d/waitlist", jobID), map[string]string{"reason": reason})
		if err != nil {
			return fmt.Errorf("error waitlisting job: %w", err)
		}
		return printData(resp.Data)
	},
}

var triageDisputeCmd = &cobra.Command{
	Use:   "triage",
	Short: "Acknowledge a filed dispute for review",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagAdminJobID)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/jobs/%d/triage", jobID), nil)
		if err != nil {
			return fmt.Errorf("error triaging dispute: %w", err)
		}
		return printData(resp.Data)
	},
}

var resolveDisputeCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a triaged dispute for the worker or the customer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagAdminJobID)
		release, _ := cmd.Flags().GetBool(flagRelease)
		note, _ := cmd.Flags().GetString(flagResolveNote)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/jobs/%d/resolve", jobID), handlers.ResolveDisputeRequest{
			ReleaseToWorker: release,
			Note:            note,
		})
		if err != nil {
			return fmt.Errorf("error resolving dispute: %w", err)
		}
		return printData(resp.Data)
	},
}

// GetAdminCmd returns the admin command
func GetAdminCmd() *cobra.Command {
	return adminCmd
}
