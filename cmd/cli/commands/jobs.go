package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
)

// Job flag names
const (
	flagJobID       = "id"
	flagBidID       = "bid-id"
	flagTitle       = "title"
	flagDescription = "description"
	flagBudget      = "budget"
	flagLocation    = "location"
	flagScheduledAt = "scheduled-at"
	flagJobStatus   = "status"
	flagCustomerID  = "customer-id"
	flagReason      = "reason"
	flagJobLimit    = "limit"
	flagJobOffset   = "offset"
)

func init() {
	jobsCmd.AddCommand(createJobCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(acceptBidCmd)
	jobsCmd.AddCommand(completeJobCmd)
	jobsCmd.AddCommand(confirmJobCmd)
	jobsCmd.AddCommand(disputeJobCmd)
	jobsCmd.AddCommand(cancelJobCmd)
	jobsCmd.AddCommand(workerCancelJobCmd)

	createJobCmd.Flags().StringP(flagTitle, "t", "", "Job title")
	createJobCmd.Flags().StringP(flagDescription, "d", "", "Job description")
	createJobCmd.Flags().Float64P(flagBudget, "b", 0, "Customer budget")
	createJobCmd.Flags().StringP(flagLocation, "l", "", "Job location")
	createJobCmd.Flags().String(flagScheduledAt, "", "Scheduled date (RFC3339)")
	_ = createJobCmd.MarkFlagRequired(flagTitle)
	_ = createJobCmd.MarkFlagRequired(flagBudget)
	_ = createJobCmd.MarkFlagRequired(flagScheduledAt)

	getJobCmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
	_ = getJobCmd.MarkFlagRequired(flagJobID)

	listJobsCmd.Flags().String(flagJobStatus, "", "Filter jobs by status (e.g. pending, assigned)")
	listJobsCmd.Flags().Uint(flagCustomerID, 0, "Filter jobs by customer ID")
	listJobsCmd.Flags().Int(flagJobLimit, 0, "Limit the number of jobs returned")
	listJobsCmd.Flags().Int(flagJobOffset, 0, "Offset for paginating jobs")

	acceptBidCmd.Flags().UintP(flagJobID, "i", 0, "Job ID")
	acceptBidCmd.Flags().Uint(flagBidID, 0, "Bid ID to accept")
	_ = acceptBidCmd.MarkFlagRequired(flagJobID)
	_ = acceptBidCmd.MarkFlagRequired(flagBidID)

	for _, c := range []*cobra.Command{completeJobCmd, confirmJobCmd} {
		c.Flags().UintP(flagJobID, "i", 0, "Job ID")
		_ = c.MarkFlagRequired(flagJobID)
	}
	for _, c := range []*cobra.Command{disputeJobCmd, cancelJobCmd, workerCancelJobCmd} {
		c.Flags().UintP(flagJobID, "i", 0, "Job ID")
		c.Flags().String(flagReason, "", "Free-text reason")
		_ = c.MarkFlagRequired(flagJobID)
	}
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage jobs and their lifecycle",
}

var createJobCmd = &cobra.Command{
	Use:   "create",
	Short: "Post a new job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString(flagTitle)
		description, _ := cmd.Flags().GetString(flagDescription)
		budget, _ := cmd.Flags().GetFloat64(flagBudget)
		location, _ := cmd.Flags().GetString(flagLocation)
		rawScheduled, _ := cmd.Flags().GetString(flagScheduledAt)

		scheduledAt, err := time.Parse(time.RFC3339, rawScheduled)
		if err != nil {
			return fmt.Errorf("invalid scheduled-at format (expected RFC3339): %w", err)
		}

		resp, err := doRequest(http.MethodPost, "/api/v1/jobs", handlers.CreateJobRequest{
			Title:       title,
			Description: description,
			Budget:      budget,
			Location:    location,
			ScheduledAt: scheduledAt,
		})
		if err != nil {
			return fmt.Errorf("error creating job: %w", err)
		}
		return printData(resp.Data)
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific job by its ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, err := cmd.Flags().GetUint(flagJobID)
		if err != nil {
			return fmt.Errorf("error getting job ID flag: %w", err)
		}
		if jobID == 0 {
			return fmt.Errorf("job ID must be a positive number")
		}

		resp, err := doRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d", jobID), nil)
		if err != nil {
			return fmt.Errorf("error getting job: %w", err)
		}
		return printData(resp.Data)
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, filtered by status or customer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString(flagJobStatus)
		customerID, _ := cmd.Flags().GetUint(flagCustomerID)
		limit, _ := cmd.Flags().GetInt(flagJobLimit)
		offset, _ := cmd.Flags().GetInt(flagJobOffset)

		path := fmt.Sprintf("/api/v1/jobs?limit=%d&offset=%d", limit, offset)
		if status != "" {
			path += "&status=" + status
		}
		if customerID != 0 {
			path += fmt.Sprintf("&customer_id=%d", customerID)
		}

		resp, err := doRequest(http.MethodGet, path, nil)
		if err != nil {
			return fmt.Errorf("error listing jobs: %w", err)
		}
		return printData(resp.Data)
	},
}

var acceptBidCmd = &cobra.Command{
	Use:   "accept-bid",
	Short: "Accept a bid on a job, capturing the escrow hold",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		bidID, _ := cmd.Flags().GetUint(flagBidID)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%d/bids/%d/accept", jobID, bidID), nil)
		if err != nil {
			return fmt.Errorf("error accepting bid: %w", err)
		}
		return printData(resp.Data)
	},
}

var completeJobCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark an assigned job done (worker)",
	RunE:  jobActionRunE("complete", "error completing job"),
}

var confirmJobCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Confirm a worker-completed job (customer)",
	RunE:  jobActionRunE("confirm", "error confirming job"),
}

var disputeJobCmd = &cobra.Command{
	Use:   "dispute",
	Short: "File a dispute against a worker-completed job (customer)",
	RunE:  jobReasonActionRunE("dispute", "error filing dispute"),
}

var cancelJobCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a job (customer or admin)",
	RunE:  jobReasonActionRunE("cancel", "error cancelling job"),
}

var workerCancelJobCmd = &cobra.Command{
	Use:   "worker-cancel",
	Short: "Cancel out of an assigned job (worker)",
	RunE:  jobReasonActionRunE("worker-cancel", "error cancelling job"),
}

// jobActionRunE builds a RunE for lifecycle actions that take only a job ID
func jobActionRunE(action, errPrefix string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		if jobID == 0 {
			return fmt.Errorf("job ID must be a positive number")
		}

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%d/%s", jobID, action), nil)
		if err != nil {
			return fmt.Errorf("%s: %w", errPrefix, err)
		}
		return printData(resp.Data)
	}
}

// jobReasonActionRunE builds a RunE for lifecycle actions that carry a reason
func jobReasonActionRunE(action, errPrefix string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		jobID, _ := cmd.Flags().GetUint(flagJobID)
		if jobID == 0 {
			return fmt.Errorf("job ID must be a positive number")
		}
		reason, _ := cmd.Flags().GetString(flagReason)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%d/%s", jobID, action), map[string]string{"reason": reason})
		if err != nil {
			return fmt.Errorf("%s: %w", errPrefix, err)
		}
		return printData(resp.Data)
	}
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}
