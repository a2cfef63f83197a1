package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
)

// Worker flag names
const (
	flagWorkerID     = "id"
	flagName         = "name"
	flagEmail        = "email"
	flagWorkerStatus = "status"
)

func init() {
	workersCmd.AddCommand(registerWorkerCmd)
	workersCmd.AddCommand(listWorkersCmd)
	workersCmd.AddCommand(getWorkerCmd)
	workersCmd.AddCommand(getWalletCmd)
	workersCmd.AddCommand(approveWorkerCmd)
	workersCmd.AddCommand(resetCancellationsCmd)

	listWorkersCmd.Flags().StringP(flagWorkerStatus, "s", "", "Filter by worker status")

	registerWorkerCmd.Flags().StringP(flagName, "n", "", "Worker name")
	registerWorkerCmd.Flags().StringP(flagEmail, "e", "", "Worker email")
	_ = registerWorkerCmd.MarkFlagRequired(flagName)
	_ = registerWorkerCmd.MarkFlagRequired(flagEmail)

	for _, c := range []*cobra.Command{getWorkerCmd, getWalletCmd, approveWorkerCmd, resetCancellationsCmd} {
		c.Flags().UintP(flagWorkerID, "i", 0, "Worker ID")
		_ = c.MarkFlagRequired(flagWorkerID)
	}
}

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Manage worker accounts and wallets",
}

var registerWorkerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new worker account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString(flagName)
		email, _ := cmd.Flags().GetString(flagEmail)

		resp, err := doRequest(http.MethodPost, "/api/v1/workers", handlers.RegisterWorkerRequest{
			Name:  name,
			Email: email,
		})
		if err != nil {
			return fmt.Errorf("error registering worker: %w", err)
		}
		return printData(resp.Data)
	},
}

var listWorkersCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers, optionally filtered by status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, _ := cmd.Flags().GetString(flagWorkerStatus)

		path := "/api/v1/workers"
		if status != "" {
			path += "?status=" + status
		}

		resp, err := doRequest(http.MethodGet, path, nil)
		if err != nil {
			return fmt.Errorf("error listing workers: %w", err)
		}
		return printData(resp.Data)
	},
}

var getWorkerCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific worker by their ID",
	RunE: func(cmd *cobra.Command, _ []string) error {
		workerID, _ := cmd.Flags().GetUint(flagWorkerID)
		if workerID == 0 {
			return fmt.Errorf("worker ID must be a positive number")
		}

		resp, err := doRequest(http.MethodGet, fmt.Sprintf("/api/v1/workers/%d", workerID), nil)
		if err != nil {
			return fmt.Errorf("error getting worker: %w", err)
		}
		return printData(resp.Data)
	},
}

var getWalletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show a worker's wallet balance and ledger entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		workerID, _ := cmd.Flags().GetUint(flagWorkerID)
		if workerID == 0 {
			return fmt.Errorf("worker ID must be a positive number")
		}

		resp, err := doRequest(http.MethodGet, fmt.Sprintf("/api/v1/workers/%d/wallet", workerID), nil)
		if err != nil {
			return fmt.Errorf("error getting wallet: %w", err)
		}
		return printData(resp.Data)
	},
}

var approveWorkerCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a pending worker account (admin)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		workerID, _ := cmd.Flags().GetUint(flagWorkerID)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/workers/%d/approve", workerID), nil)
		if err != nil {
			return fmt.Errorf("error approving worker: %w", err)
		}
		return printData(resp.Data)
	},
}

var resetCancellationsCmd = &cobra.Command{
	Use:   "reset-cancellations",
	Short: "Clear a worker's cancellation record and restrictions (admin)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		workerID, _ := cmd.Flags().GetUint(flagWorkerID)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/workers/%d/reset-cancellations", workerID), nil)
		if err != nil {
			return fmt.Errorf("error resetting cancellations: %w", err)
		}
		return printData(resp.Data)
	},
}

// GetWorkersCmd returns the workers command
func GetWorkersCmd() *cobra.Command {
	return workersCmd
}
