package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a settlement sweep pass immediately (admin)",
	RunE: func(_ *cobra.Command, _ []string) error {
		resp, err := doRequest(http.MethodPost, "/api/v1/admin/settlement/sweep", nil)
		if err != nil {
			return fmt.Errorf("error running sweep: %w", err)
		}
		return printData(resp.Data)
	},
}

// GetSweepCmd returns the sweep command
func GetSweepCmd() *cobra.Command {
	return sweepCmd
}
