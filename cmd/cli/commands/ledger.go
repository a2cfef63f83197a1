package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// Ledger flag names
const (
	flagEntryID = "id"
)

func init() {
	ledgerCmd.AddCommand(blockEntryCmd)
	ledgerCmd.AddCommand(unblockEntryCmd)

	for _, c := range []*cobra.Command{blockEntryCmd, unblockEntryCmd} {
		c.Flags().UintP(flagEntryID, "i", 0, "Ledger entry ID")
		_ = c.MarkFlagRequired(flagEntryID)
	}
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage ledger entry holds (admin)",
}

var blockEntryCmd = &cobra.Command{
	Use:   "block",
	Short: "Block a ledger entry from maturing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entryID, _ := cmd.Flags().GetUint(flagEntryID)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/ledger/%d/block", entryID), nil)
		if err != nil {
			return fmt.Errorf("error blocking ledger entry: %w", err)
		}
		return printData(resp.Data)
	},
}

var unblockEntryCmd = &cobra.Command{
	Use:   "unblock",
	Short: "Unblock a ledger entry so it can mature",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entryID, _ := cmd.Flags().GetUint(flagEntryID)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/admin/ledger/%d/unblock", entryID), nil)
		if err != nil {
			return fmt.Errorf("error unblocking ledger entry: %w", err)
		}
		return printData(resp.Data)
	},
}

// GetLedgerCmd returns the ledger command
func GetLedgerCmd() *cobra.Command {
	return ledgerCmd
}
