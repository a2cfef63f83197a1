package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
)

// Bid flag names
const (
	flagBidJobID   = "job-id"
	flagBidPrice   = "price"
	flagBidMessage = "message"
	flagNewPrice   = "new-price"
	flagAccept     = "accept"
)

func init() {
	bidsCmd.AddCommand(submitBidCmd)
	bidsCmd.AddCommand(listBidsCmd)
	bidsCmd.AddCommand(requestChangeCmd)
	bidsCmd.AddCommand(cancelChangeCmd)
	bidsCmd.AddCommand(respondChangeCmd)
	bidsCmd.AddCommand(withdrawBidCmd)

	submitBidCmd.Flags().UintP(flagBidJobID, "j", 0, "Job ID to bid on")
	submitBidCmd.Flags().Float64P(flagBidPrice, "p", 0, "Offered price")
	submitBidCmd.Flags().StringP(flagBidMessage, "m", "", "Message to the customer")
	_ = submitBidCmd.MarkFlagRequired(flagBidJobID)
	_ = submitBidCmd.MarkFlagRequired(flagBidPrice)

	listBidsCmd.Flags().UintP(flagBidJobID, "j", 0, "Job ID")
	_ = listBidsCmd.MarkFlagRequired(flagBidJobID)

	requestChangeCmd.Flags().UintP(flagBidID, "i", 0, "Bid ID")
	requestChangeCmd.Flags().Float64(flagNewPrice, 0, "Proposed new price")
	requestChangeCmd.Flags().StringP(flagBidMessage, "m", "", "Message to the customer")
	_ = requestChangeCmd.MarkFlagRequired(flagBidID)
	_ = requestChangeCmd.MarkFlagRequired(flagNewPrice)

	cancelChangeCmd.Flags().UintP(flagBidID, "i", 0, "Bid ID")
	_ = cancelChangeCmd.MarkFlagRequired(flagBidID)

	respondChangeCmd.Flags().UintP(flagBidID, "i", 0, "Bid ID")
	respondChangeCmd.Flags().Bool(flagAccept, false, "Accept the proposed price")
	_ = respondChangeCmd.MarkFlagRequired(flagBidID)

	withdrawBidCmd.Flags().UintP(flagBidID, "i", 0, "Bid ID")
	_ = withdrawBidCmd.MarkFlagRequired(flagBidID)
}

var bidsCmd = &cobra.Command{
	Use:   "bids",
	Short: "Manage bids and price change requests",
}

var submitBidCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a bid on a job (worker)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		jobID, _ := cmd.Flags().GetUint(flagBidJobID)
		price, _ := cmd.Flags().GetFloat64(flagBidPrice)
		message, _ := cmd.Flags().GetString(flagBidMessage)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/jobs/%d/bids", jobID), handlers.SubmitBidRequest{
			Price:   price,
			Message: message,
		})
		if err != nil {
			return fmt.Errorf("error submitting bid: %w", err)
		}
		return printData(resp.Data)
	},
}

var listBidsCmd = &cobra.Command{
	Use:   "list",
	Short: "List bids on a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetUint(flagBidJobID)
		if jobID == 0 {
			return fmt.Errorf("job ID must be a positive number")
		}

		resp, err := doRequest(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d/bids", jobID), nil)
		if err != nil {
			return fmt.Errorf("error listing bids: %w", err)
		}
		return printData(resp.Data)
	},
}

var requestChangeCmd = &cobra.Command{
	Use:   "request-change",
	Short: "Propose a new price on a pending bid (worker)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		bidID, _ := cmd.Flags().GetUint(flagBidID)
		newPrice, _ := cmd.Flags().GetFloat64(flagNewPrice)
		message, _ := cmd.Flags().GetString(flagBidMessage)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/bids/%d/change", bidID), handlers.ChangeRequestBody{
			NewPrice: newPrice,
			Message:  message,
		})
		if err != nil {
			return fmt.Errorf("error requesting price change: %w", err)
		}
		return printData(resp.Data)
	},
}

var cancelChangeCmd = &cobra.Command{
	Use:   "cancel-change",
	Short: "Cancel a pending price change request (worker)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		bidID, _ := cmd.Flags().GetUint(flagBidID)

		resp, err := doRequest(http.MethodDelete, fmt.Sprintf("/api/v1/bids/%d/change", bidID), nil)
		if err != nil {
			return fmt.Errorf("error cancelling price change: %w", err)
		}
		return printData(resp.Data)
	},
}

var respondChangeCmd = &cobra.Command{
	Use:   "respond-change",
	Short: "Accept or reject a pending price change request (customer)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		bidID, _ := cmd.Flags().GetUint(flagBidID)
		accept, _ := cmd.Flags().GetBool(flagAccept)

		resp, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/bids/%d/change/respond", bidID), handlers.ChangeResponseBody{
			Accept: accept,
		})
		if err != nil {
			return fmt.Errorf("error responding to price change: %w", err)
		}
		return printData(resp.Data)
	},
}

var withdrawBidCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw a pending bid (worker)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireActorID(); err != nil {
			return err
		}
		bidID, _ := cmd.Flags().GetUint(flagBidID)

		if _, err := doRequest(http.MethodPost, fmt.Sprintf("/api/v1/bids/%d/withdraw", bidID), nil); err != nil {
			return fmt.Errorf("error withdrawing bid: %w", err)
		}
		fmt.Printf("Bid ID %d withdrawn successfully\n", bidID)
		return nil
	},
}

// GetBidsCmd returns the bids command
func GetBidsCmd() *cobra.Command {
	return bidsCmd
}
