// Package commands implements the gigbridge CLI subcommands
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gigbridge/gigbridge/internal/api/v1/handlers"
	"github.com/gigbridge/gigbridge/internal/db/models"
)

// global flag names
const (
	flagServerAddress = "server-address"
	flagActorID       = "actor-id"
	flagActorRole     = "actor-role"
)

// environment variable names
const (
	envServerAddress = "GIGBRIDGE_SERVER_ADDRESS"
)

// DefaultBaseURL is the API address used when neither the flag nor the
// environment variable is set
const DefaultBaseURL = "http://localhost:8080"

var (
	serverAddress string
	actorID       uint
	actorRole     string

	httpClient = &http.Client{Timeout: 30 * time.Second}
)

func init() {
	// PersistentPreRunE handles the env var override for the address.
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", DefaultBaseURL, "Address of the gigbridge API server (env: GIGBRIDGE_SERVER_ADDRESS)")
	RootCmd.PersistentFlags().UintVarP(&actorID, flagActorID, "a", 0, "Acting user ID, sent as X-Actor-ID")
	RootCmd.PersistentFlags().StringVarP(&actorRole, flagActorRole, "r", string(models.ActorCustomer), "Acting user role (customer, worker, admin)")

	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetBidsCmd())
	RootCmd.AddCommand(GetWorkersCmd())
	RootCmd.AddCommand(GetLedgerCmd())
	RootCmd.AddCommand(GetAdminCmd())
	RootCmd.AddCommand(GetSweepCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gigbridge",
	Short: "gigbridge CLI - A command line interface for the gigbridge API",
	Long: `gigbridge CLI is a command line tool for driving the job, bid and
settlement lifecycle through the gigbridge API.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}
		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// doRequest performs an API call and decodes the response envelope. A non-nil
// body is sent as JSON. Error slugs become CLI errors carrying the server's
// message and, when present, the entity's current status.
func doRequest(method, path string, body interface{}) (*handlers.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, serverAddress+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if actorID != 0 {
		req.Header.Set("X-Actor-ID", fmt.Sprintf("%d", actorID))
	}
	req.Header.Set("X-Actor-Role", actorRole)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope handlers.Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if envelope.Slug != handlers.SuccessSlug {
		if envelope.Status != "" {
			return nil, fmt.Errorf("%s (current status: %s)", envelope.Error, envelope.Status)
		}
		return nil, fmt.Errorf("%s", envelope.Error)
	}
	return &envelope, nil
}

// printData pretty-prints the data portion of a response envelope
func printData(data interface{}) error {
	prettyJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	fmt.Println(string(prettyJSON))
	return nil
}

// requireActorID ensures the --actor-id flag was provided
func requireActorID() error {
	if actorID == 0 {
		return fmt.Errorf("required flag(s) \"%s\" not set", flagActorID)
	}
	return nil
}
