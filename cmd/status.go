package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/spf13/cobra"
)

var statusJSONOutput bool

func init() {
	StatusCmd.Flags().BoolVar(&statusJSONOutput, "json", false, "output in JSON format")
	addLoggingFlags(StatusCmd)
}

func resetStatusCommandState() {
	statusJSONOutput = false
}

// StatusResult is the JSON shape of status.
type StatusResult struct {
	PinEnabled         bool   `json:"pin_enabled"`
	EncryptionEnabled  bool   `json:"encryption_enabled"`
	Mode               string `json:"mode"`
	EffectiveMode      string `json:"effective_mode,omitempty"`
	Degraded           bool   `json:"degraded"`
	CensorshipDetected bool   `json:"censorship_detected"`
	RouteError         string `json:"route_error,omitempty"`
	NetworkLevel       string `json:"network_level,omitempty"`
	NetworkMessage     string `json:"network_message,omitempty"`
}

// StatusCmd prints a combined privacy overview.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show an overview of privacy protections",
	Long: `Shows whether a PIN and encryption are on, which route the directory is
reached over and how private the current network is.

Use --json for machine-readable output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		spinner, cleanup := startSpinner("Checking protections...")
		snapshot, err := a.orch.PrivacyStatus(cmd.Context())
		if err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Could not read privacy status"
			cleanup()
			return Logger.ErrorfAndReturn("failed to read privacy status: %v", err)
		}
		cleanup()

		status := &StatusResult{
			PinEnabled:        snapshot.PinEnabled,
			EncryptionEnabled: snapshot.EncryptionEnabled,
			Mode:              snapshot.Mode.String(),
		}
		if snapshot.ResolveErr != nil {
			status.RouteError = snapshot.ResolveErr.Error()
		} else {
			status.EffectiveMode = snapshot.Resolution.Effective.String()
			status.Degraded = snapshot.Resolution.Degraded
			status.CensorshipDetected = snapshot.Resolution.CensorshipDetected
		}
		if snapshot.NetworkErr == nil {
			status.NetworkLevel = snapshot.Network.Level.String()
			status.NetworkMessage = snapshot.Network.Message
		}

		if statusJSONOutput {
			output, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to marshal status to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		printStatus(status)
		return nil
	},
}

func printStatus(s *StatusResult) {
	fmt.Println(ui.Info.Sprint("Privacy status"))
	fmt.Println()
	fmt.Printf("  %-12s %s\n", "PIN:", ui.Mark(s.PinEnabled))
	fmt.Printf("  %-12s %s\n", "Encryption:", ui.Mark(s.EncryptionEnabled))

	route := ui.Highlight.Sprint(s.Mode)
	switch {
	case s.RouteError != "":
		route += " " + ui.Error.Sprint(s.RouteError)
	case s.Degraded || s.CensorshipDetected:
		route += " → " + ui.Warning.Sprint(s.EffectiveMode)
	}
	fmt.Printf("  %-12s %s\n", "Route:", route)

	if s.NetworkLevel != "" {
		fmt.Printf("  %-12s %s\n", "Network:", ui.ForLevel(s.NetworkLevel).Sprint(s.NetworkLevel))
		fmt.Println()
		fmt.Println(hintMessage("%s", s.NetworkMessage))
	}
}
