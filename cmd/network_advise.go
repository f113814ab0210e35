package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/advisor"
	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/PolarWolf314/refuge/internal/utils"
	"github.com/spf13/cobra"
)

var networkAdviseJSON bool

func init() {
	networkAdviseCmd.Flags().BoolVar(&networkAdviseJSON, "json", false, "output in JSON format")
}

// AdviceResult is the JSON shape of network advise.
type AdviceResult struct {
	Level   string `json:"level"`
	Kind    string `json:"kind"`
	Network string `json:"network,omitempty"`
	Trusted bool   `json:"trusted"`
	Message string `json:"message"`
}

var networkAdviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Rate the privacy of the network this device is on",
	Long: `Looks at the active network and rates it.

Public Wi-Fi is recognized by its name. Networks you mark as trusted are
always rated good. The network name is only checked on this device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting network advise command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		status, err := a.orch.AdviseNetwork(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("failed to check network: %v", err)
		}

		if networkAdviseJSON {
			output, err := json.MarshalIndent(AdviceResult{
				Level:   status.Level.String(),
				Kind:    status.Kind.String(),
				Network: status.Identifier,
				Trusted: status.Trusted,
				Message: status.Message,
			}, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to marshal advice to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		fmt.Println(formatAdvice(status))
		return nil
	},
}

func formatAdvice(status advisor.NetworkPrivacyStatus) string {
	level := status.Level.String()
	msg := ui.ForLevel(level).Sprint(level) + " " + status.Message
	if status.Identifier != "" {
		name := utils.MaskIdentifier(status.Identifier)
		if status.Trusted {
			name += " " + ui.Muted.Sprint("trusted")
		}
		msg += fmt.Sprintf("\n  %-9s %s", "Network:", name)
	}
	return msg
}

var networkTrustCmd = &cobra.Command{
	Use:   "trust <network>",
	Short: "Mark a network as trusted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.TrustNetwork(args[0]); err != nil {
			return Logger.ErrorfAndReturn("failed to trust network: %v", err)
		}

		fmt.Println(successMessage("%s is now trusted", ui.Highlight.Sprint(args[0])))
		return nil
	},
}

var networkUntrustCmd = &cobra.Command{
	Use:   "untrust <network>",
	Short: "Stop trusting a network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.UntrustNetwork(args[0]); err != nil {
			return Logger.ErrorfAndReturn("failed to untrust network: %v", err)
		}

		fmt.Println(successMessage("%s is no longer trusted", ui.Highlight.Sprint(args[0])))
		return nil
	},
}

var networkTrustedCmd = &cobra.Command{
	Use:   "trusted",
	Short: "List trusted networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		names, err := a.orch.TrustedNetworks()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to list trusted networks: %v", err)
		}

		if len(names) == 0 {
			fmt.Println(ui.Muted.Sprint("no trusted networks"))
			return nil
		}
		fmt.Print("Trusted networks:" + utils.FormatList(names))
		return nil
	},
}
