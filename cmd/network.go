package cmd

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/network"
	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/spf13/cobra"
)

// NetworkCmd groups privacy routing and network advice.
var NetworkCmd = &cobra.Command{
	Use:   "network",
	Short: "Choose how the directory is reached and check the current network",
	Long: `Provides commands to pick a privacy mode, check the route that will be
used, and rate the network this device is on.

Privacy modes:
  standard   Direct connection to the directory
  fronting   Hides the destination behind a large CDN
  tor        Routes through a local Tor proxy

Examples:
  # Route through Tor, falling back to fronting if Tor is not running
  refuge network mode tor

  # Show which route will actually be used right now
  refuge network resolve

  # Rate the current Wi-Fi network
  refuge network advise`,
}

func init() {
	addLoggingFlags(NetworkCmd)

	NetworkCmd.AddCommand(networkModeCmd)
	NetworkCmd.AddCommand(networkProviderCmd)
	NetworkCmd.AddCommand(networkAutoDetectCmd)
	NetworkCmd.AddCommand(networkResolveCmd)
	NetworkCmd.AddCommand(networkTestCmd)
	NetworkCmd.AddCommand(networkAdviseCmd)
	NetworkCmd.AddCommand(networkTrustCmd)
	NetworkCmd.AddCommand(networkUntrustCmd)
	NetworkCmd.AddCommand(networkTrustedCmd)
}

func resetNetworkCommandState() {
	networkAdviseJSON = false
}

var networkModeCmd = &cobra.Command{
	Use:   "mode [standard|fronting|tor]",
	Short: "Show or set the privacy mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting network mode command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if len(args) == 0 {
			settings, err := a.orch.NetworkSettings()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read privacy mode: %v", err)
			}
			for _, m := range network.Modes {
				marker := "  "
				if m == settings.Mode {
					marker = ui.Success.Sprint("▸ ")
				}
				fmt.Printf("%s%-10s %s\n", marker, m.String(), ui.Muted.Sprint(m.Description()))
			}
			return nil
		}

		mode, err := network.ParseMode(args[0])
		if err != nil {
			fmt.Println(ui.Error.Sprint("✗") + " Unknown privacy mode " + ui.Highlight.Sprint(args[0]))
			return err
		}

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.SetPrivacyMode(mode); err != nil {
			return Logger.ErrorfAndReturn("failed to set privacy mode: %v", err)
		}

		fmt.Println(successMessage("Privacy mode set to %s", ui.Highlight.Sprint(mode.String())))
		if mode == network.ModeTor {
			fmt.Println(hintMessage("Make sure Tor is running, then check with %s", ui.Code.Sprint("refuge network resolve")))
		}
		return nil
	},
}

var networkProviderCmd = &cobra.Command{
	Use:   "provider [cloudflare|fastly|azure]",
	Short: "Show or set the CDN used for fronting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting network provider command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if len(args) == 0 {
			settings, err := a.orch.NetworkSettings()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read provider: %v", err)
			}
			fmt.Printf("CDN provider: %s\n", ui.Highlight.Sprint(settings.Provider.String()))
			return nil
		}

		p, err := network.ParseProvider(args[0])
		if err != nil {
			fmt.Println(ui.Error.Sprint("✗") + " Unknown provider " + ui.Highlight.Sprint(args[0]))
			return err
		}

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.SetProvider(p); err != nil {
			return Logger.ErrorfAndReturn("failed to set provider: %v", err)
		}

		fmt.Println(successMessage("CDN provider set to %s", ui.Highlight.Sprint(p.String())))
		return nil
	},
}

var networkAutoDetectCmd = &cobra.Command{
	Use:   "autodetect <on|off>",
	Short: "Switch to fronting when the direct route looks blocked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.SetAutoDetect(enabled); err != nil {
			return Logger.ErrorfAndReturn("failed to update censorship detection: %v", err)
		}

		fmt.Println(successMessage("Censorship detection is now %s", ui.OnOff(enabled)))
		return nil
	},
}

var networkResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the route the next request will take",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting network resolve command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		spinner, cleanup := startSpinner("Checking routes...")
		defer cleanup()

		res, err := a.orch.Resolve(cmd.Context())
		if errors.Is(err, kerrors.ErrProxyUnavailable) {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Tor is not reachable and strict Tor mode is on\n" +
				hintMessage("Start Tor or turn off %s in settings", ui.Code.Sprint("tor_strict"))
			return err
		}
		if err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Could not resolve a route"
			return Logger.ErrorfAndReturn("failed to resolve route: %v", err)
		}

		spinner.FinalMSG = formatResolution(res)
		return nil
	},
}

func formatResolution(res *network.Resolution) string {
	msg := ""
	switch {
	case res.Degraded:
		msg += warningMessage("Using %s instead of %s", ui.Highlight.Sprint(res.Effective.String()), ui.Highlight.Sprint(res.Requested.String())) + "\n"
	case res.CensorshipDetected:
		msg += warningMessage("The direct route looks blocked, using %s", ui.Highlight.Sprint(res.Effective.String())) + "\n"
	default:
		msg += successMessage("Using %s", ui.Highlight.Sprint(res.Effective.String())) + "\n"
	}
	msg += fmt.Sprintf("  %-10s %s\n", "Endpoint:", ui.Path.Sprint(res.BaseURL))
	if res.Effective == network.ModeFronting {
		msg += fmt.Sprintf("  %-10s %s %s\n", "Via:", ui.Highlight.Sprint(res.Provider.String()), ui.Muted.Sprint(res.Transport.FrontDomain))
	}
	if res.Status != "" {
		msg += "  " + ui.Muted.Sprint(res.Status)
	}
	return msg
}

var networkTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send one health check through the current route",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting network test command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		spinner, cleanup := startSpinner("Testing connection...")
		defer cleanup()

		report, err := a.orch.TestConnection(cmd.Context())
		if err != nil {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " Connection test failed"
			return Logger.ErrorfAndReturn("failed to test connection: %v", err)
		}

		if !report.Success {
			spinner.FinalMSG = ui.Error.Sprint("✗") + " " + report.Message
			return nil
		}

		msg := successMessage("Connected over %s in %dms", ui.Highlight.Sprint(report.Mode.String()), report.LatencyMs)
		if report.Degraded {
			msg += "\n" + warningMessage("Tor was not reachable, fronting was used instead")
		}
		spinner.FinalMSG = msg
		return nil
	},
}
