package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/PolarWolf314/refuge/internal/guard"
	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/spf13/cobra"
)

var pinStatusJSON bool

func init() {
	pinStatusCmd.Flags().BoolVar(&pinStatusJSON, "json", false, "output in JSON format")
}

// PinStatusResult is the JSON shape of pin status.
type PinStatusResult struct {
	State          string `json:"state"`
	FailedAttempts int    `json:"failed_attempts"`
	MaxAttempts    int    `json:"max_attempts"`
	PanicWipe      bool   `json:"panic_wipe"`
	CreatedAt      string `json:"created_at,omitempty"`
	Biometric      string `json:"biometric"`
}

var pinStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show PIN and panic wipe settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pin status command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		status, err := a.orch.GuardStatus()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read pin status: %v", err)
		}

		result := PinStatusResult{
			State:          status.State.String(),
			FailedAttempts: status.FailedAttempts,
			MaxAttempts:    status.MaxAttempts,
			PanicWipe:      status.PanicWipe,
			Biometric:      string(status.Biometric.Kind),
		}
		if !status.CreatedAt.IsZero() {
			result.CreatedAt = status.CreatedAt.Format(time.RFC3339)
		}

		if pinStatusJSON {
			output, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to marshal status to JSON: %v", err)
			}
			fmt.Println(string(output))
			return nil
		}

		fmt.Println(ui.Info.Sprint("PIN protection"))
		fmt.Println()
		fmt.Printf("  %-16s %s\n", "PIN:", ui.Mark(status.State == guard.StateArmed))
		fmt.Printf("  %-16s %d of %d\n", "Failed attempts:", status.FailedAttempts, status.MaxAttempts)
		fmt.Printf("  %-16s %s\n", "Panic wipe:", ui.OnOff(status.PanicWipe))
		if result.CreatedAt != "" {
			fmt.Printf("  %-16s %s\n", "Set on:", ui.Muted.Sprint(status.CreatedAt.Format("2006-01-02")))
		}
		return nil
	},
}

var pinPanicWipeCmd = &cobra.Command{
	Use:   "panic-wipe <on|off>",
	Short: "Erase all local data when the attempt limit is reached",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pin panic-wipe command")

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
		if err := a.orch.SetPanicWipe(enabled); err != nil {
			return Logger.ErrorfAndReturn("failed to update panic wipe: %v", err)
		}

		fmt.Println(successMessage("Panic wipe is now %s", ui.OnOff(enabled)))
		if enabled {
			fmt.Println(warningMessage("Reaching the attempt limit will erase everything on this device"))
		}
		return nil
	},
}

var pinMaxAttemptsCmd = &cobra.Command{
	Use:   "max-attempts <n>",
	Short: "Set how many wrong PINs are allowed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pin max-attempts command")

		n, err := strconv.Atoi(args[0])
		if err != nil || n < guard.MinMaxAttempts || n > guard.MaxMaxAttempts {
			return fmt.Errorf("max attempts must be a number between %d and %d", guard.MinMaxAttempts, guard.MaxMaxAttempts)
		}

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.SetMaxAttempts(n); err != nil {
			return Logger.ErrorfAndReturn("failed to update attempt limit: %v", err)
		}

		fmt.Println(successMessage("Attempt limit set to %d", n))
		return nil
	},
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
