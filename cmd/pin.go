package cmd

import (
	"fmt"

	"github.com/PolarWolf314/refuge/internal/utils"
	"github.com/spf13/cobra"
)

// PinCmd groups PIN management.
var PinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Manage the app PIN and panic wipe",
	Long: `Provides commands to set, change and remove the PIN, and to configure
the failed-attempt limit and panic wipe.

Examples:
  # Set a PIN for the first time
  refuge pin set

  # Erase everything after 3 wrong PINs
  refuge pin max-attempts 3
  refuge pin panic-wipe on`,
}

func init() {
	addLoggingFlags(PinCmd)

	PinCmd.AddCommand(pinSetCmd)
	PinCmd.AddCommand(pinChangeCmd)
	PinCmd.AddCommand(pinRemoveCmd)
	PinCmd.AddCommand(pinStatusCmd)
	PinCmd.AddCommand(pinPanicWipeCmd)
	PinCmd.AddCommand(pinMaxAttemptsCmd)
}

func resetPinCommandState() {
	pinStatusJSON = false
}

// readNewPin prompts for a PIN and, on a terminal, for a confirmation.
func readNewPin(prompt string) (string, error) {
	pin, err := utils.ReadPIN(prompt)
	if err != nil {
		return "", err
	}
	if !utils.IsTerminal() {
		return pin, nil
	}

	confirm, err := utils.ReadPIN("Confirm PIN: ")
	if err != nil {
		return "", err
	}
	if confirm != pin {
		return "", fmt.Errorf("PINs do not match")
	}
	return pin, nil
}
