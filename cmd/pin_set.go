package cmd

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/refuge/internal/errors"
	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/PolarWolf314/refuge/internal/utils"
	"github.com/spf13/cobra"
)

var pinSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set a PIN for the first time",
	Long: `Sets the PIN that protects this device's data.

A PIN has 6 to 8 digits. Repeated digits, sequences like 123456 and
common choices like birth years are rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pin set command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		pin, err := readNewPin("New PIN: ")
		if err != nil {
			return err
		}

		err = a.orch.SetPin(pin)
		switch {
		case errors.Is(err, kerrors.ErrPinAlreadySet):
			fmt.Println(ui.Error.Sprint("✗") + " A PIN is already set")
			fmt.Println(hintMessage("Run %s to change it", ui.Code.Sprint("refuge pin change")))
			return nil
		case errors.Is(err, kerrors.ErrWeakCredential):
			fmt.Println(ui.Error.Sprint("✗") + " That PIN is too easy to guess")
			fmt.Println(hintMessage("Use 6 to 8 digits without repeats or sequences"))
			return err
		case err != nil:
			return Logger.ErrorfAndReturn("failed to set pin: %v", err)
		}

		fmt.Println(successMessage("PIN set"))
		return nil
	},
}

var pinChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the PIN",
	Long: `Prompts for the current PIN and then a new one. A wrong current PIN
counts as a failed attempt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pin change command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		current, err := utils.ReadPIN("Current PIN: ")
		if err != nil {
			return err
		}
		next, err := readNewPin("New PIN: ")
		if err != nil {
			return err
		}

		err = a.orch.ChangePin(context.Background(), current, next)
		switch {
		case errors.Is(err, kerrors.ErrWipeTriggered):
			fmt.Println(wipedMessage())
			return errWipedNow
		case errors.Is(err, kerrors.ErrAuthenticationFailed):
			fmt.Println(ui.Error.Sprint("✗") + " Current PIN is incorrect")
			return err
		case errors.Is(err, kerrors.ErrNoPin):
			fmt.Println(ui.Error.Sprint("✗") + " No PIN is set")
			fmt.Println(hintMessage("Run %s first", ui.Code.Sprint("refuge pin set")))
			return nil
		case errors.Is(err, kerrors.ErrWeakCredential):
			fmt.Println(ui.Error.Sprint("✗") + " The new PIN is too easy to guess")
			return err
		case err != nil:
			return Logger.ErrorfAndReturn("failed to change pin: %v", err)
		}

		fmt.Println(successMessage("PIN changed"))
		return nil
	},
}

var pinRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the PIN",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting pin remove command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if a.orch.Unlocked() {
			fmt.Println(ui.Warning.Sprint("⚠") + " No PIN is set")
			return nil
		}
		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}

		if err := a.orch.RemovePin(); err != nil {
			return Logger.ErrorfAndReturn("failed to remove pin: %v", err)
		}

		fmt.Println(successMessage("PIN removed"))
		fmt.Println(warningMessage("Anyone with this device can now open the app"))
		return nil
	},
}
