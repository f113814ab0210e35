package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/spf13/cobra"
)

// EncryptionCmd groups at-rest encryption settings.
var EncryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Encrypt saved data on this device",
	Long: `Turns encryption of cached resources and history on or off.

Turning encryption on or off rewrites everything already saved, so nothing
readable is left behind.`,
}

func init() {
	addLoggingFlags(EncryptionCmd)

	EncryptionCmd.AddCommand(encryptionEnableCmd)
	EncryptionCmd.AddCommand(encryptionDisableCmd)
	EncryptionCmd.AddCommand(encryptionStatusCmd)
}

var encryptionEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Encrypt saved data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEncryption(true)
	},
}

var encryptionDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Store saved data without encryption",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEncryption(false)
	},
}

func setEncryption(enable bool) error {
	Logger.Infof("Setting encryption to %t", enable)

	a, err := openApp()
	if err != nil {
		return Logger.ErrorfAndReturn("failed to open local data: %v", err)
	}
	defer a.Close()

	if err := a.requireUnlock(context.Background()); err != nil {
		return err
	}

	if enable {
		err = a.orch.EnableEncryption()
	} else {
		err = a.orch.DisableEncryption()
	}
	if err != nil {
		return Logger.ErrorfAndReturn("failed to update encryption: %v", err)
	}

	fmt.Println(successMessage("Encryption is now %s", ui.OnOff(enable)))
	if !enable {
		fmt.Println(warningMessage("Saved resources and history are readable by anyone with this device"))
	}
	return nil
}

var encryptionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether saved data is encrypted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		enabled, err := a.orch.EncryptionEnabled()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read encryption state: %v", err)
		}

		fmt.Printf("Encryption: %s\n", ui.OnOff(enabled))
		return nil
	},
}
