package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/spf13/cobra"
)

// CacheCmd saves resources for offline use.
var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Save resources for offline use",
	Long: `Saves resources on this device so they can be read without a connection.
Saved resources are encrypted when encryption is on and erased by a wipe.

Examples:
  # Save a file
  refuge cache put shelters ./shelters.json

  # Read it back
  refuge cache get shelters`,
}

func init() {
	addLoggingFlags(CacheCmd)

	CacheCmd.AddCommand(cachePutCmd)
	CacheCmd.AddCommand(cacheGetCmd)
}

var cachePutCmd = &cobra.Command{
	Use:   "put <name> [file]",
	Short: "Save a file, or stdin when no file is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		// The PIN, when one is needed, is read from stdin before the data.
		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}

		var data []byte
		if len(args) == 2 {
			data, err = os.ReadFile(args[1])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read input: %v", err)
		}

		if err := a.orch.StorePayload(args[0], data); err != nil {
			return Logger.ErrorfAndReturn("failed to save %s: %v", args[0], err)
		}

		fmt.Println(successMessage("Saved %s", ui.Highlight.Sprint(args[0])))
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a saved resource",
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
		data, ok, err := a.orch.LoadPayload(args[0])
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", args[0], err)
		}
		if !ok {
			fmt.Println(ui.Error.Sprint("✗") + " Nothing saved as " + ui.Highlight.Sprint(args[0]))
			return nil
		}

		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
		return nil
	},
}
