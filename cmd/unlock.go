package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/spf13/cobra"
)

// UnlockCmd checks the PIN and reports the outcome.
var UnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Check your PIN",
	Long: `Prompts for your PIN and checks it.

Each wrong PIN counts towards the failed-attempt limit. When panic wipe is
on, reaching the limit erases all local data.

Pipe the PIN on stdin to use this from a script:
  echo 372915 | refuge unlock`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting unlock command")

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if a.orch.Unlocked() {
			fmt.Println(successMessage("No PIN is set"))
			fmt.Println(hintMessage("Run %s to protect this device", ui.Code.Sprint("refuge pin set")))
			return nil
		}

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}

		fmt.Println(successMessage("Unlocked"))
		return nil
	},
}

func init() {
	addLoggingFlags(UnlockCmd)
}
