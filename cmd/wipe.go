package cmd

import (
	"fmt"
	"strings"

	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/PolarWolf314/refuge/internal/utils"
	"github.com/spf13/cobra"
)

var wipeYes bool

func init() {
	WipeCmd.Flags().BoolVarP(&wipeYes, "yes", "y", false, "skip the confirmation prompt")
	addLoggingFlags(WipeCmd)
}

func resetWipeCommandState() {
	wipeYes = false
}

// WipeCmd erases all local data on demand.
var WipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Erase all local data now",
	Long: `Erases the PIN, encryption key, settings, cached resources, history and
activity journal from this device. This cannot be undone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting wipe command")

		if !wipeYes {
			fmt.Println(warningMessage("This erases everything Refuge stored on this device"))
			fmt.Print("Type " + ui.Code.Sprint("wipe") + " to continue: ")
			answer, err := utils.ReadLine(cmd.InOrStdin())
			if err != nil || strings.TrimSpace(answer) != "wipe" {
				fmt.Println(ui.Muted.Sprint("cancelled"))
				return nil
			}
		}

		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.orch.ExecutePanicWipe(cmd.Context()); err != nil {
			fmt.Println(warningMessage("Some data could not be erased"))
			return Logger.ErrorfAndReturn("wipe finished with errors: %v", err)
		}

		fmt.Println(successMessage("All local data has been erased"))
		return nil
	},
}
