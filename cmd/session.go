package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/refuge/internal/ui"
	"github.com/PolarWolf314/refuge/internal/utils"
	"github.com/spf13/cobra"
)

// SessionCmd groups quick exit and history.
var SessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Leave quickly and manage history",
}

func init() {
	addLoggingFlags(SessionCmd)

	SessionCmd.AddCommand(quickExitCmd)
	SessionCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)
}

var quickExitCmd = &cobra.Command{
	Use:     "quick-exit",
	Aliases: []string{"exit", "x"},
	Short:   "Clear the screen and open a harmless page",
	Long: `Clears the terminal including scrollback and opens the cover page in the
browser. The cover page is set by session.cover_url in settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.orch.QuickExit(cmd.Context())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently viewed items and searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		h, err := a.orch.History()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load history: %v", err)
		}

		printHistorySection("Recently viewed", h.Recent)
		printHistorySection("Searches", h.Searches)
		return nil
	},
}

func printHistorySection(title string, items []string) {
	if len(items) == 0 {
		fmt.Println(title + ": " + ui.Muted.Sprint("none"))
		return
	}
	fmt.Print(title + ":" + utils.FormatList(items))
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to open local data: %v", err)
		}
		defer a.Close()

		if err := a.requireUnlock(context.Background()); err != nil {
			return err
		}
		if err := a.orch.ClearHistory(); err != nil {
			return Logger.ErrorfAndReturn("failed to clear history: %v", err)
		}

		fmt.Println(successMessage("History cleared"))
		return nil
	},
}
