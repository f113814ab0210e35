package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/refuge/cmd"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "refuge",
	Short: "Refuge - private access to a support directory.",
	Long: `Refuge keeps a support directory usable on a shared or watched device.

Features:
  - Protect the app with a PIN, with an optional panic wipe
  - Encrypt saved resources and history
  - Reach the directory directly, through a CDN front or over Tor
  - Check whether the current network is safe to use
  - Leave in a hurry with quick exit

Usage:
  refuge <command> [flags]

Run 'refuge help <command>' for more details on a specific command.
`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("Refuge", "small", "cyan", true)
		banner.Print()
		fmt.Println()
		fmt.Println("Run 'refuge --help' to see available commands.")
	},
}

func init() {
	for _, c := range cmd.Commands() {
		rootCmd.AddCommand(c)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
