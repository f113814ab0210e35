package cmd

import (
	"fmt"

	"github.com/PolarWolf314/refuge/internal/ui"
)

func wipedMessage() string {
	return ui.Error.Sprint("✗") + " Too many failed attempts. All local data has been erased."
}

func failedUnlockMessage(remaining int) string {
	msg := ui.Error.Sprint("✗") + " Incorrect PIN"
	if remaining > 0 {
		msg += " " + ui.Muted.Sprintf("%d attempts remaining", remaining)
	}
	return msg
}

func successMessage(format string, a ...any) string {
	return ui.Success.Sprint("✓") + " " + fmt.Sprintf(format, a...)
}

func hintMessage(format string, a ...any) string {
	return ui.Info.Sprint("→") + " " + fmt.Sprintf(format, a...)
}

func warningMessage(format string, a ...any) string {
	return ui.Warning.Sprint("⚠") + " " + fmt.Sprintf(format, a...)
}
