package ui

// ForLevel picks the formatter for a privacy rating name.
func ForLevel(level string) Formatter {
	switch level {
	case "good":
		return Success
	case "moderate":
		return Warning
	case "caution":
		return Error
	default:
		return Muted
	}
}

// Mark renders a check for true and a cross for false.
func Mark(ok bool) string {
	if ok {
		return Success.Sprint("✓")
	}
	return Error.Sprint("✗")
}

// OnOff renders a boolean setting.
func OnOff(on bool) string {
	if on {
		return Success.Sprint("on")
	}
	return Muted.Sprint("off")
}
