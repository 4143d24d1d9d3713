package tui

// Color constants for the daylist TUI theme
const (
	// Base Colors
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles and input
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383" // Completed tasks, empty values
	ColorHelpText      = "240"

	// Accent Colors
	ColorAccentMain   = "#007AFF" // Selected row border, logo
	ColorAccentBright = "#5AC8FA" // Headers, highlights

	// State Colors
	ColorError   = "#FF3B30" // Overdue, failures
	ColorSuccess = "#34C759" // Completed
	ColorWarning = "#FF9500" // Due today or tomorrow
)
