package outwriter

import (
	"os"

	"github.com/huangsam/brewwater/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth returns the width override, the detected terminal width,
// or 80 when neither is available.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxTextColumnWidth calculates the maximum width of the free-text column
// (effects or preset name) given the fixed columns that share the row.
func GetMaxTextColumnWidth(cfg *contract.Config, fixedWidth int) int {
	// Reserve generous space for table borders, separators, and padding
	available := getTerminalWidth(cfg) - fixedWidth - 20
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
