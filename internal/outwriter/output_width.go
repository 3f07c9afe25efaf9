package outwriter

import (
	"os"

	"github.com/regpulse/regpulse/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth returns the configured width override, the detected terminal
// width, or 80 when neither is available (pipes, CI).
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80
	}
	return detected
}

// getMaxTableTextWidth returns how wide a free-text column may be once fixedWidth
// columns (including borders and padding) have been laid out. The result is
// clamped to 15..70.
func getMaxTableTextWidth(cfg *contract.Config, fixedWidth int) int {
	available := getTerminalWidth(cfg) - fixedWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
