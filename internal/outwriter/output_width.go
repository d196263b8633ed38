package outwriter

import (
	"os"

	"github.com/huangsam/cadence/internal/contract"
	"golang.org/x/term"
)

// GetMaxMessageWidth calculates the maximum width for commit messages in table output
// based on terminal width and table configuration.
func GetMaxMessageWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// # + Timestamp + borders/padding
	baseWidth := 40

	available := termWidth - baseWidth
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}
