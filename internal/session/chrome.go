package session

import (
	"os/exec"

	"github.com/threadsnap/threadsnap/internal/logger"
)

// Chrome/Chromium binary names and install locations worth probing.
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/snap/bin/chromium",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
}

// findChromePath locates a Chrome/Chromium binary, trying PATH lookup first
// and then common install locations. Returns empty if none is found, in
// which case chromedp falls back to its own lookup.
func findChromePath() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found - browser fetch mode may not work")
	return ""
}
