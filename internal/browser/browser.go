// Package browser opens links in the user's default browser.
package browser

import (
	"os/exec"
	"runtime"
)

// Open launches the platform URL handler and returns once it has been
// started. It does not wait for the browser.
func Open(url string) error {
	return command(runtime.GOOS, url).Start()
}

func command(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("xdg-open", url)
	}
}
