package picker

import (
	"errors"
	"os/exec"
	"runtime"
)

// ErrNoBrowser is returned when the platform has no known URL opener.
var ErrNoBrowser = errors.New("no browser opener for this platform")

// OpenURL opens url in the default browser without waiting for it.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return ErrNoBrowser
	}
	return cmd.Start()
}
