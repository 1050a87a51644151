package launcher

import (
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// openURL opens url in the default browser.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", url)
	default:
		log.Warn("cannot open URLs on this platform", "os", runtime.GOOS)
		return nil
	}
	return errors.Wrapf(cmd.Start(), "opening %s", url)
}
