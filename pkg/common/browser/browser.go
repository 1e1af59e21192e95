package browser

import (
	"fmt"
	"os/exec"
)

// openers in preference order; xdg-open covers every mainstream desktop.
var openers = []string{"xdg-open", "x-www-browser", "sensible-browser"}

// Open launches the system browser on url without waiting for it.
func Open(url string) error {
	for _, opener := range openers {
		path, err := exec.LookPath(opener)
		if err != nil {
			continue
		}
		return exec.Command(path, url).Start()
	}
	return fmt.Errorf("no browser opener found (tried %v)", openers)
}
