package delivery

import (
	"os"
	"path/filepath"
)

const bottlesDataRel = ".var/app/com.usebottles.bottles/data/bottles/bottles"

// ResolvePrefix returns the Wine prefix SV2 lives in. A named Bottles bottle
// wins when its flatpak data directory exists, then $WINEPREFIX, then the
// ~/.wine-sv2 default the installer creates.
func ResolvePrefix(bottle string) string {
	home, _ := os.UserHomeDir()
	if bottle != "" {
		p := filepath.Join(home, filepath.FromSlash(bottlesDataRel), bottle)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p
		}
	}
	if wp := os.Getenv("WINEPREFIX"); wp != "" {
		return wp
	}
	return filepath.Join(home, ".wine-sv2")
}
