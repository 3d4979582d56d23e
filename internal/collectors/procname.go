package collectors

import (
	"path/filepath"
	"strings"
)

// CleanProcessName normalizes a raw process identifier so every ranking
// tier reports the same name for the same program: the leading path and
// trailing arguments are stripped, and an app-bundle suffix is removed.
//
//	"/usr/bin/top -a -b"       -> "top"
//	"/Applications/Xcode.app"  -> "Xcode"
func CleanProcessName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return name
	}

	// Drop arguments from a full command line. Bare names keep their
	// spaces ("Google Chrome Helper" is a name, not an invocation).
	if strings.HasPrefix(name, "/") {
		if i := strings.IndexByte(name, ' '); i >= 0 {
			name = name[:i]
		}
	}

	name = filepath.Base(name)
	name = strings.TrimSuffix(name, ".app")
	return name
}
