package app

import "path/filepath"

// ResolvePath joins a relative name onto dir. Absolute names and an empty dir
// leave name unchanged.
func ResolvePath(dir, name string) string {
	if dir == "" || name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
