package turbopath

import (
	"os"
	"path/filepath"
)

type readDir func(string) ([]os.DirEntry, error)

var defaultReadDir readDir = os.ReadDir

func hasFile(name, dir string, readdir readDir) (bool, error) {
	files, err := readdir(dir)

	if err != nil {
		return false, err
	}

	for _, f := range files {
		if name == f.Name() {
			return true, nil
		}
	}

	return false, nil
}

func findupFrom(name, dir string, readdir readDir) (string, error) {
	for {
		found, err := hasFile(name, dir, readdir)

		if err != nil {
			return "", err
		}

		if found {
			return filepath.Join(dir, name), nil
		}

		parent := filepath.Dir(dir)

		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// FindupFrom recursively finds a file by walking up parents in the file tree
// starting from a specific directory.
func FindupFrom(name, dir string) (string, error) {
	return findupFrom(name, dir, defaultReadDir)
}

// FindupAnchor walks up from startDir looking for a directory containing
// markerFile, and returns that directory as an AbsoluteSystemPath. It is
// used by the CLI to default a pack/restore anchor to the nearest ancestor
// directory carrying a marker, the same way the caller locates a repository
// root before handing this core an anchor.
func FindupAnchor(markerFile string, startDir AbsoluteSystemPath) (AbsoluteSystemPath, bool, error) {
	found, err := FindupFrom(markerFile, startDir.ToString())
	if err != nil {
		return "", false, err
	}
	if found == "" {
		return "", false, nil
	}
	return AbsoluteSystemPath(filepath.Dir(found)), true, nil
}
