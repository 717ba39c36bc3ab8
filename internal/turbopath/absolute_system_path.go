package turbopath

import (
	"os"
	"path/filepath"
)

// AbsoluteSystemPath is a root-relative path using system separators.
type AbsoluteSystemPath string

// For interface reasons, we need a way to distinguish between
// Absolute/Anchored/Relative/System/Unix/File paths so we stamp them.
func (AbsoluteSystemPath) absolutePathStamp() {}
func (AbsoluteSystemPath) systemPathStamp()   {}
func (AbsoluteSystemPath) filePathStamp()     {}

// ToString returns a string represenation of this Path.
// Used for interfacing with APIs that require a string.
func (p AbsoluteSystemPath) ToString() string {
	return string(p)
}

// RelativeTo calculates the relative path between two `AbsoluteSystemPath`s.
func (p AbsoluteSystemPath) RelativeTo(basePath AbsoluteSystemPath) (AnchoredSystemPath, error) {
	processed, err := filepath.Rel(basePath.ToString(), p.ToString())
	return AnchoredSystemPath(processed), err
}

// Join appends relative path segments to this AbsoluteSystemPath.
func (p AbsoluteSystemPath) Join(additional ...RelativeSystemPath) AbsoluteSystemPath {
	cast := RelativeSystemPathArray(additional)
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(cast.ToStringArray()...)))
}

// UntypedJoin appends raw path segments to this AbsoluteSystemPath. It exists
// for call sites (tests, CLI argument handling) that haven't yet classified
// their segments into a RelativeSystemPath.
func (p AbsoluteSystemPath) UntypedJoin(additional ...string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(additional...)))
}

// Dir returns the parent directory of this AbsoluteSystemPath.
func (p AbsoluteSystemPath) Dir() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Dir(p.ToString()))
}

// Base returns the last element of this AbsoluteSystemPath.
func (p AbsoluteSystemPath) Base() string {
	return filepath.Base(p.ToString())
}

// Lstat implements os.Lstat for an AbsoluteSystemPath, returning metadata
// about the entry itself rather than what it points to if it is a symlink.
func (p AbsoluteSystemPath) Lstat() (os.FileInfo, error) {
	return os.Lstat(p.ToString())
}

// Stat implements os.Stat for an AbsoluteSystemPath, following symlinks.
func (p AbsoluteSystemPath) Stat() (os.FileInfo, error) {
	return os.Stat(p.ToString())
}

// FileExists returns true if the path exists on disk in any form.
func (p AbsoluteSystemPath) FileExists() bool {
	_, err := p.Lstat()
	return err == nil
}

// DirExists returns true if this path points to an existing directory.
func (p AbsoluteSystemPath) DirExists() bool {
	info, err := p.Lstat()
	return err == nil && info.IsDir()
}

// MkdirAll implements os.MkdirAll for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) MkdirAll(mode os.FileMode) error {
	return os.MkdirAll(p.ToString(), mode)
}

// EnsureDir ensures that the directory containing this path exists.
func (p AbsoluteSystemPath) EnsureDir() error {
	return os.MkdirAll(p.Dir().ToString(), 0775)
}

// Open implements os.Open for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Open() (*os.File, error) {
	return os.Open(p.ToString())
}

// OpenFile implements os.OpenFile for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) OpenFile(flags int, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(p.ToString(), flags, mode)
}

// WriteFile implements os.WriteFile for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) WriteFile(contents []byte, mode os.FileMode) error {
	return os.WriteFile(p.ToString(), contents, mode)
}

// Readlink implements os.Readlink for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Readlink() (string, error) {
	return os.Readlink(p.ToString())
}

// Symlink implements os.Symlink(target, p) for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Symlink(target string) error {
	return os.Symlink(target, p.ToString())
}

// Remove removes the file or empty directory at this path.
func (p AbsoluteSystemPath) Remove() error {
	return os.Remove(p.ToString())
}

// RemoveAll implements os.RemoveAll for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) RemoveAll() error {
	return os.RemoveAll(p.ToString())
}

// ContainsPath returns true if this absolute path is an ancestor of other,
// using purely lexical (not symlink-resolving) comparison.
func (p AbsoluteSystemPath) ContainsPath(other AbsoluteSystemPath) (bool, error) {
	rel, err := filepath.Rel(p.ToString(), other.ToString())
	if err != nil {
		return false, err
	}
	return rel != ".." && !hasDotDotPrefix(rel), nil
}

func hasDotDotPrefix(rel string) bool {
	sentinel := ".." + string(filepath.Separator)
	return len(rel) >= len(sentinel) && rel[:len(sentinel)] == sentinel
}
