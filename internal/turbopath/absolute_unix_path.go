package turbopath

import (
	"path"
	"path/filepath"
)

// AbsoluteUnixPath is a root-relative path using Unix `/` separators.
type AbsoluteUnixPath string

// For interface reasons, we need a way to distinguish between
// Absolute/Anchored/Relative/System/Unix/File paths so we stamp them.
func (AbsoluteUnixPath) absolutePathStamp() {}
func (AbsoluteUnixPath) unixPathStamp()     {}
func (AbsoluteUnixPath) filePathStamp()     {}

// ToSystemPath converts an AbsoluteUnixPath to an AbsoluteSystemPath.
func (p AbsoluteUnixPath) ToSystemPath() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.FromSlash(p.ToString()))
}

// ToUnixPath called on an AbsoluteUnixPath returns itself.
// It exists to enable simpler code at call sites.
func (p AbsoluteUnixPath) ToUnixPath() AbsoluteUnixPath {
	return p
}

// Rel calculates the relative path between an AbsoluteUnixPath and another AbsoluteUnixPath.
func (p AbsoluteUnixPath) Rel(basePath AbsoluteUnixPath) (RelativeUnixPath, error) {
	processed, err := filepath.Rel(basePath.ToString(), p.ToString())
	return RelativeUnixPath(processed), err
}

// ToString returns a string represenation of this Path.
// Used for interfacing with APIs that require a string.
func (p AbsoluteUnixPath) ToString() string {
	return string(p)
}

// ToAbsoluteSystemPath converts from AbsoluteUnixPath to AbsoluteSystemPath.
func (p AbsoluteUnixPath) ToAbsoluteSystemPath() AbsoluteSystemPath {
	return p.ToSystemPath()
}

// Join appends relative path segments to this AbsoluteUnixPath.
func (p AbsoluteUnixPath) Join(additional ...RelativeUnixPath) AbsoluteUnixPath {
	cast := RelativeUnixPathArray(additional)
	return AbsoluteUnixPath(path.Join(p.ToString(), path.Join(cast.ToStringArray()...)))
}
