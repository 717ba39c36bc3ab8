// Package cachearchive is an abstraction over the creation and restoration of
// a build artifact cache archive.
package cachearchive

import (
	"archive/tar"
	"errors"
	"fmt"
)

var (
	errMissingSymlinkTarget = errors.New("symlink restoration is delayed")
	errCycleDetected        = errors.New("links in the cache are cyclic")
	errTraversal            = errors.New("tar attempts to write outside of directory")
	errNameMalformed        = errors.New("file name is malformed")
	errNameWindowsUnsafe    = errors.New("file name is not Windows-safe")
	errUnsupportedFileType  = errors.New("attempted to restore unsupported file type")
)

// traversalError reports a name that would resolve outside of the anchor.
func traversalError(name string) error {
	return fmt.Errorf("%w: %s", errTraversal, name)
}

// malformedNameError reports a tar entry name that is not a well-formed
// anchored path.
func malformedNameError(name string) error {
	return fmt.Errorf("%w: %s", errNameMalformed, name)
}

// unsupportedFileTypeError reports a tar entry type that this archive format
// does not restore.
func unsupportedFileTypeError(typeflag byte) error {
	return fmt.Errorf("%w: %s", errUnsupportedFileType, tarTypeName(typeflag))
}

func tarTypeName(typeflag byte) string {
	switch typeflag {
	case tar.TypeLink:
		return "Link"
	case tar.TypeChar:
		return "CharacterDevice"
	case tar.TypeBlock:
		return "BlockDevice"
	case tar.TypeFifo:
		return "Fifo"
	case tar.TypeGNUSparse:
		return "GNUSparseFile"
	case tar.TypeXGlobalHeader:
		return "GlobalExtendedHeader"
	default:
		return fmt.Sprintf("Unknown(%d)", typeflag)
	}
}
