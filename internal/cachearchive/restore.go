package cachearchive

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/nightlyone/lockfile"

	"github.com/moby/sys/sequential"
	"github.com/tomheaton/turbo/internal/turbopath"
)

// Open returns an existing Archive at the specified path, ready for Restore.
// Compression is inferred from the path's extension: a ".zst" suffix means
// the tar stream is zstd-compressed, anything else means it is a raw tar.
func Open(path turbopath.AbsoluteSystemPath) (*Archive, error) {
	handle, err := sequential.OpenFile(path.ToString(), os.O_RDONLY, 0777)
	if err != nil {
		return nil, err
	}

	return &Archive{
		Path:       path,
		handle:     handle,
		compressed: strings.HasSuffix(path.ToString(), ".zst"),
	}, nil
}

// OpenRaw wraps an already-open byte source (not necessarily a file on
// disk) as an Archive ready for Restore/List, with compression specified
// explicitly rather than inferred from a path extension.
func OpenRaw(r io.Reader, compressed bool) *Archive {
	return &Archive{
		reader:     r,
		compressed: compressed,
	}
}

// lockFileName is the advisory lock dropped in an anchor while a restore is
// in flight. It is advisory only: nothing in this package inspects it other
// than Restore itself. A restore into the same anchor fails fast with
// ErrConcurrentRestore while the process recorded in the lock is still
// running; a lock left behind by a process that has exited is reclaimed.
const lockFileName = ".turbo-cache-restore.lock"

// ErrConcurrentRestore is returned when another restore already holds the
// advisory lock on the anchor.
var ErrConcurrentRestore = errors.New("another restore is already in progress for this anchor")

// Restore extracts an archive to a specified disk location.
func (a *Archive) Restore(anchor turbopath.AbsoluteSystemPath) (_ []turbopath.AnchoredSystemPath, err error) {
	restorePointErr := anchor.MkdirAll(0755)
	if restorePointErr != nil {
		return nil, restorePointErr
	}

	lock, lockErr := lockfile.New(anchor.UntypedJoin(lockFileName).ToString())
	if lockErr != nil {
		return nil, lockErr
	}
	if err := lock.TryLock(); err != nil {
		return nil, ErrConcurrentRestore
	}
	defer func() { _ = lock.Unlock() }()
	defer func() { _ = anchor.UntypedJoin(lockFileName).Remove() }()

	var tr *tar.Reader

	// We're reading a tar, possibly wrapped in zstd.
	if a.compressed {
		zr := zstd.NewReader(a.source())

		// The `Close` function for compression effectively just returns the singular
		// error field on the decompressor instance. This is extremely unlikely to be
		// set without triggering one of the numerous other errors, but we should still
		// handle that possible edge case.
		defer func() {
			if closeErr := zr.Close(); err == nil {
				err = closeErr
			}
		}()
		tr = tar.NewReader(zr)
	} else {
		tr = tar.NewReader(a.source())
	}

	// On first attempt to restore it's possible that a link target doesn't exist.
	// Save them and topsort them.
	var symlinks []*tar.Header

	restored := make([]turbopath.AnchoredSystemPath, 0)

	// We're going to make the following two assumptions here for "fast" path restoration:
	// - All directories are enumerated in the archive.
	// - The contents of the archive are enumerated depth-first.
	//
	// This allows us to avoid:
	// - Attempts at recursive creation of directories.
	// - Repetitive `lstat` on restore of a file.
	//
	// Violating these assumptions won't cause things to break but we're only going to maintain
	// an `lstat` cache for the current tree. If you violate these assumptions and the current
	// cache does not apply for your path, it will clobber and re-start from the common
	// shared prefix.
	dirCache := &cachedDirTree{
		anchorAtDepth: []turbopath.AbsoluteSystemPath{anchor},
	}

	for {
		header, trErr := tr.Next()
		if trErr == io.EOF {
			// The end, time to restore any missing links.
			symlinksRestored, symlinksErr := topologicallyRestoreSymlinks(dirCache, anchor, symlinks)
			restored = append(restored, symlinksRestored...)
			if symlinksErr != nil {
				return restored, symlinksErr
			}

			break
		}
		if trErr != nil {
			return restored, trErr
		}

		// The reader will not advance until tr.Next is called.
		// We can treat this as entry metadata + body reader.

		// Attempt to place the entry on disk.
		file, restoreErr := restoreEntry(dirCache, anchor, header, tr)
		if restoreErr != nil {
			if errors.Is(restoreErr, errMissingSymlinkTarget) {
				// Links get one shot to be valid, then they're accumulated, DAG'd, and restored on delay.
				symlinks = append(symlinks, header)
				continue
			}
			return restored, restoreErr
		}
		restored = append(restored, file)
	}

	return restored, nil
}

// restoreEntry is the entry point for everything read from the archive.
func restoreEntry(dirCache *cachedDirTree, anchor turbopath.AbsoluteSystemPath, header *tar.Header, reader *tar.Reader) (turbopath.AnchoredSystemPath, error) {
	// We're permissive on creation, but restrictive on restoration.
	// There is no need to prevent the archive's creation in any case.
	// And on restoration, if we fail, the caller simply re-runs the work
	// that produced this archive entry.
	switch header.Typeflag {
	case tar.TypeDir:
		return restoreDirectory(dirCache, anchor, header)
	case tar.TypeReg:
		return restoreRegular(dirCache, anchor, header, reader)
	case tar.TypeSymlink:
		return restoreSymlink(dirCache, anchor, header)
	default:
		return "", unsupportedFileTypeError(header.Typeflag)
	}
}
