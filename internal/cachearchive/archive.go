package cachearchive

import (
	"archive/tar"
	"bufio"
	"io"
	"os"

	"github.com/tomheaton/turbo/internal/turbopath"
)

// Archive is a `tar` utility with a little bit extra. It wraps a single
// cache archive file on disk, either while it is being written by Create
// or while it is being read back by Open/Restore.
type Archive struct {
	// Path is the location on disk for the Archive.
	Path turbopath.AbsoluteSystemPath
	// Anchor is the position on disk at which the Archive will be restored.
	Anchor turbopath.AbsoluteSystemPath

	// For creation.
	tw         *tar.Writer
	zw         io.WriteCloser
	fileBuffer *bufio.Writer
	handle     *os.File
	compressed bool

	// reader backs an Archive opened over a raw byte source instead of a
	// path on disk (see OpenRaw). Restore/List read from this when handle
	// is nil.
	reader io.Reader
}

// source returns the byte stream Restore/List should read from, regardless
// of whether this Archive was opened from a path or from a raw reader.
func (a *Archive) source() io.Reader {
	if a.handle != nil {
		return a.handle
	}
	return a.reader
}

// Close flushes and closes any open pipes associated with this Archive.
func (a *Archive) Close() error {
	if a.tw != nil {
		if err := a.tw.Close(); err != nil {
			return err
		}
	}

	if a.zw != nil {
		if err := a.zw.Close(); err != nil {
			return err
		}
	}

	if a.fileBuffer != nil {
		if err := a.fileBuffer.Flush(); err != nil {
			return err
		}
	}

	if a.handle != nil {
		if err := a.handle.Close(); err != nil {
			return err
		}
	}

	if closer, ok := a.reader.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}

	return nil
}
