package cachearchive

import (
	"archive/tar"
	"bufio"
	"io"
	"os"
	"time"

	"github.com/DataDog/zstd"

	"github.com/moby/sys/sequential"
	"github.com/tomheaton/turbo/internal/tarpatch"
	"github.com/tomheaton/turbo/internal/turbopath"
)

// Create makes a new Archive at the specified path. The archive is always
// zstd-compressed; the ".zst" suffix on path is purely a naming convention,
// not a signal that compression is conditional.
func Create(path turbopath.AbsoluteSystemPath) (*Archive, error) {
	handle, err := path.OpenFile(os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	archive := &Archive{
		Path:       path,
		handle:     handle,
		compressed: true,
	}

	archive.init()
	return archive, nil
}

// init prepares the Archive for writing.
// Wires all the writers end-to-end:
// tar.Writer -> zstd.Writer -> fileBuffer -> file
func (a *Archive) init() {
	fileBuffer := bufio.NewWriterSize(a.handle, 1<<20) // Flush to disk in 1mb chunks.

	var tw *tar.Writer
	if a.compressed {
		zw := zstd.NewWriter(fileBuffer)
		tw = tar.NewWriter(zw)
		a.zw = zw
	} else {
		tw = tar.NewWriter(fileBuffer)
	}

	a.tw = tw
	a.fileBuffer = fileBuffer
}

// AddFile adds a single filesystem entry (regular file, directory, or
// symlink) rooted at fsAnchor to the archive under filePath.
func (a *Archive) AddFile(fsAnchor turbopath.AbsoluteSystemPath, filePath turbopath.AnchoredSystemPath) error {
	// Calculate the fully-qualified path to the file to read it.
	sourcePath := filePath.RestoreAnchor(fsAnchor)

	// We grab the FileInfo which tar.FileInfoHeader accepts.
	fileInfo, lstatErr := sourcePath.Lstat()
	if lstatErr != nil {
		return lstatErr
	}

	// Determine if we need to populate the additional link argument to tar.FileInfoHeader.
	var link string
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		linkTarget, readlinkErr := sourcePath.Readlink()
		if readlinkErr != nil {
			return readlinkErr
		}
		link = linkTarget
	}

	// Normalize the path within the cache.
	cacheDestinationName := filePath.ToUnixPath()

	// Generate the header.
	// We do not use header generation from stdlib because it can throw an error.
	header, headerErr := tarpatch.FileInfoHeader(cacheDestinationName, fileInfo, link)
	if headerErr != nil {
		return headerErr
	}

	// Throw an error if trying to create an archive entry of a type we don't support.
	if (header.Typeflag != tar.TypeReg) && (header.Typeflag != tar.TypeDir) && (header.Typeflag != tar.TypeSymlink) {
		return unsupportedFileTypeError(header.Typeflag)
	}

	// Zero every identity- and time-carrying field so that the same file
	// tree produces byte-identical archives regardless of who wrote them
	// or when.
	header.Uid = 0
	header.Gid = 0
	header.Uname = ""
	header.Gname = ""
	header.AccessTime = time.Unix(0, 0)
	header.ModTime = time.Unix(0, 0)
	header.ChangeTime = time.Unix(0, 0)

	// Always write the header.
	if err := a.tw.WriteHeader(header); err != nil {
		return err
	}

	// If there is a body to be written, do so.
	if header.Typeflag == tar.TypeReg && header.Size > 0 {
		// Windows has a distinct "sequential read" opening mode.
		// We use a library that will switch to this mode for Windows.
		sourceFile, sourceErr := sequential.OpenFile(sourcePath.ToString(), os.O_RDONLY, 0777)
		if sourceErr != nil {
			return sourceErr
		}

		if _, err := io.Copy(a.tw, sourceFile); err != nil {
			return err
		}

		return sourceFile.Close()
	}

	return nil
}
