package cachearchive

import (
	"archive/tar"
	"io"

	"github.com/DataDog/zstd"
)

// Entry describes a single stored entry, as discovered by List without
// touching disk.
type Entry struct {
	Name     string
	Typeflag byte
	Linkname string
	Size     int64
	Mode     int64
}

// List streams an archive's headers without restoring anything to disk, for
// diagnostic inspection of a cache entry.
func (a *Archive) List() ([]Entry, error) {
	var tr *tar.Reader
	if a.compressed {
		zr := zstd.NewReader(a.source())
		defer zr.Close()
		tr = tar.NewReader(zr)
	} else {
		tr = tar.NewReader(a.source())
	}

	var entries []Entry
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, Entry{
			Name:     header.Name,
			Typeflag: header.Typeflag,
			Linkname: header.Linkname,
			Size:     header.Size,
			Mode:     header.Mode,
		})
	}
}
