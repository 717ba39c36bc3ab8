package cachearchive

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/tomheaton/turbo/internal/turbopath"
	"gotest.tools/v3/assert"
)

func TestListReadsCompressedArchive(t *testing.T) {
	archivePath := buildArchive(t, []createFileDefinition{
		{Path: turbopath.AnchoredSystemPath("one")},
		{Path: turbopath.AnchoredSystemPath("two")},
	})

	archive, err := Open(archivePath)
	assert.NilError(t, err, "Open")
	defer archive.Close()

	entries, err := archive.List()
	assert.NilError(t, err, "List")
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].Name, "one")
	assert.Equal(t, entries[0].Typeflag, uint8(tar.TypeReg))
}

// rawTarBytes writes headers to a bare (uncompressed) tar stream in memory,
// for exercising the raw byte source construction form directly.
func rawTarBytes(t *testing.T, headers []*tar.Header) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, header := range headers {
		assert.NilError(t, tw.WriteHeader(header), "WriteHeader")
	}
	assert.NilError(t, tw.Close(), "tw.Close")
	return buf.Bytes()
}

func TestListReadsUncompressedRawSource(t *testing.T) {
	raw := rawTarBytes(t, []*tar.Header{
		{Name: "one", Typeflag: tar.TypeReg, Mode: 0644},
		{Name: "two", Typeflag: tar.TypeSymlink, Linkname: "one", Mode: 0777},
	})

	archive := OpenRaw(bytes.NewReader(raw), false)
	entries, err := archive.List()
	assert.NilError(t, err, "List")
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].Name, "one")
	assert.Equal(t, entries[1].Linkname, "one")
}

func TestRestoreFromCompressedRawSource(t *testing.T) {
	var buf bytes.Buffer
	zw := zstd.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	assert.NilError(t, tw.WriteHeader(&tar.Header{Name: "file", Typeflag: tar.TypeReg, Mode: 0644}), "WriteHeader")
	assert.NilError(t, tw.Close(), "tw.Close")
	assert.NilError(t, zw.Close(), "zw.Close")

	anchor := generateAnchor(t)
	archive := OpenRaw(bytes.NewReader(buf.Bytes()), true)

	restored, err := archive.Restore(anchor)
	assert.NilError(t, err, "Restore")
	assert.DeepEqual(t, restored, []turbopath.AnchoredSystemPath{"file"})
	assertFileExists(t, anchor, "file", "", 0)
}
