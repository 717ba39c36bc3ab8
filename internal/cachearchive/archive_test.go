package cachearchive

import (
	"os"
	"runtime"
	"syscall"
	"testing"

	"github.com/tomheaton/turbo/internal/turbopath"
	"gotest.tools/v3/assert"
)

type createFileDefinition struct {
	Path     turbopath.AnchoredSystemPath
	Linkname string
	Mode     os.FileMode
}

func createEntry(t *testing.T, anchor turbopath.AbsoluteSystemPath, def createFileDefinition) error {
	t.Helper()
	path := def.Path.RestoreAnchor(anchor)
	switch {
	case def.Mode.IsDir():
		return path.MkdirAll(0775)
	case def.Mode&os.ModeSymlink != 0:
		return path.Symlink(def.Linkname)
	case def.Mode&os.ModeNamedPipe != 0:
		if runtime.GOOS == "windows" {
			return errUnsupportedFileType
		}
		return syscall.Mkfifo(path.ToString(), 0666)
	default:
		return path.WriteFile([]byte("file contents"), 0644)
	}
}

func buildArchive(t *testing.T, files []createFileDefinition) turbopath.AbsoluteSystemPath {
	t.Helper()
	inputDir := turbopath.AbsoluteSystemPath(t.TempDir())
	archiveDir := turbopath.AbsoluteSystemPath(t.TempDir())
	archivePath := turbopath.AnchoredSystemPath("out.tar.zst").RestoreAnchor(archiveDir)

	archive, err := Create(archivePath)
	assert.NilError(t, err, "Create")

	for _, file := range files {
		assert.NilError(t, createEntry(t, inputDir, file), "createEntry")
		assert.NilError(t, archive.AddFile(inputDir, file.Path), "AddFile")
	}

	assert.NilError(t, archive.Close(), "Close")
	return archivePath
}

func TestCreateIsReproducible(t *testing.T) {
	files := []createFileDefinition{
		{Path: turbopath.AnchoredSystemPath("parent"), Mode: os.ModeDir},
		{Path: turbopath.AnchoredSystemPath("parent/child")},
		{Path: turbopath.AnchoredSystemPath("link"), Linkname: "parent/child", Mode: os.ModeSymlink},
	}

	first := buildArchive(t, files)
	second := buildArchive(t, files)

	firstBytes, err := os.ReadFile(first.ToString())
	assert.NilError(t, err, "ReadFile first")
	secondBytes, err := os.ReadFile(second.ToString())
	assert.NilError(t, err, "ReadFile second")

	assert.DeepEqual(t, firstBytes, secondBytes)
}

func TestCreateRejectsUnsupportedTypes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fifos are not constructible on windows")
	}

	inputDir := turbopath.AbsoluteSystemPath(t.TempDir())
	archiveDir := turbopath.AbsoluteSystemPath(t.TempDir())
	archivePath := turbopath.AnchoredSystemPath("out.tar.zst").RestoreAnchor(archiveDir)

	archive, err := Create(archivePath)
	assert.NilError(t, err, "Create")
	defer archive.Close()

	fifoPath := turbopath.AnchoredSystemPath("fifo")
	assert.NilError(t, createEntry(t, inputDir, createFileDefinition{Path: fifoPath, Mode: os.ModeNamedPipe}), "createEntry")

	err = archive.AddFile(inputDir, fifoPath)
	assert.ErrorIs(t, err, errUnsupportedFileType)
}
