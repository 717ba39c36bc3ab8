package collect

import (
	"os"
	"testing"

	"github.com/tomheaton/turbo/internal/turbopath"
	"gotest.tools/v3/assert"
)

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path.ToString()
	}
	return out
}

func TestWalkOrdersDirectoriesBeforeContents(t *testing.T) {
	root := turbopath.AbsoluteSystemPath(t.TempDir())
	assert.NilError(t, root.UntypedJoin("parent").MkdirAll(0775), "MkdirAll parent")
	assert.NilError(t, root.UntypedJoin("parent", "child").MkdirAll(0775), "MkdirAll child")
	assert.NilError(t, root.UntypedJoin("parent", "child", "file").WriteFile([]byte("hi"), 0644), "WriteFile")

	entries, err := Walk(root, nil)
	assert.NilError(t, err, "Walk")

	got := names(entries)
	assert.DeepEqual(t, got, []string{"parent", "parent/child", "parent/child/file"})
	assert.Equal(t, entries[0].IsDir, true)
	assert.Equal(t, entries[1].IsDir, true)
	assert.Equal(t, entries[2].IsDir, false)
}

func TestWalkSkipPrunesSubtree(t *testing.T) {
	root := turbopath.AbsoluteSystemPath(t.TempDir())
	assert.NilError(t, root.UntypedJoin(".git", "objects").MkdirAll(0775), "MkdirAll .git")
	assert.NilError(t, root.UntypedJoin(".git", "HEAD").WriteFile([]byte("ref: refs/heads/main"), 0644), "WriteFile")
	assert.NilError(t, root.UntypedJoin("src").MkdirAll(0775), "MkdirAll src")
	assert.NilError(t, root.UntypedJoin("src", "main.go").WriteFile([]byte("package main"), 0644), "WriteFile")

	skip := func(p turbopath.AnchoredSystemPath) bool {
		name := p.ToString()
		return name == ".git" || len(name) > 5 && name[:5] == ".git"+string(os.PathSeparator)
	}

	entries, err := Walk(root, skip)
	assert.NilError(t, err, "Walk")
	assert.DeepEqual(t, names(entries), []string{"src", "src/main.go"})
}
