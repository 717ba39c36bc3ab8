// Adapted from https://github.com/thought-machine/please
// Copyright Thought Machine, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package collect enumerates the filesystem entries that belong in a pack
// operation, sorted by path so that every directory comes before its own
// contents, as the archive format assumes during restore.
package collect

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"

	"github.com/tomheaton/turbo/internal/turbopath"
)

// Entry is a single filesystem entry discovered under an anchor, named
// relative to it.
type Entry struct {
	Path  turbopath.AnchoredSystemPath
	IsDir bool
}

// Walk enumerates every entry reachable from root (a directory), anchored
// at root, sorted by anchored path, so each directory is emitted before its
// contents (though not necessarily immediately before them: a sibling such
// as "a-b" sorts between "a" and "a/b"). Symlinks are reported as leaves;
// we never follow them, mirroring the archive format's refusal to traverse through
// untrusted link targets while walking for creation.
//
// skip, if non-nil, is evaluated against each entry's anchored path; a
// true result prunes that entry (and, for a directory, its subtree) from
// the returned plan without an error.
func Walk(root turbopath.AbsoluteSystemPath, skip func(turbopath.AnchoredSystemPath) bool) ([]Entry, error) {
	var entries []Entry

	err := godirwalk.Walk(root.ToString(), &godirwalk.Options{
		Callback: func(name string, info *godirwalk.Dirent) error {
			if name == root.ToString() {
				return nil
			}

			anchored, relErr := turbopath.AbsoluteSystemPathFromUpstream(name).RelativeTo(root)
			if relErr != nil {
				return relErr
			}

			if skip != nil && skip(anchored) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			isDir, err := info.IsDirOrSymlinkToDir()
			if err != nil {
				var pathErr *os.PathError
				if errors.As(err, &pathErr) {
					return godirwalk.SkipThis
				}
				return err
			}

			entries = append(entries, Entry{
				Path:  anchored,
				IsDir: isDir && !info.IsSymlink(),
			})
			return nil
		},
		ErrorCallback: func(pathname string, err error) godirwalk.ErrorAction {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
		Unsorted:            true,
		AllowNonDirectory:   true,
		FollowSymbolicLinks: false,
	})
	if err != nil {
		return nil, err
	}

	// godirwalk with Unsorted still guarantees a directory precedes its own
	// children; a final stable sort on path gives deterministic archive
	// ordering (and hence byte-identical output) across runs and platforms
	// without giving up that invariant, since a parent's anchored path is
	// always a prefix of its children's.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Path.ToString() < entries[j].Path.ToString()
	})

	return entries, nil
}
