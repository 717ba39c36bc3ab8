package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yookoala/realpath"

	"github.com/tomheaton/turbo/internal/cachearchive"
	"github.com/tomheaton/turbo/internal/turbopath"
)

func newRestoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <archive> [anchor]",
		Short: "Restore a tar+zstd archive onto disk under an anchor",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath, err := resolveArchivePath(args[0])
			if err != nil {
				return a.logError("resolving archive path: %s", err)
			}

			var anchorArg string
			if len(args) > 1 {
				anchorArg = args[1]
			}
			anchor, err := resolveRestoreAnchor(anchorArg)
			if err != nil {
				return a.logError("resolving anchor: %s", err)
			}

			archive, err := cachearchive.Open(archivePath)
			if err != nil {
				return a.logError("opening %s: %s", archivePath, err)
			}
			defer archive.Close()

			s := newSpinner()
			s.Start()
			restored, err := archive.Restore(anchor)
			s.Stop()
			if err != nil {
				if errors.Is(err, cachearchive.ErrConcurrentRestore) {
					return a.logError("another restore is already running against %s", anchor)
				}
				return a.logError("restoring into %s: %s", anchor, err)
			}

			a.prefixed("restore").Output("restored %d entries into %s", len(restored), anchor)
			return nil
		},
	}

	return cmd
}

// resolveRestoreAnchor defaults anchorArg the same way pack does, ensures
// the directory exists, then resolves it through realpath so that a
// relative or symlinked CLI argument becomes the canonical
// AbsoluteSystemPath the core's traversal checks assume.
func resolveRestoreAnchor(anchorArg string) (turbopath.AbsoluteSystemPath, error) {
	abs, err := resolveAnchorString(anchorArg)
	if err != nil {
		return "", err
	}

	anchor := turbopath.AbsoluteSystemPathFromUpstream(abs)
	if err := anchor.MkdirAll(0755); err != nil {
		return "", err
	}

	resolved, err := realpath.Realpath(abs)
	if err != nil {
		return "", err
	}
	return turbopath.AbsoluteSystemPathFromUpstream(resolved), nil
}

// resolveArchivePath follows symlinks and relative components in the
// caller-supplied archive path down to its canonical form, the way
// realpath(3) would, before handing it to the core as an
// AbsoluteSystemPath.
func resolveArchivePath(archiveArg string) (turbopath.AbsoluteSystemPath, error) {
	abs, err := filepath.Abs(archiveArg)
	if err != nil {
		return "", err
	}
	resolved, err := realpath.Realpath(abs)
	if err != nil {
		return "", err
	}
	return turbopath.AbsoluteSystemPathFromUpstream(resolved), nil
}

func newSpinner() *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		s.Writer = io.Discard
	}
	s.Suffix = " restoring archive..."
	return s
}
