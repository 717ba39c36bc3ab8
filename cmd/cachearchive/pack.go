package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomheaton/turbo/internal/cachearchive"
	"github.com/tomheaton/turbo/internal/collect"
	"github.com/tomheaton/turbo/internal/turbopath"
)

const anchorMarkerFile = ".cachearchiveroot"

func newPackCmd(a *app) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "pack [anchor] [out] [paths...]",
		Short: "Pack a directory tree into a reproducible tar+zstd archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, out, paths, err := resolvePackArgs(a, cacheDir, args)
			if err != nil {
				return a.logError("%s", err)
			}

			entries, err := entriesToPack(anchor, paths)
			if err != nil {
				return a.logError("collecting entries under %s: %s", anchor, err)
			}

			archive, err := cachearchive.Create(out)
			if err != nil {
				return a.logError("creating archive at %s: %s", out, err)
			}

			bar := newProgressBar(len(entries), "packing")
			for _, entry := range entries {
				if err := archive.AddFile(anchor, entry.Path); err != nil {
					return a.logError("adding %s: %s", entry.Path, err)
				}
				_ = bar.Add(1)
			}
			if err := archive.Close(); err != nil {
				return a.logError("closing archive: %s", err)
			}

			a.prefixed("pack").Output("packed %d entries from %s into %s", len(entries), anchor, out)
			return nil
		},
	}

	addCacheDirFlag(cmd.Flags(), &cacheDir)
	return cmd
}

// addCacheDirFlag registers --cache-dir on flags, the directory archives
// are written into when [out] is omitted.
func addCacheDirFlag(flags *pflag.FlagSet, cacheDir *string) {
	flags.StringVar(cacheDir, "cache-dir", "", "directory archives are written into when [out] is omitted")
}

// resolvePackArgs interprets the pack command's positional arguments against
// the anchor-finding and cache-dir conventions described for the CLI:
// anchor defaults to the nearest ancestor carrying anchorMarkerFile, an
// omitted out path gets a uuid-stamped archive name inside the resolved
// cache directory, and an out path naming an existing directory gets a
// uuid-stamped archive name inside that directory.
func resolvePackArgs(a *app, cacheDirFlag string, args []string) (turbopath.AbsoluteSystemPath, turbopath.AbsoluteSystemPath, []string, error) {
	var anchorArg, outArg string
	var pathArgs []string
	if len(args) > 0 {
		anchorArg = args[0]
	}
	if len(args) > 1 {
		outArg = args[1]
	}
	if len(args) > 2 {
		pathArgs = args[2:]
	}

	anchor, err := resolveAnchor(anchorArg)
	if err != nil {
		return "", "", nil, errors.Wrap(err, "resolving anchor")
	}

	cacheDir := a.cfg.CacheDir
	if cacheDirFlag != "" {
		cacheDir = turbopath.AbsoluteSystemPathFromUpstream(cacheDirFlag)
	}

	out, err := resolveOutPath(outArg, cacheDir)
	if err != nil {
		return "", "", nil, errors.Wrap(err, "resolving output path")
	}

	return anchor, out, pathArgs, nil
}

func resolveAnchor(anchorArg string) (turbopath.AbsoluteSystemPath, error) {
	abs, err := resolveAnchorString(anchorArg)
	if err != nil {
		return "", err
	}
	return turbopath.AbsoluteSystemPathFromUpstream(abs), nil
}

// resolveAnchorString defaults an omitted anchor argument to the nearest
// ancestor of the working directory carrying anchorMarkerFile, the same
// findup convention the teacher uses to locate a repository root.
func resolveAnchorString(anchorArg string) (string, error) {
	if anchorArg != "" {
		return filepath.Abs(anchorArg)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	startDir := turbopath.AbsoluteSystemPathFromUpstream(cwd)
	found, ok, err := turbopath.FindupAnchor(anchorMarkerFile, startDir)
	if err != nil {
		return "", err
	}
	if ok {
		return found.ToString(), nil
	}
	return cwd, nil
}

func resolveOutPath(outArg string, cacheDir turbopath.AbsoluteSystemPath) (turbopath.AbsoluteSystemPath, error) {
	if outArg == "" {
		if err := cacheDir.MkdirAll(0755); err != nil {
			return "", err
		}
		return cacheDir.UntypedJoin(uuid.NewString() + ".tar.zst"), nil
	}

	abs, err := filepath.Abs(outArg)
	if err != nil {
		return "", err
	}
	out := turbopath.AbsoluteSystemPathFromUpstream(abs)
	if out.DirExists() {
		return out.UntypedJoin(uuid.NewString() + ".tar.zst"), nil
	}
	return out, nil
}

func entriesToPack(anchor turbopath.AbsoluteSystemPath, paths []string) ([]collect.Entry, error) {
	if len(paths) == 0 {
		return collect.Walk(anchor, skipDotGit)
	}

	entries := make([]collect.Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, collect.Entry{Path: turbopath.AnchoredSystemPath(p)})
	}
	return entries, nil
}

// skipDotGit excludes a repository's .git directory (and everything below
// it) from an anchor walk when no explicit path list was given.
func skipDotGit(p turbopath.AnchoredSystemPath) bool {
	name := p.ToString()
	return name == ".git" || strings.HasPrefix(name, ".git"+string(os.PathSeparator))
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
}
