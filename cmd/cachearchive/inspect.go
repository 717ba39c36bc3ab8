package main

import (
	"archive/tar"

	"github.com/spf13/cobra"

	"github.com/tomheaton/turbo/internal/cachearchive"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the entries stored in an archive without restoring them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath, err := resolveArchivePath(args[0])
			if err != nil {
				return a.logError("resolving archive path: %s", err)
			}

			archive, err := cachearchive.Open(archivePath)
			if err != nil {
				return a.logError("opening %s: %s", archivePath, err)
			}
			defer archive.Close()

			entries, err := archive.List()
			if err != nil {
				return a.logError("listing %s: %s", archivePath, err)
			}

			out := a.prefixed("inspect")
			for _, entry := range entries {
				out.Output("%s %8d %s%s", typeflagLetter(entry.Typeflag), entry.Size, entry.Name, linknameSuffix(entry))
			}
			return nil
		},
	}

	return cmd
}

func typeflagLetter(typeflag byte) string {
	switch typeflag {
	case tar.TypeDir:
		return "d"
	case tar.TypeSymlink:
		return "l"
	case tar.TypeReg:
		return "-"
	default:
		return "?"
	}
}

func linknameSuffix(entry cachearchive.Entry) string {
	if entry.Typeflag != tar.TypeSymlink {
		return ""
	}
	return " -> " + entry.Linkname
}
