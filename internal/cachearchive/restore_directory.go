package cachearchive

import (
	"archive/tar"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomheaton/turbo/internal/turbopath"
)

// cachedDirTree tracks the deepest path segment of the restore we've
// already verified is safe to descend into, so that restoring a deep,
// depth-first archive doesn't re-walk (and re-`lstat`) the same shared
// ancestor directories for every entry.
//
// anchorAtDepth[i] is the AbsoluteSystemPath corresponding to having
// walked prefix[:i] beneath the restore anchor; anchorAtDepth always has
// one more entry than prefix (anchorAtDepth[0] is the anchor itself).
type cachedDirTree struct {
	anchorAtDepth []turbopath.AbsoluteSystemPath
	prefix        []turbopath.RelativeSystemPath
}

// splitAnchored splits an AnchoredSystemPath into its os.Separator-delimited
// segments.
func splitAnchored(p turbopath.AnchoredSystemPath) []turbopath.RelativeSystemPath {
	raw := strings.Split(p.ToString(), string(os.PathSeparator))
	segments := make([]turbopath.RelativeSystemPath, len(raw))
	for i, s := range raw {
		segments[i] = turbopath.RelativeSystemPath(s)
	}
	return segments
}

func commonPrefixLen(a, b []turbopath.RelativeSystemPath) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// getStartingPoint returns the deepest already-verified AbsoluteSystemPath
// that is an ancestor of processedName, along with the path segments
// remaining to be walked (and verified) from there.
func (cache *cachedDirTree) getStartingPoint(processedName turbopath.AnchoredSystemPath) (turbopath.AbsoluteSystemPath, []turbopath.RelativeSystemPath) {
	pathSegments := splitAnchored(processedName)
	n := commonPrefixLen(pathSegments, cache.prefix)
	return cache.anchorAtDepth[n], pathSegments[n:]
}

// restoreDirectory restores a directory.
func restoreDirectory(dirCache *cachedDirTree, anchor turbopath.AbsoluteSystemPath, header *tar.Header) (turbopath.AnchoredSystemPath, error) {
	processedName, err := canonicalizeName(header.Name)
	if err != nil {
		return "", err
	}

	// We need to traverse `processedName` from base to root split at
	// `os.Separator` to make sure we don't end up following a symlink
	// outside of the restore path.
	if err := safeMkdirAll(dirCache, anchor, processedName, header.Mode); err != nil {
		return "", err
	}

	return processedName, nil
}

// safeMkdirAll creates all directories, assuming that the leaf node is a
// directory, and updates dirCache with everything it verified along the way.
func safeMkdirAll(dirCache *cachedDirTree, anchor turbopath.AbsoluteSystemPath, processedName turbopath.AnchoredSystemPath, mode int64) error {
	// Iterate through path segments by os.Separator, appending them onto the anchor.
	// Check to see if that path segment is a symlink with a target outside of anchor.
	pathSegments := splitAnchored(processedName)
	n := commonPrefixLen(pathSegments, dirCache.prefix)

	calculatedAnchor := dirCache.anchorAtDepth[n]
	dirCache.prefix = dirCache.prefix[:n]
	dirCache.anchorAtDepth = dirCache.anchorAtDepth[:n+1]

	for _, segment := range pathSegments[n:] {
		next, checkPathErr := checkPath(anchor, calculatedAnchor, segment)
		// We hit an existing directory or absolute path that was invalid.
		if checkPathErr != nil {
			return checkPathErr
		}

		calculatedAnchor = next
		dirCache.prefix = append(dirCache.prefix, segment)
		dirCache.anchorAtDepth = append(dirCache.anchorAtDepth, calculatedAnchor)
	}

	// If we have made it here we know that it is safe to call os.MkdirAll
	// on the Join of anchor and processedName.
	//
	// This could _still_ error, but we don't care.
	return processedName.RestoreAnchor(anchor).MkdirAll(os.FileMode(mode))
}

// maxSymlinkHops bounds how many indirections checkPath will follow for a
// single path segment, the same backstop the OS itself applies (Linux caps
// at 40) so a pathological chain can't spin us forever.
const maxSymlinkHops = 40

// checkPath ensures that the resolved path (if restoring through a symlink)
// never traverses outside of the anchor. A segment may itself be a symlink
// to another symlink (`link -> up`, `up -> ../`): checking only `link`'s
// immediate target would accept it as staying inside the anchor while the
// next hop actually escapes. So we follow the full chain here rather than a
// single hop.
func checkPath(originalAnchor turbopath.AbsoluteSystemPath, accumulatedAnchor turbopath.AbsoluteSystemPath, segment turbopath.RelativeSystemPath) (turbopath.AbsoluteSystemPath, error) {
	// Check if the segment itself is sneakily an absolute path...
	// (looking at you, Windows. CON, AUX...)
	if filepath.IsAbs(segment.ToString()) {
		return "", traversalError(segment.ToString())
	}

	return resolveSymlinkChain(originalAnchor, accumulatedAnchor.Join(segment))
}

// resolveSymlinkChain follows path through every level of symlink
// indirection, verifying at each hop that the target never leaves
// originalAnchor, and returns the first path in the chain that either
// doesn't exist yet or isn't itself a symlink.
func resolveSymlinkChain(originalAnchor turbopath.AbsoluteSystemPath, path turbopath.AbsoluteSystemPath) (turbopath.AbsoluteSystemPath, error) {
	current := path

	for hops := 0; hops < maxSymlinkHops; hops++ {
		fileInfo, err := current.Lstat()
		// Getting an error here means we failed to stat the path.
		// Assume that means we're safe and continue.
		if err != nil {
			return current, nil
		}

		if fileInfo.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}

		linkTarget, readLinkErr := current.Readlink()
		if readLinkErr != nil {
			return "", readLinkErr
		}

		var next turbopath.AbsoluteSystemPath
		if filepath.IsAbs(linkTarget) {
			next = turbopath.AbsoluteSystemPath(linkTarget)
		} else {
			next = turbopath.AbsoluteSystemPath(filepath.Join(current.Dir().ToString(), linkTarget))
		}

		contained, relErr := originalAnchor.ContainsPath(next)
		if relErr != nil || !contained {
			return "", traversalError(linkTarget)
		}

		current = next
	}

	return "", traversalError(path.ToString())
}
