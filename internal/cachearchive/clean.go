// Adapted from https://go.googlesource.com/go/+/refs/heads/master/src/path/filepath/path.go
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cachearchive

import "os"

const separator = '/'

func isSeparator(c uint8) bool {
	return c == separator || os.IsPathSeparator(c)
}

// Clean is extracted from stdlib's path/filepath.Clean. It differs from the
// stdlib version only in that it always treats '/' as a separator (in
// addition to the platform separator) so that a link target written on one
// platform canonicalizes the same way when restored on another. It
// deliberately does not touch the filesystem, resolve symlinks, or care
// whether the input is absolute or relative.
func Clean(path string) string {
	originalPath := path
	volLen := volumeNameLen(path)
	path = path[volLen:]
	if path == "" {
		if volLen > 1 && isSeparator(originalPath[0]) && isSeparator(originalPath[1]) {
			// should be UNC
			return originalPath
		}
		return originalPath + "."
	}
	rooted := isSeparator(path[0])

	n := len(path)
	out := lazybuf{s: path, volAndPath: originalPath, volLen: volLen}
	r, dotdot := 0, 0
	if rooted {
		out.append(separator)
		r, dotdot = 1, 1
	}

	for r < n {
		switch {
		case isSeparator(path[r]):
			// empty path element
			r++
		case path[r] == '.' && (r+1 == n || isSeparator(path[r+1])):
			// . element
			r++
		case path[r] == '.' && path[r+1] == '.' && (r+2 == n || isSeparator(path[r+2])):
			// .. element: remove to last separator
			r += 2
			switch {
			case out.w > dotdot:
				// can backtrack
				out.w--
				for out.w > dotdot && !isSeparator(out.index(out.w)) {
					out.w--
				}
			case !rooted:
				// cannot backtrack, but not rooted, so append .. element.
				if out.w > 0 {
					out.append(separator)
				}
				out.append('.')
				out.append('.')
				dotdot = out.w
			}
		default:
			// real path element.
			// add slash if needed
			if rooted && out.w != 1 || !rooted && out.w != 0 {
				out.append(separator)
			}
			// copy element
			for ; r < n && !isSeparator(path[r]); r++ {
				out.append(path[r])
			}
		}
	}

	// Turn empty string into "."
	if out.w == 0 {
		out.append('.')
	}

	return out.string()
}

// A lazybuf is a lazily constructed path buffer, copied from stdlib's
// path/filepath implementation. It supports append, reading previously
// appended bytes, and retrieving the final string.
type lazybuf struct {
	s          string
	buf        []byte
	w          int
	volAndPath string
	volLen     int
}

func (b *lazybuf) index(i int) byte {
	if b.buf != nil {
		return b.buf[i]
	}
	return b.s[i]
}

func (b *lazybuf) append(c byte) {
	if b.buf == nil {
		if b.w < len(b.s) && b.s[b.w] == c {
			b.w++
			return
		}
		b.buf = make([]byte, len(b.s))
		copy(b.buf, b.s[:b.w])
	}
	b.buf[b.w] = c
	b.w++
}

func (b *lazybuf) string() string {
	if b.buf == nil {
		return b.volAndPath[:b.volLen+b.w]
	}
	return b.volAndPath[:b.volLen] + string(b.buf[:b.w])
}
