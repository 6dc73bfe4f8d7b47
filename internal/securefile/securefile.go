// SPDX-License-Identifier: MPL-2.0

package securefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxFileSize is the largest configuration file ReadBounded accepts.
const MaxFileSize = 4096

var (
	// ErrInvalidInput reports a path that is empty, relative, or ends in a separator.
	ErrInvalidInput = errors.New("invalid configuration path")
	// ErrUnsafePath reports a path component that failed ownership, type or
	// permission validation.
	ErrUnsafePath = errors.New("unsafe configuration path")
	// ErrResourceLimitExceeded reports a file larger than MaxFileSize.
	ErrResourceLimitExceeded = errors.New("configuration file too large")
	// ErrIO reports an open, stat or read failure other than a missing file.
	ErrIO = errors.New("configuration i/o error")
	// ErrUnsupportedPlatform is returned where descriptor-relative opens are unavailable.
	ErrUnsupportedPlatform = errors.New("secure configuration loading is not supported on this platform")
)

type (
	// State tells whether path resolution found a file.
	State int

	// Policy controls how strictly Resolve validates each path component.
	// The zero value is the production policy: walk from "/", require every
	// component to be owned by uid 0.
	Policy struct {
		// Root is the directory the walk is anchored at. Empty means "/".
		// Hermetic tests point it at a private directory; it is not a
		// containment boundary.
		Root string
		// TrustedUID is the owner every component must have.
		TrustedUID uint32
		// SkipOwnerCheck disables the ownership check (test mode only).
		SkipOwnerCheck bool
		// StrictAncestors refuses symlinked intermediate directories instead of
		// following them and validating their target.
		StrictAncestors bool
	}

	// Resolved is the outcome of Resolve. File and Size are only meaningful
	// when State is Present, in which case the caller owns File.
	Resolved struct {
		State State
		File  *os.File
		Size  int64
	}
)

const (
	// Absent means the file or one of its ancestors does not exist.
	Absent State = iota
	// Present means a validated file handle is available.
	Present
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Close releases the file handle, if any. It is safe to call on an Absent result.
func (r *Resolved) Close() error {
	if r == nil || r.File == nil {
		return nil
	}
	err := r.File.Close()
	r.File = nil
	return err
}

func (p Policy) root() string {
	if p.Root == "" {
		return "/"
	}
	return p.Root
}

// splitPath validates the shape of path and returns its non-empty components.
func splitPath(path string) ([]string, error) {
	if path == "" || path[0] != '/' || path[len(path)-1] == '/' {
		return nil, fmt.Errorf("%w: %q must be absolute and name a file", ErrInvalidInput, path)
	}
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' }), nil
}

// ReadBounded reads up to size bytes from r into a freshly allocated buffer.
// Sizes above MaxFileSize are refused. An early end-of-stream is not an error:
// the returned slice is simply shorter than size.
func ReadBounded(r io.Reader, size int64) ([]byte, error) {
	if size < 0 || size > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrResourceLimitExceeded, size, MaxFileSize)
	}

	buf := make([]byte, size)
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) || (m == 0 && err == nil) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}
	}

	return buf[:n], nil
}
