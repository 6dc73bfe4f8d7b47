// SPDX-License-Identifier: MPL-2.0

//go:build unix

package securefile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/keyguard/keyguard/internal/fdutil"
)

// Resolve walks path from the policy root one component at a time and returns
// a validated handle to the final component.
//
// Every intermediate directory must be owned by the trusted uid, must be a
// directory, and must not be group- or world-writable. The final component is
// opened without following symlinks and must additionally be a regular file.
// A missing component yields an Absent result with a nil error.
func (p Policy) Resolve(path string) (Resolved, error) {
	components, err := splitPath(path)
	if err != nil {
		return Resolved{}, err
	}

	parent, err := unix.Open(p.root(), unix.O_RDONLY|unix.O_CLOEXEC|unix.O_DIRECTORY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: open %s: %w", ErrIO, p.root(), err)
	}
	defer func() { fdutil.Close(parent) }()

	last := len(components) - 1
	for _, name := range components[:last] {
		flags := unix.O_RDONLY | unix.O_CLOEXEC | unix.O_DIRECTORY
		if p.StrictAncestors {
			flags |= unix.O_NOFOLLOW
		}

		fd, err := openat(parent, name, flags)
		if err != nil {
			if errors.Is(err, unix.ENOENT) {
				return Resolved{State: Absent}, nil
			}
			return Resolved{}, classifyOpenErr(name, err)
		}

		if err := p.validate(fd, name, unix.S_IFDIR); err != nil {
			fdutil.Close(fd)
			return Resolved{}, err
		}

		fdutil.Close(parent)
		parent = fd
	}

	// O_NONBLOCK keeps a FIFO planted at the final component from blocking
	// the open; it is cleared again once the object is known to be regular.
	name := components[last]
	fd, err := openat(parent, name, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_NOCTTY|unix.O_NOFOLLOW|unix.O_NONBLOCK)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return Resolved{State: Absent}, nil
		}
		return Resolved{}, classifyOpenErr(name, err)
	}

	size, err := p.validateFile(fd, name)
	if err != nil {
		fdutil.Close(fd)
		return Resolved{}, err
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		fdutil.Close(fd)
		return Resolved{}, fmt.Errorf("%w: %s: %w", ErrIO, name, err)
	}

	return Resolved{State: Present, File: os.NewFile(uintptr(fd), path), Size: size}, nil
}

func (p Policy) validateFile(fd int, name string) (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return 0, fmt.Errorf("%w: stat %s: %w", ErrIO, name, err)
	}
	if err := p.check(&st, name, unix.S_IFREG); err != nil {
		return 0, err
	}
	return st.Size, nil
}

func (p Policy) validate(fd int, name string, wantType uint32) error {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrIO, name, err)
	}
	return p.check(&st, name, wantType)
}

// check applies the owner, type and write-permission rules to st.
// openat follows a symlinked ancestor, so st always describes the target.
func (p Policy) check(st *unix.Stat_t, name string, wantType uint32) error {
	if !p.SkipOwnerCheck && st.Uid != p.TrustedUID {
		return fmt.Errorf("%w: %s is owned by uid %d, want %d", ErrUnsafePath, name, st.Uid, p.TrustedUID)
	}

	mode := uint32(st.Mode)
	if mode&unix.S_IFMT != wantType {
		return fmt.Errorf("%w: %s has unexpected file type %#o", ErrUnsafePath, name, mode&unix.S_IFMT)
	}
	if mode&(unix.S_IWGRP|unix.S_IWOTH) != 0 {
		return fmt.Errorf("%w: %s is group or world writable (mode %#o)", ErrUnsafePath, name, mode&0o7777)
	}

	return nil
}

func openat(dirfd int, name string, flags int) (int, error) {
	for {
		fd, err := unix.Openat(dirfd, name, flags, 0)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return fd, err
	}
}

// classifyOpenErr maps an openat failure other than ENOENT. A symlink where
// none is allowed and a non-directory ancestor are validation failures; the
// rest are plain I/O errors.
func classifyOpenErr(name string, err error) error {
	switch {
	case errors.Is(err, unix.ELOOP), errors.Is(err, unix.ENOTDIR):
		return fmt.Errorf("%w: %s: %w", ErrUnsafePath, name, err)
	default:
		return fmt.Errorf("%w: open %s: %w", ErrIO, name, err)
	}
}
