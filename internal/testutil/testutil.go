// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keyguard/keyguard/internal/securefile"
)

// Tree is a directory used as the validation root of a Policy. Paths passed
// to its methods are absolute paths inside the tree, e.g. "/etc/keyguard.conf".
type Tree struct {
	t    testing.TB
	Root string
}

// NewTree creates an empty tree under t.TempDir with mode 0755.
func NewTree(t testing.TB) *Tree {
	t.Helper()
	root := t.TempDir()
	MustChmod(t, root, 0o755)
	return &Tree{t: t, Root: root}
}

// Policy returns a policy anchored at the tree that trusts the current user.
func (tr *Tree) Policy() securefile.Policy {
	return securefile.Policy{Root: tr.Root, TrustedUID: uint32(os.Getuid())}
}

// Host returns the on-disk location of an in-tree path.
func (tr *Tree) Host(path string) string {
	return filepath.Join(tr.Root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

// Dir creates path and its parents with mode 0755.
func (tr *Tree) Dir(path string) string {
	tr.t.Helper()
	host := tr.Host(path)
	MustMkdirAll(tr.t, host, 0o755)
	// MkdirAll is subject to the umask.
	for p := host; p != tr.Root && strings.HasPrefix(p, tr.Root); p = filepath.Dir(p) {
		MustChmod(tr.t, p, 0o755)
	}
	return host
}

// File writes content to path with mode 0644, creating parent directories.
func (tr *Tree) File(path, content string) string {
	tr.t.Helper()
	tr.Dir(filepath.Dir(path))
	host := tr.Host(path)
	MustWriteFile(tr.t, host, content, 0o644)
	MustChmod(tr.t, host, 0o644)
	return host
}

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path.
func MustWriteFile(t testing.TB, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustChmod changes the mode of path, bypassing the umask.
func MustChmod(t testing.TB, path string, mode os.FileMode) {
	t.Helper()
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("failed to chmod %s: %v", path, err)
	}
}

// MustSymlink creates newname pointing at oldname.
func MustSymlink(t testing.TB, oldname, newname string) {
	t.Helper()
	if err := os.Symlink(oldname, newname); err != nil {
		t.Fatalf("failed to symlink %s -> %s: %v", newname, oldname, err)
	}
}

// MustReadFile returns the contents of path.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
