// SPDX-License-Identifier: MPL-2.0

//go:build unix

package diaglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "debug.log")
	if err := os.WriteFile(path, []byte("existing\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := Open(path)
	if s.Target() != path || !s.ToFile() {
		t.Fatalf("Target() = %q, ToFile() = %v", s.Target(), s.ToFile())
	}
	s.Debugf("max_devices=%d", 5)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, "existing\n") {
		t.Errorf("file was truncated: %q", got)
	}
	if !strings.Contains(got, "max_devices=5") || !strings.Contains(got, "keyguard") {
		t.Errorf("trace missing from file: %q", got)
	}
}

func TestOpen_FallsBackToStderr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "target.log")
	if err := os.WriteFile(target, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.log")
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"missing file is not created": filepath.Join(dir, "missing.log"),
		"symlink is not followed":     link,
		"directory is refused":        dir,
	}

	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := Open(path)
			if s.Target() != TargetStderr || s.ToFile() {
				t.Errorf("Open(%q) target = %q, want stderr fallback", path, s.Target())
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close() = %v", err)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "missing.log")); !os.IsNotExist(err) {
		t.Errorf("missing.log was created")
	}
}

func TestOpen_StandardStreams(t *testing.T) {
	t.Parallel()

	for _, target := range []string{TargetStderr, TargetStdout} {
		s := Open(target)
		if s.Target() != target || s.ToFile() {
			t.Errorf("Open(%q).Target() = %q, ToFile() = %v", target, s.Target(), s.ToFile())
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	}

	if _, err := os.Stderr.Stat(); err != nil {
		t.Errorf("stderr closed by sink: %v", err)
	}
}
