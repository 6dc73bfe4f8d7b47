// SPDX-License-Identifier: MPL-2.0

//go:build unix

package authcfg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unsafe"

	"github.com/keyguard/keyguard/internal/diaglog"
	"github.com/keyguard/keyguard/internal/issue"
	"github.com/keyguard/keyguard/internal/securefile"
	"github.com/keyguard/keyguard/internal/testutil"
)

const testDefault = "/etc/keyguard.conf"

func load(t *testing.T, tree *testutil.Tree, args ...string) (*Options, error) {
	t.Helper()
	o, err := Load(args, LoadOptions{DefaultPath: testDefault, Policy: tree.Policy()})
	if err == nil {
		t.Cleanup(func() {
			if cerr := o.Close(); cerr != nil {
				t.Errorf("Close() = %v", cerr)
			}
		})
	}
	return o, err
}

func TestLoad_DefaultAbsent(t *testing.T) {
	tree := testutil.NewTree(t)

	o, err := load(t, tree, "cue", "max_devices=5")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !o.Cue || o.MaxDevices != 5 {
		t.Errorf("cue=%v max_devices=%d", o.Cue, o.MaxDevices)
	}
	if o.UserPresence != Unset || o.UserVerification != Unset || o.PINVerification != Unset {
		t.Error("tristates should stay unset")
	}
	if o.Raw() != "" {
		t.Errorf("Raw() = %q, want empty", o.Raw())
	}
	if o.Sink().Target() != diaglog.TargetStderr {
		t.Error("sink should be the default")
	}
}

func TestLoad_FileAndArguments(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File(testDefault, strings.Join([]string{
		"# keyguard module options",
		"",
		"  cue",
		"max_devices = 3",
		"authfile = /etc/keyguard/keys   # shared",
		"userpresence = 1",
		"prompt = Insert your key",
		"unknown_directive = 1",
		"conf = /etc/elsewhere.conf",
	}, "\n"))

	o, err := load(t, tree, "max_devices=8", "userpresence=0", "nouserok")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !o.Cue || o.OriginOf("cue") != OriginFile {
		t.Errorf("cue = %v from %v", o.Cue, o.OriginOf("cue"))
	}
	if o.MaxDevices != 8 || o.OriginOf("max_devices") != OriginArgument {
		t.Errorf("max_devices = %d from %v", o.MaxDevices, o.OriginOf("max_devices"))
	}
	if o.UserPresence != NotRequired {
		t.Errorf("userpresence = %v, want not-required", o.UserPresence)
	}
	if o.AuthFile != "/etc/keyguard/keys" || o.Prompt != "Insert your key" {
		t.Errorf("authfile=%q prompt=%q", o.AuthFile, o.Prompt)
	}
	if !o.NoUserOK || o.OriginOf("nouserok") != OriginArgument {
		t.Error("nouserok should come from the arguments")
	}
	if o.OriginOf("manual") != OriginDefault {
		t.Errorf("manual origin = %v, want default", o.OriginOf("manual"))
	}
}

func TestLoad_FileValuesAliasRaw(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File(testDefault, "authfile = /etc/keyguard/keys\n  prompt=Touch\n")

	o, err := load(t, tree)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	raw := o.Raw()
	lo := uintptr(unsafe.Pointer(unsafe.StringData(raw)))
	hi := lo + uintptr(len(raw))
	for _, v := range []string{o.AuthFile, o.Prompt} {
		p := uintptr(unsafe.Pointer(unsafe.StringData(v)))
		if p < lo || p+uintptr(len(v)) > hi {
			t.Errorf("%q is not a substring of the retained file contents", v)
		}
	}
	if !strings.HasPrefix(raw, "authfile=/etc/keyguard/keys") {
		t.Errorf("Raw() = %q, want the normalized buffer", raw)
	}
}

func TestLoad_LastConfWins(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File("/etc/a.conf", "cue\n")
	tree.File("/etc/b.conf", "manual\n")

	o, err := load(t, tree, "conf=/etc/a.conf", "conf=/etc/b.conf")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if o.Cue || !o.Manual {
		t.Errorf("cue=%v manual=%v, want only b.conf applied", o.Cue, o.Manual)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, tree *testutil.Tree)
		args   []string
		policy func(p securefile.Policy) securefile.Policy
		want   error
		id     issue.Id
	}{
		{
			name: "explicit missing",
			args: []string{"conf=/does/not/exist"},
			want: ErrConfigMissing,
			id:   issue.ConfigMissingId,
		},
		{
			name: "relative",
			args: []string{"conf=etc/keyguard.conf"},
			want: ErrInvalidInput,
			id:   issue.InvalidPathId,
		},
		{
			name: "trailing separator",
			args: []string{"conf=/etc/"},
			want: ErrInvalidInput,
			id:   issue.InvalidPathId,
		},
		{
			name: "oversize",
			setup: func(t *testing.T, tree *testutil.Tree) {
				tree.File(testDefault, strings.Repeat("#", securefile.MaxFileSize+1))
			},
			want: ErrResourceLimitExceeded,
			id:   issue.ConfigTooLargeId,
		},
		{
			name: "world writable file",
			setup: func(t *testing.T, tree *testutil.Tree) {
				testutil.MustChmod(t, tree.File(testDefault, "cue\n"), 0o666)
			},
			want: ErrUnsafePath,
			id:   issue.UnsafePathId,
		},
		{
			name: "group writable directory",
			setup: func(t *testing.T, tree *testutil.Tree) {
				tree.File(testDefault, "cue\n")
				testutil.MustChmod(t, tree.Host("/etc"), 0o775)
			},
			want: ErrUnsafePath,
			id:   issue.UnsafePathId,
		},
		{
			name: "symlinked file",
			setup: func(t *testing.T, tree *testutil.Tree) {
				target := tree.File("/etc/real.conf", "cue\n")
				testutil.MustSymlink(t, target, tree.Host(testDefault))
			},
			want: ErrUnsafePath,
			id:   issue.UnsafePathId,
		},
		{
			name: "foreign owner",
			setup: func(t *testing.T, tree *testutil.Tree) {
				tree.File(testDefault, "cue\n")
			},
			policy: func(p securefile.Policy) securefile.Policy {
				p.TrustedUID++
				return p
			},
			want: ErrUnsafePath,
			id:   issue.UnsafePathId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := testutil.NewTree(t)
			if tt.setup != nil {
				tt.setup(t, tree)
			}
			policy := tree.Policy()
			if tt.policy != nil {
				policy = tt.policy(policy)
			}

			o, err := Load(append(tt.args, "cue"), LoadOptions{DefaultPath: testDefault, Policy: policy})
			if o != nil {
				t.Errorf("Load() returned options on failure: %+v", o)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
			if got := IssueID(err); got != tt.id {
				t.Errorf("IssueID() = %d, want %d", got, tt.id)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || !ae.HasSuggestions() {
				t.Errorf("error should carry suggestions: %v", err)
			}
		})
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File(testDefault, "")

	o, err := load(t, tree, "alwaysok")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !o.AlwaysOK || o.Raw() != "" {
		t.Errorf("alwaysok=%v raw=%q", o.AlwaysOK, o.Raw())
	}
}

func TestLoad_FileAtLimit(t *testing.T) {
	tree := testutil.NewTree(t)
	content := "cue\n" + strings.Repeat("#", securefile.MaxFileSize-4)
	tree.File(testDefault, content)

	o, err := load(t, tree)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !o.Cue {
		t.Error("cue should be set from a file of exactly the size limit")
	}
}

func TestLoad_DebugDump(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File(testDefault, "max_devices = 2\nauthfile = /etc/keys\n")
	logPath := filepath.Join(t.TempDir(), "debug.log")
	testutil.MustWriteFile(t, logPath, "", 0o600)

	o, err := Load([]string{"debug", "debug_file=" + logPath, "cue"}, LoadOptions{
		Flags:       32768,
		DefaultPath: testDefault,
		Policy:      tree.Policy(),
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !o.DebugToFile || o.Sink().Target() != logPath {
		t.Errorf("DebugToFile=%v target=%q", o.DebugToFile, o.Sink().Target())
	}
	if o.OriginOf("debug_file") != OriginArgument {
		t.Errorf("debug_file origin = %v", o.OriginOf("debug_file"))
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	got := testutil.MustReadFile(t, logPath)
	for _, want := range []string{
		"called.",
		"flags 32768 argc 3",
		"argv[0]=debug",
		"argv[2]=cue",
		"max_devices=2",
		"authfile=/etc/keys",
		"cue=true",
		"prompt=(null)",
		"userpresence=unset",
		"read ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("debug log missing %q:\n%s", want, got)
		}
	}
}

func TestLoad_DebugFileLastWins(t *testing.T) {
	tests := []struct {
		name string
		// setup returns the module arguments for the first and last targets.
		setup func(t *testing.T, tree *testutil.Tree, first, last string) []string
		// wantRead is set when the file was read while tracing to last.
		wantRead bool
	}{
		{
			name: "arguments",
			setup: func(_ *testing.T, _ *testutil.Tree, first, last string) []string {
				return []string{"debug", "debug_file=" + first, "debug_file=" + last}
			},
		},
		{
			name: "argument overrides file",
			setup: func(_ *testing.T, tree *testutil.Tree, first, last string) []string {
				tree.File(testDefault, "cue\ndebug_file="+first+"\n")
				return []string{"debug", "debug_file=" + last}
			},
			wantRead: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := testutil.NewTree(t)
			dir := t.TempDir()
			first := filepath.Join(dir, "first.log")
			last := filepath.Join(dir, "last.log")
			testutil.MustWriteFile(t, first, "", 0o600)
			testutil.MustWriteFile(t, last, "", 0o600)

			o, err := load(t, tree, tt.setup(t, tree, first, last)...)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if o.Sink().Target() != last || !o.DebugToFile {
				t.Errorf("target = %q, want %q", o.Sink().Target(), last)
			}
			if o.OriginOf("debug_file") != OriginArgument {
				t.Errorf("debug_file origin = %v", o.OriginOf("debug_file"))
			}
			if n := openDescriptors(t, first); n != 0 {
				t.Errorf("%d descriptor(s) still open on the replaced target", n)
			}

			if got := testutil.MustReadFile(t, first); strings.Contains(got, "called.") {
				t.Errorf("dump written to the replaced target:\n%s", got)
			}
			got := testutil.MustReadFile(t, last)
			if !strings.Contains(got, "called.") || !strings.Contains(got, "debug_file="+last) {
				t.Errorf("dump missing from the final target:\n%s", got)
			}
			if tt.wantRead && !strings.Contains(got, "read ") {
				t.Errorf("file load not traced to the argument target:\n%s", got)
			}
		})
	}
}

// openDescriptors counts this process's descriptors open on path.
func openDescriptors(t *testing.T, path string) int {
	t.Helper()

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skipf("descriptor table not available: %v", err)
	}
	want, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatal(err)
	}

	n := 0
	for _, e := range entries {
		if target, err := os.Readlink(filepath.Join("/proc/self/fd", e.Name())); err == nil && target == want {
			n++
		}
	}
	return n
}

func TestLoad_DebugDumpOnFailure(t *testing.T) {
	tree := testutil.NewTree(t)
	logPath := filepath.Join(t.TempDir(), "debug.log")
	testutil.MustWriteFile(t, logPath, "", 0o600)

	_, err := Load([]string{"debug", "debug_file=" + logPath, "conf=/missing.conf"}, LoadOptions{Policy: tree.Policy()})
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("Load() error = %v, want ErrConfigMissing", err)
	}

	got := testutil.MustReadFile(t, logPath)
	if !strings.Contains(got, "called.") || !strings.Contains(got, "argv[2]=conf=/missing.conf") {
		t.Errorf("failure dump missing:\n%s", got)
	}
}

func TestClose_Resets(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File(testDefault, "cue\nauthfile=/k\n")

	o, err := Load([]string{"userverification=1"}, LoadOptions{DefaultPath: testDefault, Policy: tree.Policy()})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if o.Cue || o.AuthFile != "" || o.Raw() != "" || o.UserVerification != Unset {
		t.Errorf("Close() left state behind: %+v", o.Snapshot())
	}
	if err := o.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestSelectPath(t *testing.T) {
	tests := []struct {
		args         []string
		def          string
		want         string
		wantExplicit bool
	}{
		{nil, "", DefaultPath, false},
		{nil, "/x.conf", "/x.conf", false},
		{[]string{"conf=/a"}, "/x.conf", "/a", true},
		{[]string{"conf=/a", "cue", "conf=/b"}, "", "/b", true},
		{[]string{"conf="}, "", "", true},
	}
	for _, tt := range tests {
		path, explicit := selectPath(tt.args, tt.def)
		if path != tt.want || explicit != tt.wantExplicit {
			t.Errorf("selectPath(%v, %q) = %q, %v", tt.args, tt.def, path, explicit)
		}
	}
}

func TestSnapshot(t *testing.T) {
	tree := testutil.NewTree(t)
	tree.File(testDefault, "pinverification = 1\n")

	o, err := load(t, tree, "sshformat")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	s := o.Snapshot()
	if s.PINVerification != "required" || !s.SSHFormat || s.DebugFile != "stderr" {
		t.Errorf("Snapshot() = %+v", s)
	}
	if s.Origins["pinverification"] != "file" || s.Origins["sshformat"] != "argument" {
		t.Errorf("Origins = %v", s.Origins)
	}
}
