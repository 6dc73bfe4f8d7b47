// SPDX-License-Identifier: MPL-2.0

package authcfg

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/keyguard/keyguard/internal/securefile"
)

// DefaultPath is the configuration file used when no conf= argument is given.
// It is the only path allowed to be missing.
const DefaultPath = "/etc/security/keyguard.conf"

type (
	// LoadOptions defines explicit loading inputs besides the module arguments.
	LoadOptions struct {
		// Flags are the host framework's invocation flags. They are only
		// reported in the diagnostic dump.
		Flags int
		// DefaultPath overrides DefaultPath when set.
		DefaultPath string
		// Policy controls configuration path validation.
		Policy securefile.Policy
	}

	// Provider loads module options from invocation arguments.
	Provider interface {
		Load(args []string, opts LoadOptions) (*Options, error)
	}

	fileProvider struct{}
)

// NewProvider creates a provider backed by the on-disk configuration file.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load implements Provider.
func (p *fileProvider) Load(args []string, opts LoadOptions) (*Options, error) {
	return Load(args, opts)
}

// Load merges the configuration file and the module arguments into Options.
//
// Arguments are scanned twice: first for diagnostic directives only, so that
// loading the file is already traced, then in full after the file has been
// applied so that every argument overrides the file. On failure nothing is
// returned and everything acquired so far has been released.
func Load(args []string, opts LoadOptions) (*Options, error) {
	o := newOptions()

	for _, arg := range args {
		if !strings.HasPrefix(arg, confPrefix) {
			o.applyDiagnostic(arg, OriginArgument)
		}
	}

	path, explicit := selectPath(args, opts.DefaultPath)

	err := o.loadFile(path, explicit, opts.Policy)
	if err == nil {
		for _, arg := range args {
			if strings.HasPrefix(arg, confPrefix) {
				continue
			}
			o.apply(arg, OriginArgument)
		}
	}

	if o.Debug {
		o.dump(opts.Flags, args)
	}

	if err != nil {
		if cerr := o.Close(); cerr != nil {
			slog.Debug("closing diagnostic sink failed", "error", cerr)
		}
		return nil, err
	}

	return o, nil
}

// selectPath returns the last conf= value, or the default path.
func selectPath(args []string, defaultPath string) (path string, explicit bool) {
	for _, arg := range args {
		if strings.HasPrefix(arg, confPrefix) {
			path, explicit = arg[len(confPrefix):], true
		}
	}
	if explicit {
		return path, true
	}
	if defaultPath != "" {
		return defaultPath, false
	}
	return DefaultPath, false
}

func (o *Options) loadFile(path string, explicit bool, policy securefile.Policy) error {
	res, err := policy.Resolve(path)
	if err != nil {
		return loadError(err, path)
	}
	defer func() {
		if cerr := res.Close(); cerr != nil {
			o.debugf("closing %s: %v", path, cerr)
		}
	}()

	if res.State == securefile.Absent {
		if explicit {
			return loadError(fmt.Errorf("%w: %s", ErrConfigMissing, path), path)
		}
		o.debugf("no configuration file at %s, using defaults", path)
		return nil
	}

	if res.Size == 0 {
		o.debugf("configuration file %s is empty", path)
		return nil
	}

	buf, err := securefile.ReadBounded(res.File, res.Size)
	if err != nil {
		return loadError(err, path)
	}

	o.debugf("read %d bytes from %s", len(buf), path)
	o.applyBuffer(buf)

	return nil
}

// applyBuffer normalizes buf line by line in place, retains it as the raw
// configuration and applies every token. Tokens are substrings of o.raw.
func (o *Options) applyBuffer(buf []byte) {
	type span struct{ start, end int }
	var tokens []span

	for start := 0; start < len(buf); {
		end := len(buf)
		if i := bytes.IndexByte(buf[start:], '\n'); i >= 0 {
			end = start + i
		}
		// Pin the next line before the current one is compacted.
		next := end + 1

		if token, ok := Normalize(buf[start:end]); ok {
			// token aliases buf, so its offset follows from the capacities.
			off := cap(buf) - cap(token)
			tokens = append(tokens, span{off, off + len(token)})
		}
		start = next
	}

	o.raw = string(buf)
	for _, t := range tokens {
		o.apply(o.raw[t.start:t.end], OriginFile)
	}
}

// dump writes the call and every resolved option to the diagnostic sink.
func (o *Options) dump(flags int, args []string) {
	o.sink.Debugf("called.")
	o.sink.Debugf("flags %d argc %d", flags, len(args))
	for i, arg := range args {
		o.sink.Debugf("argv[%d]=%s", i, arg)
	}
	for _, f := range o.Fields() {
		o.sink.Debugf("%s=%s", f.Name, f.Value)
	}
}
