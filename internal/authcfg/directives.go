// SPDX-License-Identifier: MPL-2.0

package authcfg

import (
	"strconv"
	"strings"

	"github.com/keyguard/keyguard/internal/diaglog"
)

// confPrefix selects the configuration file. It is only honored as a module
// argument and never stored.
const confPrefix = "conf="

type directive struct {
	// name is the directive without its '=' separator.
	name string
	// diagnostic directives are also applied before the file is loaded.
	diagnostic bool
	apply      func(o *Options, value string)
}

// directives is keyed by the bare directive name, or by name+"=" for
// directives that take a value.
var directives = map[string]directive{}

func init() {
	flag := func(name string, field func(*Options) *bool) {
		directives[name] = directive{name: name, apply: func(o *Options, _ string) { *field(o) = true }}
	}
	text := func(name string, field func(*Options) *string) {
		directives[name+"="] = directive{name: name, apply: func(o *Options, v string) { *field(o) = v }}
	}
	tristate := func(name string, field func(*Options) *Tristate) {
		directives[name+"="] = directive{name: name, apply: func(o *Options, v string) {
			if n, ok := scanInt(v); ok {
				*field(o) = tristateOf(n)
			}
		}}
	}

	directives["debug"] = directive{name: "debug", diagnostic: true, apply: func(o *Options, _ string) {
		o.Debug = true
	}}
	directives["debug_file="] = directive{name: "debug_file", diagnostic: true, apply: func(o *Options, v string) {
		if err := o.sink.Close(); err != nil {
			o.debugf("closing diagnostic sink: %v", err)
		}
		o.sink = diaglog.Open(v)
		o.DebugToFile = o.sink.ToFile()
	}}
	directives["max_devices="] = directive{name: "max_devices", apply: func(o *Options, v string) {
		if n, ok := scanUint(v); ok {
			o.MaxDevices = n
		}
	}}

	flag("manual", func(o *Options) *bool { return &o.Manual })
	flag("nouserok", func(o *Options) *bool { return &o.NoUserOK })
	flag("openasuser", func(o *Options) *bool { return &o.OpenAsUser })
	flag("alwaysok", func(o *Options) *bool { return &o.AlwaysOK })
	flag("interactive", func(o *Options) *bool { return &o.Interactive })
	flag("cue", func(o *Options) *bool { return &o.Cue })
	flag("nodetect", func(o *Options) *bool { return &o.NoDetect })
	flag("expand", func(o *Options) *bool { return &o.Expand })
	flag("sshformat", func(o *Options) *bool { return &o.SSHFormat })

	tristate("userpresence", func(o *Options) *Tristate { return &o.UserPresence })
	tristate("userverification", func(o *Options) *Tristate { return &o.UserVerification })
	tristate("pinverification", func(o *Options) *Tristate { return &o.PINVerification })

	text("authfile", func(o *Options) *string { return &o.AuthFile })
	text("authpending_file", func(o *Options) *string { return &o.AuthPendingFile })
	text("origin", func(o *Options) *string { return &o.Origin })
	text("appid", func(o *Options) *string { return &o.AppID })
	text("prompt", func(o *Options) *string { return &o.Prompt })
	text("cue_prompt", func(o *Options) *string { return &o.CuePrompt })
}

// lookup finds the directive for token and splits off its value.
func lookup(token string) (directive, string, bool) {
	if i := strings.IndexByte(token, '='); i >= 0 {
		d, ok := directives[token[:i+1]]
		return d, token[i+1:], ok
	}
	d, ok := directives[token]
	return d, "", ok
}

// Known reports whether token is a directive the dispatch table understands.
func Known(token string) bool {
	_, _, ok := lookup(token)
	return ok
}

// apply dispatches one token. Unknown tokens are ignored so that newer
// configuration files keep working with older modules.
func (o *Options) apply(token string, origin Origin) {
	d, value, ok := lookup(token)
	if !ok {
		o.debugf("ignoring unknown directive %q", token)
		return
	}
	d.apply(o, value)
	o.origins[d.name] = origin
}

// applyDiagnostic dispatches token only if it is a diagnostic directive.
func (o *Options) applyDiagnostic(token string, origin Origin) {
	if d, value, ok := lookup(token); ok && d.diagnostic {
		d.apply(o, value)
		o.origins[d.name] = origin
	}
}

// scanInt reads the leading decimal integer of s, scanf-style: leading
// whitespace and an optional sign are accepted, trailing text is ignored.
// ok is false when s has no leading integer or it overflows.
func scanInt(s string) (int64, bool) {
	digits := leadingNumber(s, true)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	return n, err == nil
}

// scanUint is scanInt for unsigned values. A leading '-' is rejected rather
// than wrapped around, so max_devices=-1 leaves the field unchanged.
func scanUint(s string) (uint, bool) {
	digits := strings.TrimPrefix(leadingNumber(s, false), "+")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, strconv.IntSize)
	return uint(n), err == nil
}

func leadingNumber(s string, signed bool) string {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	i := 0
	if i < len(s) && (s[i] == '+' || (signed && s[i] == '-')) {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return ""
	}
	return s[:j]
}
