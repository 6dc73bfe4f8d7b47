// SPDX-License-Identifier: MPL-2.0

package authcfg

import (
	"fmt"
	"strconv"

	"github.com/keyguard/keyguard/internal/diaglog"
)

type (
	// Tristate is a policy knob that distinguishes "not configured" from an
	// explicit choice.
	Tristate int

	// Origin records which source last set an option.
	Origin int

	// Options is the merged module configuration.
	//
	// String fields are never copied: values that came from the configuration
	// file are substrings of the retained file contents, values that came from
	// module arguments share the caller's argument strings.
	Options struct {
		Debug       bool
		DebugToFile bool
		Manual      bool
		NoUserOK    bool
		OpenAsUser  bool
		AlwaysOK    bool
		Interactive bool
		Cue         bool
		NoDetect    bool
		Expand      bool
		SSHFormat   bool

		MaxDevices uint

		UserPresence     Tristate
		UserVerification Tristate
		PINVerification  Tristate

		AuthFile        string
		AuthPendingFile string
		Origin          string
		AppID           string
		Prompt          string
		CuePrompt       string

		sink    *diaglog.Sink
		raw     string
		origins map[string]Origin
	}

	// Field is one resolved option, formatted for display.
	Field struct {
		Name   string
		Value  string
		Origin Origin
	}
)

const (
	// Unset means the policy was not configured; the consumer applies its default.
	Unset Tristate = -1
	// NotRequired explicitly disables the policy.
	NotRequired Tristate = 0
	// Required explicitly enables the policy.
	Required Tristate = 1
)

const (
	// OriginDefault means the option still holds its built-in default.
	OriginDefault Origin = iota
	// OriginFile means the option was set by the configuration file.
	OriginFile
	// OriginArgument means the option was set by a module argument.
	OriginArgument
)

// tristateOf maps a directive's integer value onto a Tristate.
func tristateOf(n int64) Tristate {
	switch {
	case n > 0:
		return Required
	case n == 0:
		return NotRequired
	default:
		return Unset
	}
}

// String returns "unset", "required" or "not-required".
func (t Tristate) String() string {
	switch t {
	case Unset:
		return "unset"
	case Required:
		return "required"
	case NotRequired:
		return "not-required"
	default:
		return fmt.Sprintf("Tristate(%d)", int(t))
	}
}

// String returns "default", "file" or "argument".
func (o Origin) String() string {
	switch o {
	case OriginDefault:
		return "default"
	case OriginFile:
		return "file"
	case OriginArgument:
		return "argument"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// newOptions returns options in their reset state.
func newOptions() *Options {
	o := &Options{}
	o.reset()
	return o
}

func (o *Options) reset() {
	*o = Options{
		UserPresence:     Unset,
		UserVerification: Unset,
		PINVerification:  Unset,
		sink:             diaglog.Default(),
		origins:          make(map[string]Origin),
	}
}

// Sink returns the diagnostic sink selected by debug_file=.
func (o *Options) Sink() *diaglog.Sink {
	return o.sink
}

// Raw returns the retained configuration file contents, or "" when no file
// was read.
func (o *Options) Raw() string {
	return o.raw
}

// OriginOf reports which source last set the named directive (e.g. "authfile").
func (o *Options) OriginOf(name string) Origin {
	return o.origins[name]
}

// Close releases the diagnostic sink and the retained file contents, and
// returns the options to their reset state.
func (o *Options) Close() error {
	err := o.sink.Close()
	o.reset()
	return err
}

// debugf writes a trace line when diagnostics are enabled.
func (o *Options) debugf(format string, args ...any) {
	if o.Debug {
		o.sink.Debugf(format, args...)
	}
}

// Fields lists every option in directive order with its display value.
// Strings never set are shown as "(null)"; strings set to nothing as `""`.
func (o *Options) Fields() []Field {
	b := strconv.FormatBool
	f := func(name, value string) Field {
		return Field{Name: name, Value: value, Origin: o.origins[name]}
	}
	str := func(name, value string) Field {
		if value == "" {
			value = `""`
			if o.origins[name] == OriginDefault {
				value = "(null)"
			}
		}
		return f(name, value)
	}

	return []Field{
		f("max_devices", strconv.FormatUint(uint64(o.MaxDevices), 10)),
		f("debug", b(o.Debug)),
		f("debug_file", o.sink.Target()),
		f("interactive", b(o.Interactive)),
		f("cue", b(o.Cue)),
		f("nodetect", b(o.NoDetect)),
		f("userpresence", o.UserPresence.String()),
		f("userverification", o.UserVerification.String()),
		f("pinverification", o.PINVerification.String()),
		f("manual", b(o.Manual)),
		f("nouserok", b(o.NoUserOK)),
		f("openasuser", b(o.OpenAsUser)),
		f("alwaysok", b(o.AlwaysOK)),
		f("sshformat", b(o.SSHFormat)),
		f("expand", b(o.Expand)),
		str("authfile", o.AuthFile),
		str("authpending_file", o.AuthPendingFile),
		str("origin", o.Origin),
		str("appid", o.AppID),
		str("prompt", o.Prompt),
		str("cue_prompt", o.CuePrompt),
	}
}
