// SPDX-License-Identifier: MPL-2.0

// Package authcfg builds the options consumed by the keyguard authentication
// module from its invocation arguments and the module configuration file.
//
// # Precedence
//
// Options are merged in a fixed order:
//   - Built-in defaults (tri-state policies start as Unset)
//   - Directives from the configuration file
//   - Module arguments, which override the file
//
// Diagnostic directives (debug, debug_file=) are applied from the arguments
// before the file is read, so loading itself can be traced.
//
// # Configuration file
//
// One directive per line, using the same spelling as a module argument.
// Whitespace around the key, the '=' and the value is ignored, and '#' starts
// a comment:
//
//	# /etc/security/keyguard.conf
//	cue
//	max_devices = 4
//	authfile = /etc/keyguard/keys   # per-host key mapping
//
// Unknown directives are ignored. The file is located through
// [securefile.Policy.Resolve] and may be missing only when the default path
// is in use.
//
// # Usage
//
//	opts, err := authcfg.Load(args, authcfg.LoadOptions{})
//	if err != nil {
//	    return err // deny the attempt
//	}
//	defer opts.Close()
package authcfg
