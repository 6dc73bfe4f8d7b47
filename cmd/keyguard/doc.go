// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the keyguard command line: resolving module options
// the way the authentication module does, checking a configuration path,
// normalizing configuration lines and explaining failure kinds.
package cmd
