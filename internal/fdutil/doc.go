// SPDX-License-Identifier: MPL-2.0

// Package fdutil holds helpers for raw file descriptors obtained through
// golang.org/x/sys/unix.
package fdutil
