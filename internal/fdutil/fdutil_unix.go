// SPDX-License-Identifier: MPL-2.0

//go:build unix

package fdutil

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// Close closes fd, logging a failure at debug level. Negative descriptors are
// ignored.
func Close(fd int) {
	if fd < 0 {
		return
	}
	if err := unix.Close(fd); err != nil {
		slog.Debug("close descriptor failed", "fd", fd, "error", err)
	}
}
