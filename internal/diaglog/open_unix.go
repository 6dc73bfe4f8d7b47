// SPDX-License-Identifier: MPL-2.0

//go:build unix

package diaglog

import (
	"fmt"
	"io"
	"log/syslog"
	"os"

	"golang.org/x/sys/unix"

	"github.com/keyguard/keyguard/internal/fdutil"
)

func openAppend(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_APPEND|unix.O_CLOEXEC|unix.O_NOFOLLOW|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		fdutil.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if uint32(st.Mode)&unix.S_IFMT != unix.S_IFREG {
		fdutil.Close(fd)
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		fdutil.Close(fd)
		return nil, fmt.Errorf("set blocking %s: %w", path, err)
	}

	return os.NewFile(uintptr(fd), path), nil
}

func openSyslog() (io.WriteCloser, error) {
	w, err := syslog.New(syslog.LOG_AUTHPRIV|syslog.LOG_DEBUG, prefix)
	if err != nil {
		return nil, fmt.Errorf("connect syslog: %w", err)
	}
	return w, nil
}
