// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package diaglog

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	return f, nil
}

func openSyslog() (io.WriteCloser, error) {
	return nil, errors.New("syslog is not available on this platform")
}
