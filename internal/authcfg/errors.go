// SPDX-License-Identifier: MPL-2.0

package authcfg

import (
	"errors"
	"fmt"

	"github.com/keyguard/keyguard/internal/issue"
	"github.com/keyguard/keyguard/internal/securefile"
)

var (
	// ErrConfigMissing reports that an explicitly requested configuration
	// file does not exist. A missing default file is not an error.
	ErrConfigMissing = errors.New("configuration file not found")

	// ErrInvalidInput reports a malformed configuration path.
	ErrInvalidInput = securefile.ErrInvalidInput
	// ErrUnsafePath reports a configuration path that failed validation.
	ErrUnsafePath = securefile.ErrUnsafePath
	// ErrResourceLimitExceeded reports a configuration file over the size limit.
	ErrResourceLimitExceeded = securefile.ErrResourceLimitExceeded
	// ErrIO reports an I/O failure while opening or reading the file.
	ErrIO = securefile.ErrIO
)

// IssueID classifies a load error into the issue catalog. Errors outside the
// load taxonomy map to issue.ConfigLoadFailedId.
func IssueID(err error) issue.Id {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return issue.InvalidPathId
	case errors.Is(err, ErrUnsafePath):
		return issue.UnsafePathId
	case errors.Is(err, ErrConfigMissing):
		return issue.ConfigMissingId
	case errors.Is(err, ErrResourceLimitExceeded):
		return issue.ConfigTooLargeId
	case errors.Is(err, ErrIO):
		return issue.ConfigReadFailedId
	case errors.Is(err, securefile.ErrUnsupportedPlatform):
		return issue.HostNotSupportedId
	default:
		return issue.ConfigLoadFailedId
	}
}

// loadError attaches operator guidance to a resolution or read failure.
func loadError(err error, path string) error {
	ctx := issue.NewErrorContext().
		WithOperation("load module configuration").
		WithResource(path)

	switch IssueID(err) {
	case issue.InvalidPathId:
		ctx.WithSuggestion("Use an absolute path naming a file, e.g. conf=/etc/security/keyguard.conf")
	case issue.UnsafePathId:
		ctx.WithSuggestions(
			"Every directory on the path and the file itself must be owned by root",
			"Remove group and world write permission: chmod go-w <path>",
			"The file must be a regular file, not a symlink",
		)
	case issue.ConfigMissingId:
		ctx.WithSuggestions(
			"Verify the conf= argument points at an existing file",
			"Drop the conf= argument to fall back to the optional default file",
		)
	case issue.ConfigTooLargeId:
		ctx.WithSuggestion(fmt.Sprintf("Keep the configuration file under %d bytes", securefile.MaxFileSize))
	case issue.ConfigReadFailedId:
		ctx.WithSuggestion("Check that the file and its directories are readable by the authenticating process")
	}

	return ctx.Wrap(err).BuildError()
}
