// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package securefile

// Resolve validates the shape of path and then fails: descriptor-relative
// opens and POSIX ownership are not available on this platform.
func (p Policy) Resolve(path string) (Resolved, error) {
	if _, err := splitPath(path); err != nil {
		return Resolved{}, err
	}
	return Resolved{}, ErrUnsupportedPlatform
}
