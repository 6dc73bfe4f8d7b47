// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that build configuration trees
// on disk, failing the test immediately on setup errors.
package testutil
