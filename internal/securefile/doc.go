// SPDX-License-Identifier: MPL-2.0

// Package securefile opens configuration files on behalf of privileged readers.
//
// A path is never re-resolved as a string once a component has been checked.
// Resolution starts from a descriptor for the root directory and opens each
// component relative to the descriptor of its already-validated parent, so the
// ownership, type and permission checks always describe the object that is
// eventually read. A missing file (or a missing ancestor) is reported as
// [Absent] rather than as an error.
//
// File contents are read with [ReadBounded], which refuses anything larger
// than [MaxFileSize].
package securefile
