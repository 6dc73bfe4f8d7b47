// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with operator-facing guidance.
//
// ActionableError carries the failed operation, the path involved and remediation
// hints. The issue catalog maps each configuration failure kind to a Markdown
// explanation rendered with glamour and to the exit status used by the CLI.
package issue
