// SPDX-License-Identifier: MPL-2.0

package authcfg

import "bytes"

// Normalize turns one configuration line into the equivalent module argument.
// Comments are stripped and whitespace around the key, the '=' and the value
// is removed, compacting the line in place:
//
//	"foo = bar"  => "foo=bar"
//	"baz"        => "baz"
//	"baz # etc"  => "baz"
//
// The returned token aliases line. ok is false for blank and comment-only lines.
func Normalize(line []byte) (token []byte, ok bool) {
	if i := bytes.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = trim(line)

	eq := bytes.IndexByte(line, '=')
	if eq < 0 {
		return line, len(line) > 0
	}

	// line has no leading space, so key starts at line[0].
	key := bytes.TrimRightFunc(line[:eq], isSpace)
	value := trim(line[eq+1:])

	n := len(key)
	line[n] = '='
	n++
	n += copy(line[n:], value)

	return line[:n], true
}

// NormalizeString is Normalize for callers holding an immutable line.
func NormalizeString(line string) (string, bool) {
	token, ok := Normalize([]byte(line))
	return string(token), ok
}

func trim(b []byte) []byte {
	return bytes.TrimFunc(b, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
