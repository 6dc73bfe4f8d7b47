// SPDX-License-Identifier: MPL-2.0

package authcfg

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/keyguard/keyguard/internal/securefile"
)

type (
	// Inspection describes a configuration file as Load would see it,
	// without applying anything.
	Inspection struct {
		Path  string
		State securefile.State
		Size  int64
		// Tokens are the normalized non-empty lines in file order.
		Tokens []Token
	}

	// Token is one normalized configuration line.
	Token struct {
		Line  int
		Text  string
		Known bool
	}
)

// Inspect validates path under policy and lists the directives it contains.
// A missing file is reported as Absent; when explicit is set it is an error
// wrapping ErrConfigMissing, as it would be for a conf= argument.
func Inspect(path string, explicit bool, policy securefile.Policy) (Inspection, error) {
	in := Inspection{Path: path}

	res, err := policy.Resolve(path)
	if err != nil {
		return in, loadError(err, path)
	}
	defer func() {
		if cerr := res.Close(); cerr != nil {
			slog.Debug("closing configuration file failed", "path", path, "error", cerr)
		}
	}()

	in.State, in.Size = res.State, res.Size
	if res.State == securefile.Absent {
		if explicit {
			return in, loadError(fmt.Errorf("%w: %s", ErrConfigMissing, path), path)
		}
		return in, nil
	}
	if res.Size == 0 {
		return in, nil
	}

	buf, err := securefile.ReadBounded(res.File, res.Size)
	if err != nil {
		return in, loadError(err, path)
	}

	for i, line := range bytes.Split(buf, []byte{'\n'}) {
		token, ok := Normalize(line)
		if !ok {
			continue
		}
		text := string(token)
		in.Tokens = append(in.Tokens, Token{Line: i + 1, Text: text, Known: Known(text)})
	}

	return in, nil
}
