// SPDX-License-Identifier: MPL-2.0

// Package render encodes resolved module options for display and export.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"

	"github.com/keyguard/keyguard/internal/authcfg"
)

// Format selects an output encoding.
type Format string

const (
	// FormatText prints one name=value line per option, as in the diagnostic dump.
	FormatText Format = "text"
	// FormatJSON prints an indented JSON object.
	FormatJSON Format = "json"
	// FormatTOML prints a TOML document.
	FormatTOML Format = "toml"
	// FormatCUE prints a CUE struct.
	FormatCUE Format = "cue"
)

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported encodings.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatTOML, FormatCUE}
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats(), f) {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, s, joinFormats())
	}
	return f, nil
}

func (f Format) String() string {
	return string(f)
}

// Options writes the resolved options to w in format f.
func Options(w io.Writer, f Format, o *authcfg.Options) error {
	if f == FormatText {
		return text(w, o.Fields())
	}
	return Snapshot(w, f, o.Snapshot())
}

// Snapshot writes s to w in one of the structured formats.
func Snapshot(w io.Writer, f Format, s authcfg.Snapshot) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	case FormatCUE:
		return encodeCUE(w, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func encodeCUE(w io.Writer, s authcfg.Snapshot) error {
	ctx := cuecontext.New()
	v := ctx.Encode(s)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode cue: %w", err)
	}

	src, err := format.Node(v.Syntax(cue.Final(), cue.Concrete(true)))
	if err != nil {
		return fmt.Errorf("format cue: %w", err)
	}
	if _, err := w.Write(append(src, '\n')); err != nil {
		return fmt.Errorf("write cue: %w", err)
	}
	return nil
}

func text(w io.Writer, fields []authcfg.Field) error {
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s=%s\n", f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func joinFormats() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
