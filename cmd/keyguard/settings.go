// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/keyguard/keyguard/internal/render"
	"github.com/keyguard/keyguard/internal/securefile"
)

// Setting keys. Each one is bound to a global flag and to a KEYGUARD_*
// environment variable, e.g. KEYGUARD_TRUSTED_UID.
const (
	keyRoot            = "root"
	keyTrustedUID      = "trusted-uid"
	keySkipOwnerCheck  = "insecure-skip-owner-check"
	keyStrictAncestors = "strict-ancestors"
	keyFlags           = "flags"
	keyFormat          = "format"
	keyNoColor         = "no-color"
	keyVerbose         = "verbose"
)

// settings are the resolved global flags.
type settings struct {
	Policy  securefile.Policy
	Flags   int
	Format  render.Format
	NoColor bool
	Verbose bool
}

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("KEYGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyRoot, "/")
	v.SetDefault(keyTrustedUID, 0)
	v.SetDefault(keyFormat, string(render.FormatText))
	return v
}

// registerGlobalFlags adds the global flags to fs and binds them.
func (a *App) registerGlobalFlags(fs *pflag.FlagSet) {
	fs.String(keyRoot, "/", "directory configuration paths are resolved under")
	fs.Uint32(keyTrustedUID, 0, "uid that must own every path component")
	fs.Bool(keySkipOwnerCheck, false, "do not check path ownership (testing only)")
	fs.Bool(keyStrictAncestors, false, "refuse symlinked directories on the path")
	fs.Int(keyFlags, 0, "invocation flags reported in the debug dump")
	fs.String(keyFormat, string(render.FormatText), "output format: text, json, toml or cue")
	fs.Bool(keyNoColor, false, "disable styled output")
	fs.BoolP(keyVerbose, "v", false, "show the full error chain")

	for _, name := range []string{
		keyRoot, keyTrustedUID, keySkipOwnerCheck, keyStrictAncestors,
		keyFlags, keyFormat, keyNoColor, keyVerbose,
	} {
		// BindPFlag only fails for a nil flag.
		_ = a.v.BindPFlag(name, fs.Lookup(name))
	}
}

// settings resolves the global flags, environment and defaults.
func (a *App) settings() (settings, error) {
	format, err := render.ParseFormat(a.v.GetString(keyFormat))
	if err != nil {
		return settings{}, err
	}

	noColor := a.v.GetBool(keyNoColor)
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		noColor = true
	}

	return settings{
		Policy: securefile.Policy{
			Root:            a.v.GetString(keyRoot),
			TrustedUID:      a.v.GetUint32(keyTrustedUID),
			SkipOwnerCheck:  a.v.GetBool(keySkipOwnerCheck),
			StrictAncestors: a.v.GetBool(keyStrictAncestors),
		},
		Flags:   a.v.GetInt(keyFlags),
		Format:  format,
		NoColor: noColor,
		Verbose: a.v.GetBool(keyVerbose),
	}, nil
}

// paint renders text with style unless styled output is disabled.
func (s settings) paint(style lipgloss.Style, text string) string {
	if s.NoColor {
		return text
	}
	return style.Render(text)
}
