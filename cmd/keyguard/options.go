// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/keyguard/keyguard/internal/authcfg"
	"github.com/keyguard/keyguard/internal/render"
)

// newOptionsCommand creates the `keyguard options` command.
func newOptionsCommand(app *App) *cobra.Command {
	var origins bool

	cmd := &cobra.Command{
		Use:   "options [directive...]",
		Short: "Resolve module options from the configuration file and arguments",
		Long: `Resolve module options the way the authentication module does.

Positional arguments are module arguments, exactly as they would appear on the
module's configuration line. conf=<path> selects the configuration file; the
last conf= wins and a missing explicit file is an error. Every other argument
overrides the same directive from the file.

Examples:
  keyguard options
  keyguard options cue max_devices=4 userpresence=0
  keyguard options conf=/etc/keyguard/alt.conf --format toml
  keyguard options --origins authfile=/etc/keys`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptions(cmd, app, args, origins)
		},
	}

	cmd.Flags().BoolVar(&origins, "origins", false, "show which source set each option")

	return cmd
}

func runOptions(cmd *cobra.Command, app *App, args []string, origins bool) error {
	st, err := app.settings()
	if err != nil {
		return err
	}

	o, err := app.Loader.Load(args, authcfg.LoadOptions{Flags: st.Flags, Policy: st.Policy})
	if err != nil {
		return fail(cmd, st, err)
	}
	defer func() {
		if cerr := o.Close(); cerr != nil {
			slog.Debug("closing options failed", "error", cerr)
		}
	}()

	if origins && st.Format == render.FormatText {
		return writeOrigins(cmd.OutOrStdout(), st, o.Fields())
	}
	return render.Options(cmd.OutOrStdout(), st.Format, o)
}

// writeOrigins prints one aligned row per option with its provenance.
func writeOrigins(w io.Writer, st settings, fields []authcfg.Field) error {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Name))
	}

	for _, f := range fields {
		name := fmt.Sprintf("%-*s", width, f.Name)
		origin := fmt.Sprintf("%-8s", f.Origin.String())
		if f.Origin == authcfg.OriginDefault {
			origin = st.paint(SubtitleStyle, origin)
		} else {
			origin = st.paint(SuccessStyle, origin)
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %s\n", st.paint(CmdStyle, name), origin, f.Value); err != nil {
			return err
		}
	}
	return nil
}
