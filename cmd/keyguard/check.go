// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/keyguard/keyguard/internal/authcfg"
	"github.com/keyguard/keyguard/internal/securefile"
)

// newCheckCommand creates the `keyguard check` command.
func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a configuration file and list its directives",
		Long: `Validate a configuration file the way the module would before reading it.

Without arguments the default file is checked, and its absence is fine.
A path given explicitly must exist, as with conf=<path>.

Examples:
  keyguard check
  keyguard check /etc/keyguard/alt.conf
  keyguard check --root ./fixture --trusted-uid 1000 /etc/keyguard.conf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.settings()
			if err != nil {
				return err
			}

			path, explicit := authcfg.DefaultPath, false
			if len(args) == 1 {
				path, explicit = args[0], true
			}

			in, err := authcfg.Inspect(path, explicit, st.Policy)
			if err != nil {
				return fail(cmd, st, err)
			}
			return writeInspection(cmd, st, in)
		},
	}
}

func writeInspection(cmd *cobra.Command, st settings, in authcfg.Inspection) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, st.paint(TitleStyle, "Configuration: ")+in.Path)

	if in.State == securefile.Absent {
		fmt.Fprintf(w, "%s absent, built-in defaults apply\n", st.paint(SuccessStyle, successIcon))
		return nil
	}

	fmt.Fprintf(w, "%s trusted, %s, %d directive(s)\n",
		st.paint(SuccessStyle, successIcon),
		humanize.Bytes(uint64(in.Size)),
		len(in.Tokens),
	)

	ignored := 0
	for _, t := range in.Tokens {
		if t.Known {
			fmt.Fprintf(w, "  %s %s\n", st.paint(SuccessStyle, successIcon), st.paint(CmdStyle, t.Text))
			continue
		}
		ignored++
		fmt.Fprintf(w, "  %s %s %s\n",
			st.paint(WarningStyle, warningIcon),
			t.Text,
			st.paint(SubtitleStyle, fmt.Sprintf("(line %d, ignored)", t.Line)),
		)
	}

	if ignored > 0 {
		fmt.Fprintln(w, st.paint(WarningStyle, fmt.Sprintf("%d unknown directive(s) will be ignored", ignored)))
	}
	return nil
}
