// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyguard/keyguard/internal/issue"
)

// newExplainCommand creates the `keyguard explain` command.
func newExplainCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [kind]",
		Short: "Describe configuration failure kinds",
		Long: `Without arguments, list every failure kind with its exit status.
With a kind, print its explanation and remediation.

Examples:
  keyguard explain
  keyguard explain unsafe_path`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return kindNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.settings()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintln(w, st.paint(TitleStyle, "Failure kinds"))
				for _, i := range issue.Values() {
					fmt.Fprintf(w, "  %s exit %d\n", st.paint(CmdStyle, fmt.Sprintf("%-22s", i.Name())), i.ExitCode())
				}
				return nil
			}

			i := issue.Lookup(args[0])
			if i == nil {
				return fmt.Errorf("unknown failure kind %q (want one of %s)", args[0], strings.Join(kindNames(), ", "))
			}

			style := "dark"
			if st.NoColor {
				style = "notty"
			}
			out, err := i.Render(style)
			if err != nil {
				return fmt.Errorf("render %s: %w", i.Name(), err)
			}
			fmt.Fprint(w, out)
			return nil
		},
	}
}

func kindNames() []string {
	values := issue.Values()
	names := make([]string, 0, len(values))
	for _, i := range values {
		names = append(names, i.Name())
	}
	return names
}
