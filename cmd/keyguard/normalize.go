// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyguard/keyguard/internal/authcfg"
	"github.com/keyguard/keyguard/internal/securefile"
)

// newNormalizeCommand creates the `keyguard normalize` command.
func newNormalizeCommand(app *App) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print the module arguments equivalent to configuration lines on stdin",
		Long: `Read configuration lines from stdin and print each one as the module
argument it is applied as. Comments and blank lines are dropped and the
whitespace around '=' is removed.

Examples:
  keyguard normalize < /etc/security/keyguard.conf
  echo "max_devices = 4 # two spares" | keyguard normalize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := app.settings()
			if err != nil {
				return err
			}

			unknown := 0
			sc := bufio.NewScanner(cmd.InOrStdin())
			sc.Buffer(make([]byte, 0, securefile.MaxFileSize), securefile.MaxFileSize)
			for line := 1; sc.Scan(); line++ {
				token, ok := authcfg.Normalize(sc.Bytes())
				if !ok {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(token))
				if !authcfg.Known(string(token)) {
					unknown++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s line %d: unknown directive %q\n",
						st.paint(WarningStyle, warningIcon), line, token)
				}
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read configuration lines: %w", err)
			}

			if strict && unknown > 0 {
				cmd.SilenceErrors = true
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when a directive is unknown")

	return cmd
}
