// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/keyguard/keyguard/internal/authcfg"
	"github.com/keyguard/keyguard/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the keyguard command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "keyguard",
		Short: "Inspect authentication module configuration",
		Long: TitleStyle.Render("keyguard") + SubtitleStyle.Render(" - authentication module configuration") + `

keyguard loads module options exactly as the authentication module does:
the configuration file is validated component by component, read with a
size limit and merged with module arguments, which always win.

` + SubtitleStyle.Render("Examples:") + `
  keyguard options cue max_devices=4      Resolve options for a module line
  keyguard options --format json          Export the resolved options
  keyguard check                          Validate the default configuration file
  keyguard normalize < keyguard.conf      Show the arguments a file turns into
  keyguard explain unsafe_path            Describe a failure kind`,
		SilenceUsage: true,
	}

	root.SetIn(app.stdin)
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	app.registerGlobalFlags(root.PersistentFlags())

	root.AddCommand(newOptionsCommand(app))
	root.AddCommand(newCheckCommand(app))
	root.AddCommand(newNormalizeCommand(app))
	root.AddCommand(newExplainCommand(app))

	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the status of the failure kind.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// handleError prints errors that no command has reported yet.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// fail reports a load failure with its remediation hints and returns the
// ExitError carrying the matching exit status.
func fail(cmd *cobra.Command, st settings, err error) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, st.paint(ErrorStyle, errorIcon+" Error: ")+issue.FormatError(err, st.Verbose))

	if i := issue.Get(authcfg.IssueID(err)); i != nil && i.Id() != issue.ConfigLoadFailedId {
		fmt.Fprintln(stderr, st.paint(SubtitleStyle, "Run 'keyguard explain "+i.Name()+"' for details."))
	}

	return &ExitError{Code: exitCodeFor(err), Err: err}
}
