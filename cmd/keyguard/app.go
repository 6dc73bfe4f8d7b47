// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/keyguard/keyguard/internal/authcfg"
)

type (
	// App is the composition root of the CLI. Command handlers receive an App
	// and reach the configuration loader and global settings through it.
	App struct {
		Loader authcfg.Provider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
		v      *viper.Viper
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Loader authcfg.Provider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Loader: deps.Loader,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		v:      newSettings(),
	}
	if app.Loader == nil {
		app.Loader = authcfg.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}
