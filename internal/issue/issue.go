// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	InvalidPathId Id = iota + 1
	UnsafePathId
	ConfigMissingId
	ConfigTooLargeId
	ConfigReadFailedId
	ConfigLoadFailedId
	HostNotSupportedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	name     string      // short kind name, e.g. "unsafe_path"
	exitCode int         // process exit status for this kind of failure
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink // external links that might be useful for the operator
}

func (i *Issue) Id() Id {
	return i.id
}

// Name is the stable short identifier of the failure kind.
func (i *Issue) Name() string {
	return i.name
}

// ExitCode is the process status the CLI uses for this failure kind.
func (i *Issue) ExitCode() int {
	return i.exitCode
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	invalidPathIssue = &Issue{
		id:       InvalidPathId,
		name:     "invalid_input",
		exitCode: 2,
		mdMsg: `
# Invalid configuration path!
The configuration path must be absolute and must name a file.

## Examples
- Accepted: ` + "`conf=/etc/security/keyguard.conf`" + `
- Rejected: ` + "`conf=keyguard.conf`" + ` (relative)
- Rejected: ` + "`conf=/etc/security/`" + ` (ends in a separator)`,
	}

	unsafePathIssue = &Issue{
		id:       UnsafePathId,
		name:     "unsafe_path",
		exitCode: 3,
		mdMsg: `
# Configuration path is not trusted!
Every directory leading to the configuration file, and the file itself, is
checked before it is read. The module refuses the file when any of them:

- is owned by someone other than root
- is writable by its group or by everyone
- is not a directory (for ancestors) or not a regular file (for the file)
- is a symbolic link (for the file)

## Things you can try
~~~
# chown root:root /etc/security/keyguard.conf
# chmod 0644 /etc/security/keyguard.conf
# chmod go-w /etc/security
~~~`,
		extLinks: []HttpLink{"https://man7.org/linux/man-pages/man2/openat.2.html"},
	}

	configMissingIssue = &Issue{
		id:       ConfigMissingId,
		name:     "config_missing",
		exitCode: 4,
		mdMsg: `
# Configuration file not found!
A ` + "`conf=`" + ` argument named a file that does not exist.
Only the default file (` + "`/etc/security/keyguard.conf`" + `) may be missing.

## Things you can try
- Fix the path in the module arguments
- Remove ` + "`conf=`" + ` to use the default file`,
	}

	configTooLargeIssue = &Issue{
		id:       ConfigTooLargeId,
		name:     "resource_limit",
		exitCode: 5,
		mdMsg: `
# Configuration file too large!
The configuration file exceeds the 4096 byte limit and was not read.

## Things you can try
- Remove comments and unused directives
- Move long values such as key mappings into the file named by ` + "`authfile=`",
	}

	configReadFailedIssue = &Issue{
		id:       ConfigReadFailedId,
		name:     "io_error",
		exitCode: 6,
		mdMsg: `
# Configuration file could not be read!
Opening or reading the configuration file failed for a reason other than the
file being missing.

## Things you can try
- Check that the file and its directories are readable by the authenticating process
- Check the system log for storage errors`,
	}

	configLoadFailedIssue = &Issue{
		id:       ConfigLoadFailedId,
		name:     "load_failed",
		exitCode: 1,
		mdMsg: `
# Failed to load configuration!
The module options could not be loaded.

## Example configuration
~~~
# /etc/security/keyguard.conf
cue
max_devices = 4
authfile = /etc/keyguard/keys
~~~`,
	}

	hostNotSupportedIssue = &Issue{
		id:       HostNotSupportedId,
		name:     "unsupported_platform",
		exitCode: 1,
		mdMsg: `
# Host not supported!
Secure configuration loading needs descriptor-relative opens and POSIX file
ownership, which this platform does not provide.`,
	}

	issues = map[Id]*Issue{
		invalidPathIssue.id:      invalidPathIssue,
		unsafePathIssue.id:       unsafePathIssue,
		configMissingIssue.id:    configMissingIssue,
		configTooLargeIssue.id:   configTooLargeIssue,
		configReadFailedIssue.id: configReadFailedIssue,
		configLoadFailedIssue.id: configLoadFailedIssue,
		hostNotSupportedIssue.id: hostNotSupportedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its short name.
func Lookup(name string) *Issue {
	for _, i := range issues {
		if i.name == name {
			return i
		}
	}
	return nil
}
