// SPDX-License-Identifier: MPL-2.0

package authcfg

// Snapshot is a serializable copy of resolved Options. It holds no sink and
// stays valid after the Options are closed.
type Snapshot struct {
	MaxDevices       uint              `json:"max_devices" toml:"max_devices"`
	Debug            bool              `json:"debug" toml:"debug"`
	DebugFile        string            `json:"debug_file" toml:"debug_file"`
	DebugToFile      bool              `json:"debug_to_file" toml:"debug_to_file"`
	Manual           bool              `json:"manual" toml:"manual"`
	NoUserOK         bool              `json:"nouserok" toml:"nouserok"`
	OpenAsUser       bool              `json:"openasuser" toml:"openasuser"`
	AlwaysOK         bool              `json:"alwaysok" toml:"alwaysok"`
	Interactive      bool              `json:"interactive" toml:"interactive"`
	Cue              bool              `json:"cue" toml:"cue"`
	NoDetect         bool              `json:"nodetect" toml:"nodetect"`
	Expand           bool              `json:"expand" toml:"expand"`
	SSHFormat        bool              `json:"sshformat" toml:"sshformat"`
	UserPresence     string            `json:"userpresence" toml:"userpresence"`
	UserVerification string            `json:"userverification" toml:"userverification"`
	PINVerification  string            `json:"pinverification" toml:"pinverification"`
	AuthFile         string            `json:"authfile,omitempty" toml:"authfile,omitempty"`
	AuthPendingFile  string            `json:"authpending_file,omitempty" toml:"authpending_file,omitempty"`
	Origin           string            `json:"origin,omitempty" toml:"origin,omitempty"`
	AppID            string            `json:"appid,omitempty" toml:"appid,omitempty"`
	Prompt           string            `json:"prompt,omitempty" toml:"prompt,omitempty"`
	CuePrompt        string            `json:"cue_prompt,omitempty" toml:"cue_prompt,omitempty"`
	Origins          map[string]string `json:"origins,omitempty" toml:"origins,omitempty"`
}

// Snapshot copies the resolved option values.
func (o *Options) Snapshot() Snapshot {
	origins := make(map[string]string, len(o.origins))
	for name, origin := range o.origins {
		origins[name] = origin.String()
	}

	return Snapshot{
		MaxDevices:       o.MaxDevices,
		Debug:            o.Debug,
		DebugFile:        o.sink.Target(),
		DebugToFile:      o.DebugToFile,
		Manual:           o.Manual,
		NoUserOK:         o.NoUserOK,
		OpenAsUser:       o.OpenAsUser,
		AlwaysOK:         o.AlwaysOK,
		Interactive:      o.Interactive,
		Cue:              o.Cue,
		NoDetect:         o.NoDetect,
		Expand:           o.Expand,
		SSHFormat:        o.SSHFormat,
		UserPresence:     o.UserPresence.String(),
		UserVerification: o.UserVerification.String(),
		PINVerification:  o.PINVerification.String(),
		AuthFile:         o.AuthFile,
		AuthPendingFile:  o.AuthPendingFile,
		Origin:           o.Origin,
		AppID:            o.AppID,
		Prompt:           o.Prompt,
		CuePrompt:        o.CuePrompt,
		Origins:          origins,
	}
}
