// SPDX-License-Identifier: MPL-2.0

package authcfg

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"bare flag", "cue", "cue", true},
		{"key value", "authfile=/etc/keys", "authfile=/etc/keys", true},
		{"spaces around separator", "  max_devices = 5 # limit\n", "max_devices=5", true},
		{"tabs", "\tprompt\t=\tTouch it\t", "prompt=Touch it", true},
		{"inner value spaces kept", "prompt = Insert  your key", "prompt=Insert  your key", true},
		{"trailing comment on flag", "nodetect # speeds up", "nodetect", true},
		{"comment only", "   # just a comment", "", false},
		{"blank", "", "", false},
		{"whitespace only", " \t\r", "", false},
		{"empty value", "authfile =", "authfile=", true},
		{"second separator kept", "origin = a=b", "origin=a=b", true},
		{"hash ends value", "appid = pam://host#frag", "appid=pam://host", true},
		{"carriage return", "cue\r", "cue", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeString(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeString(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeString(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestNormalize_InPlace(t *testing.T) {
	line := []byte("  max_devices   =   7  ")
	token, ok := Normalize(line)
	if !ok {
		t.Fatal("Normalize() ok = false")
	}
	if string(token) != "max_devices=7" {
		t.Fatalf("Normalize() = %q", token)
	}
	// The token starts after the leading spaces and never extends past line.
	if off := cap(line) - cap(token); off != 2 {
		t.Errorf("token offset = %d, want 2", off)
	}
	if string(line[2:2+len(token)]) != "max_devices=7" {
		t.Errorf("line was not compacted in place: %q", line)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, line := range []string{"a = b", "cue", " userpresence= 1 #x"} {
		once, _ := NormalizeString(line)
		twice, ok := NormalizeString(once)
		if !ok || twice != once {
			t.Errorf("NormalizeString(%q) = %q, then %q", line, once, twice)
		}
	}
}
