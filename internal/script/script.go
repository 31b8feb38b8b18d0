package script

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Role is one of the two fixed conversational positions. The wire labels
// match what the web client sends.
type Role string

const (
	FirstHost  Role = "P1"
	SecondHost Role = "P2"
)

const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

// Host binds a role to its display name and the gender used for voice defaults.
type Host struct {
	Role   Role
	Name   string
	Gender string
}

var hosts = map[Role]Host{
	FirstHost:  {Role: FirstHost, Name: "Priya", Gender: GenderFemale},
	SecondHost: {Role: SecondHost, Name: "Arjun", Gender: GenderMale},
}

// HostFor returns the host for a role. A missing role means the first host;
// anything unrecognized is treated as the second host.
func HostFor(r Role) Host {
	return hosts[ParseRole(string(r))]
}

// ParseRole maps a speaker label to a role. An empty label means the first
// host; unknown labels fall through to the second host.
func ParseRole(label string) Role {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "p1", "priya", "first host", "first_host":
		return FirstHost
	default:
		return SecondHost
	}
}

// UnmarshalJSON normalizes free-form speaker labels. A speaker that is not a
// string counts as missing.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = ""
	}
	*r = ParseRole(s)
	return nil
}

// Line is one ordered dialogue entry.
type Line struct {
	Speaker Role   `json:"speaker"`
	Text    string `json:"text"`
}

// Blank reports whether the line has nothing to synthesize.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Script is the on-disk and on-the-wire envelope for a dialogue.
type Script struct {
	Lines []Line `json:"script"`
}

// Alternate rewrites speakers by position: even lines go to the first host,
// odd lines to the second. Text is preserved; model-assigned speakers are
// discarded.
func Alternate(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		speaker := FirstHost
		if i%2 == 1 {
			speaker = SecondHost
		}
		out[i] = Line{Speaker: speaker, Text: l.Text}
	}
	return out
}

func SaveScript(s *Script, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal script: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write script to %s: %w", path, err)
	}
	return nil
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script from %s: %w", path, err)
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script from %s: %w", path, err)
	}
	if len(s.Lines) == 0 {
		return nil, fmt.Errorf("script %s has no lines", path)
	}
	return &s, nil
}
