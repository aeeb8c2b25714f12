package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Built-in profile names.
const (
	ProfileOriginal   = "original"
	ProfileBalanced   = "balanced"
	ProfileCompressed = "compressed"
)

// Profile describes how a trimmed clip is written. A profile with StreamCopy
// set keeps the source bitstream; anything else re-encodes.
type Profile struct {
	Name       string
	StreamCopy bool
	VideoCodec string
	CRF        int
	Preset     string
	AudioCodec string
	ExtraArgs  []string
}

// Args returns the output encoding arguments for the profile.
func (p Profile) Args() []string {
	if p.StreamCopy {
		return append([]string{"-c", "copy"}, p.ExtraArgs...)
	}
	args := make([]string, 0, 8+len(p.ExtraArgs))
	if p.VideoCodec != "" {
		args = append(args, "-vcodec", p.VideoCodec)
	}
	if p.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(p.CRF))
	}
	if p.Preset != "" {
		args = append(args, "-preset", p.Preset)
	}
	if p.AudioCodec != "" {
		args = append(args, "-acodec", p.AudioCodec)
	}
	return append(args, p.ExtraArgs...)
}

// DefaultProfiles returns the built-in profiles.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileOriginal:   {Name: ProfileOriginal, StreamCopy: true},
		ProfileBalanced:   {Name: ProfileBalanced, VideoCodec: "libx264", CRF: 28, Preset: "ultrafast"},
		ProfileCompressed: {Name: ProfileCompressed, VideoCodec: "libx264", CRF: 32, Preset: "ultrafast"},
	}
}

// ProfileLibrary stores named profiles.
type ProfileLibrary struct {
	profiles map[string]Profile
}

// NewProfileLibrary constructs a library from a map of profiles.
func NewProfileLibrary(m map[string]Profile) *ProfileLibrary {
	cp := make(map[string]Profile, len(m))
	for k, v := range m {
		v.Name = k
		cp[k] = v
	}
	return &ProfileLibrary{profiles: cp}
}

// DefaultProfileLibrary holds original, balanced and compressed.
func DefaultProfileLibrary() *ProfileLibrary {
	return NewProfileLibrary(DefaultProfiles())
}

// Get retrieves a profile by name.
func (l *ProfileLibrary) Get(name string) (Profile, bool) {
	if l == nil {
		return Profile{}, false
	}
	p, ok := l.profiles[name]
	return p, ok
}

// Names lists the profiles in sorted order.
func (l *ProfileLibrary) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.profiles))
	for name := range l.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadProfileFile reads profiles from a YAML file and layers them over the
// built-in set, so a file may redefine "balanced" or add new names.
func LoadProfileFile(path string) (*ProfileLibrary, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("load profile file: %w", err)
	}
	type rawProfile struct {
		StreamCopy bool     `yaml:"stream_copy"`
		VideoCodec string   `yaml:"video_codec"`
		CRF        int      `yaml:"crf"`
		Preset     string   `yaml:"preset"`
		AudioCodec string   `yaml:"audio_codec"`
		ExtraArgs  []string `yaml:"extra_args"`
	}
	var payload struct {
		Profiles map[string]rawProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse profile file: %w", err)
	}

	profiles := DefaultProfiles()
	for name, rp := range payload.Profiles {
		if !rp.StreamCopy && rp.VideoCodec == "" {
			return nil, fmt.Errorf("profile %q: video_codec is required unless stream_copy is set", name)
		}
		if rp.CRF < 0 || rp.CRF > 51 {
			return nil, fmt.Errorf("profile %q: crf %d out of range 0-51", name, rp.CRF)
		}
		profiles[name] = Profile{
			Name:       name,
			StreamCopy: rp.StreamCopy,
			VideoCodec: rp.VideoCodec,
			CRF:        rp.CRF,
			Preset:     rp.Preset,
			AudioCodec: rp.AudioCodec,
			ExtraArgs:  append([]string(nil), rp.ExtraArgs...),
		}
	}
	return NewProfileLibrary(profiles), nil
}
