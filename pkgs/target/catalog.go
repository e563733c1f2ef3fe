package target

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goplus/rtsgen/pkgs/profile"
	"gopkg.in/yaml.v3"
)

// ErrUnknownTarget is returned by Registry.Lookup for an undeclared target.
var ErrUnknownTarget = errors.New("unknown target")

// Amendment is a declarative per-profile customization of a runtime.
type Amendment struct {
	CommonFlags []string            `toml:"common_flags" yaml:"common_flags"`
	AsmFlags    []string            `toml:"asm_flags" yaml:"asm_flags"`
	CFlags      []string            `toml:"c_flags" yaml:"c_flags"`
	Sources     map[string][]string `toml:"sources" yaml:"sources"`           // dir -> source paths
	ConfigFiles map[string]string   `toml:"config_files" yaml:"config_files"` // name -> content
}

// AllProfiles is the amendment key applying to every profile.
const AllProfiles = "*"

// Entry is a target as declared in a catalogue.
type Entry struct {
	Name   string `toml:"name" yaml:"name"`
	Triple string `toml:"triple" yaml:"triple"`
	Native bool   `toml:"native" yaml:"native"`

	Profiles map[string]string `toml:"profiles" yaml:"profiles"` // profile -> system file

	SinglePrecisionFPU *bool `toml:"single_precision_fpu" yaml:"single_precision_fpu"`
	DoublePrecisionFPU bool  `toml:"double_precision_fpu" yaml:"double_precision_fpu"`
	Timer64            bool  `toml:"timer_64" yaml:"timer_64"`
	SmallMemory        bool  `toml:"small_memory" yaml:"small_memory"`
	SemihostingIO      bool  `toml:"semihosting_io" yaml:"semihosting_io"`

	Loaders        []string       `toml:"loaders" yaml:"loaders"`
	LinkerScripts  []LinkerScript `toml:"ld_scripts" yaml:"ld_scripts"`
	LinkerSwitches []LinkerSwitch `toml:"ld_switches" yaml:"ld_switches"`

	CompilerSwitches []string `toml:"compiler_switches" yaml:"compiler_switches"`
	CSwitches        []string `toml:"c_switches" yaml:"c_switches"`

	Readme string `toml:"readme" yaml:"readme"`

	// BSP lists sources shared by every runtime of the target: dir -> paths.
	BSP map[string][]string `toml:"bsp" yaml:"bsp"`
	// Sources lists per-profile sources: profile -> dir -> paths.
	Sources map[string]map[string][]string `toml:"sources" yaml:"sources"`
	// Amend holds per-profile customizations, keyed by profile or AllProfiles.
	Amend map[string]Amendment `toml:"amend" yaml:"amend"`
}

// Resolve computes the capabilities of e, applying the computed defaults.
func (e *Entry) Resolve() (*Capabilities, error) {
	if len(e.Profiles) == 0 {
		return nil, fmt.Errorf("target %s: %w", e.Name, ErrNoProfiles)
	}
	caps := &Capabilities{
		Name:               e.Name,
		Triple:             e.Triple,
		Native:             e.Native,
		DoublePrecisionFPU: e.DoublePrecisionFPU,
		SinglePrecisionFPU: e.DoublePrecisionFPU,
		Timer64:            e.Timer64,
		SmallMemory:        e.SmallMemory,
		SemihostingIO:      e.SemihostingIO,
		CompilerSwitches:   slices.Clone(e.CompilerSwitches),
		CSwitches:          slices.Clone(e.CSwitches),
		Readme:             e.Readme,
	}
	if e.SinglePrecisionFPU != nil {
		caps.SinglePrecisionFPU = *e.SinglePrecisionFPU
	}
	caps.HasFPU = caps.IsPikeOS() || caps.SinglePrecisionFPU || caps.DoublePrecisionFPU

	names := make([]profile.Profile, 0, len(e.Profiles))
	for p := range e.Profiles {
		names = append(names, profile.Profile(p))
	}
	profile.Sort(names)
	for _, p := range names {
		caps.Profiles = append(caps.Profiles, ProfileSystem{Profile: p, SystemFile: e.Profiles[string(p)]})
	}

	caps.Loaders = slices.Clone(e.Loaders)
	for _, s := range e.LinkerScripts {
		if s.Source == "" {
			s.Source = s.Name
		}
		s.Loaders = normalizeLoaders(s.Loaders)
		caps.LinkerScripts = append(caps.LinkerScripts, s)
	}
	for _, s := range e.LinkerSwitches {
		s.Loaders = normalizeLoaders(s.Loaders)
		caps.LinkerSwitches = append(caps.LinkerSwitches, s)
	}
	return caps, nil
}

// AmendmentsFor returns the amendments applying to p: the AllProfiles one
// first, then the profile specific one.
func (e *Entry) AmendmentsFor(p profile.Profile) []Amendment {
	var out []Amendment
	if a, ok := e.Amend[AllProfiles]; ok {
		out = append(out, a)
	}
	if a, ok := e.Amend[string(p)]; ok {
		out = append(out, a)
	}
	return out
}

// -----------------------------------------------------------------------------

// Format is the encoding of a catalogue.
type Format int

const (
	TOML Format = iota
	YAML
)

// FormatOf guesses the catalogue format from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%s: unsupported catalogue format", path)
}

type catalog struct {
	Targets []Entry `toml:"target" yaml:"targets"`
}

// Registry is the catalogue of known targets. It is read-only once loaded.
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry builds a registry from entries. Target names must be unique.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]*Entry, len(entries))}
	for i := range entries {
		e := &entries[i]
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("target #%d: missing name", i+1)
		}
		if _, ok := r.entries[e.Name]; ok {
			return nil, fmt.Errorf("target %s: declared twice", e.Name)
		}
		r.entries[e.Name] = e
	}
	return r, nil
}

// Load decodes a catalogue.
func Load(r io.Reader, format Format) (*Registry, error) {
	var cat catalog
	switch format {
	case TOML:
		if _, err := toml.NewDecoder(r).Decode(&cat); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalogue format %d", format)
	}
	return NewRegistry(cat.Targets...)
}

// LoadFile reads the catalogue at path; the format follows the extension.
func LoadFile(path string) (*Registry, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Lookup returns the catalogue entry of the named target.
func (r *Registry) Lookup(name string) (*Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}
	return e, nil
}

// Capabilities resolves the capabilities of the named target.
func (r *Registry) Capabilities(name string) (*Capabilities, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Resolve()
}

// Names returns the names of all targets, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
