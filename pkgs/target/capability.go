package target

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goplus/rtsgen/pkgs/profile"
	"gopkg.in/yaml.v3"
)

// ErrNoProfiles is returned when a target declares no runtime profile.
var ErrNoProfiles = errors.New("no runtime profile declared")

// LoaderSet is the set of loaders a linker script or switch is bound to.
// An empty set means the entry applies regardless of the loader.
//
// In a catalogue the loader may be written either as a single name or as a
// list of names; both decode to the same set.
type LoaderSet []string

// Unconditional reports whether the entry applies to every loader.
func (s LoaderSet) Unconditional() bool {
	return len(s) == 0
}

// Has reports whether loader is in s.
func (s LoaderSet) Has(loader string) bool {
	return slices.Contains(s, loader)
}

func normalizeLoaders(names []string) LoaderSet {
	var out LoaderSet
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// UnmarshalTOML implements toml.Unmarshaler.
func (s *LoaderSet) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*s = normalizeLoaders([]string{v})
	case []any:
		names := make([]string, 0, len(v))
		for _, e := range v {
			name, ok := e.(string)
			if !ok {
				return fmt.Errorf("loader: expected string, got %T", e)
			}
			names = append(names, name)
		}
		*s = normalizeLoaders(names)
	default:
		return fmt.Errorf("loader: expected string or list of strings, got %T", v)
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *LoaderSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*s = normalizeLoaders([]string{name})
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*s = normalizeLoaders(names)
	default:
		return fmt.Errorf("line %d: loader: expected string or list of strings", node.Line)
	}
	return nil
}

// LinkerScript is a linker script shipped with the target.
type LinkerScript struct {
	Name    string    `toml:"name" yaml:"name"`
	Source  string    `toml:"source" yaml:"source"` // path in the source tree, defaults to Name
	Loaders LoaderSet `toml:"loader" yaml:"loader"`
}

// LinkerSwitch is an extra switch passed to the linker.
type LinkerSwitch struct {
	Switch  string    `toml:"switch" yaml:"switch"`
	Loaders LoaderSet `toml:"loader" yaml:"loader"`
}

// ProfileSystem maps a runtime profile to its system description file.
type ProfileSystem struct {
	Profile    profile.Profile
	SystemFile string
}

// Capabilities holds the resolved hardware and loader facts of a target.
// It is plain data: every computed default is applied by Entry.Resolve.
type Capabilities struct {
	Name   string
	Triple string // empty for native targets

	Profiles []ProfileSystem

	HasFPU             bool
	SinglePrecisionFPU bool
	DoublePrecisionFPU bool
	Timer64            bool
	SmallMemory        bool
	SemihostingIO      bool
	Native             bool

	Loaders        []string // empty when the target has no loader set
	LinkerScripts  []LinkerScript
	LinkerSwitches []LinkerSwitch

	CompilerSwitches []string
	CSwitches        []string

	Readme string
}

// IsPikeOS reports whether the target runs on the PikeOS hypervisor.
func (c *Capabilities) IsPikeOS() bool {
	return strings.Contains(c.Triple, "pikeos")
}

// IsVirtualized reports whether the target is hosted by a hypervisor, in
// which case runtimes are not qualified by a board name.
func (c *Capabilities) IsVirtualized() bool {
	return c.IsPikeOS()
}

// HasLoaders reports whether a loader set is declared. An empty list counts
// as no loader set.
func (c *Capabilities) HasLoaders() bool {
	return len(c.Loaders) > 0
}

// SingleScript reports whether the target has exactly one linker script and
// no loader set, in which case the script is user-configurable.
func (c *Capabilities) SingleScript() bool {
	return len(c.LinkerScripts) == 1 && !c.HasLoaders()
}

// ProfileNames returns the declared profiles in canonical order.
func (c *Capabilities) ProfileNames() []profile.Profile {
	out := make([]profile.Profile, len(c.Profiles))
	for i, p := range c.Profiles {
		out[i] = p.Profile
	}
	return out
}

// SystemFile returns the system description file of p.
func (c *Capabilities) SystemFile(p profile.Profile) (string, bool) {
	for _, ps := range c.Profiles {
		if ps.Profile == p {
			return ps.SystemFile, ps.SystemFile != ""
		}
	}
	return "", false
}

// HasLibc reports whether the C library is available with profile p.
func (c *Capabilities) HasLibc(p profile.Profile) bool {
	return p == profile.RavenscarFull
}

// RelPath returns the directory of the target relative to the destination.
func (c *Capabilities) RelPath() string {
	return c.Name + "/"
}
