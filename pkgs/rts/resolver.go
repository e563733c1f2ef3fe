package rts

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"

	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/goplus/rtsgen/pkgs/target"
)

// ErrNoSystemFile is returned when a declared profile has no system
// description file.
var ErrNoSystemFile = errors.New("no system file")

// ScenarioProfile is the scenario variable naming the runtime profile.
const ScenarioProfile = "RTS_Profile"

// ConfigError reports an invalid target configuration. It is raised before
// anything is written.
type ConfigError struct {
	Target  string
	Profile profile.Profile // empty when not profile specific
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("target %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("target %s, profile %s: %v", e.Target, e.Profile, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Aggregator collects the sources and scenario variables of runtimes.
type Aggregator interface {
	// Scenarios returns the scenario variables of profile p.
	Scenarios(p profile.Profile, mathLib bool) (map[string]string, error)
	// Sources returns the initial per-profile source layout of p.
	Sources(p profile.Profile) (Layout, error)
	// BSPSources returns the sources shared by every runtime of the target.
	BSPSources() (Layout, error)
	// IsTasking reports whether dir holds tasking-support sources.
	IsTasking(dir string) bool
	// FS is the source tree every source path is relative to.
	FS() fs.FS
}

// Customize refines the descriptor of a profile. It runs once when the
// target is created and once more, on a private copy, before installation,
// so it should be idempotent.
type Customize func(p profile.Profile, d *Descriptor) error

// Chain returns a Customize running every non-nil hook in order.
func Chain(hooks ...Customize) Customize {
	return func(p profile.Profile, d *Descriptor) error {
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if err := h(p, d); err != nil {
				return err
			}
		}
		return nil
	}
}

// Amendments returns the hook applying the declarative amendments of a
// catalogue entry.
func Amendments(e *target.Entry) Customize {
	return func(p profile.Profile, d *Descriptor) error {
		for _, a := range e.AmendmentsFor(p) {
			d.AddCommonFlags(a.CommonFlags...)
			d.AddAsmFlags(a.AsmFlags...)
			d.AddCFlags(a.CFlags...)
			for _, dir := range slices.Sorted(maps.Keys(a.Sources)) {
				d.AddSources(dir, FilesOf(a.Sources[dir]...))
			}
			maps.Copy(d.ConfigFiles, a.ConfigFiles)
		}
		return nil
	}
}

// SetScenarios returns the hook overriding the scenario variables of every
// profile with vars. RTS_Profile cannot be overridden.
func SetScenarios(vars map[string]string) Customize {
	return func(p profile.Profile, d *Descriptor) error {
		if _, ok := vars[ScenarioProfile]; ok {
			return fmt.Errorf("scenario %s is set by the profile", ScenarioProfile)
		}
		if d.Scenarios == nil {
			d.Scenarios = map[string]string{}
		}
		maps.Copy(d.Scenarios, vars)
		return nil
	}
}

// Resolve computes the descriptor of profile p for a target.
func Resolve(caps *target.Capabilities, p profile.Profile, agg Aggregator, flags BuildFlags, hook Customize) (*Descriptor, error) {
	sys, ok := caps.SystemFile(p)
	if !ok {
		return nil, &ConfigError{Target: caps.Name, Profile: p, Err: ErrNoSystemFile}
	}

	d := newDescriptor(p, agg.IsTasking)

	// zfp and ravenscar-sfp runtimes go without the math library.
	mathLib := p.Category() == profile.Full
	vars, err := agg.Scenarios(p, mathLib)
	if err != nil {
		return nil, &ConfigError{Target: caps.Name, Profile: p, Err: err}
	}
	maps.Copy(d.Scenarios, vars)
	if _, ok := d.Scenarios[ScenarioProfile]; !ok {
		d.Scenarios[ScenarioProfile] = string(p)
	}

	d.AddSources("arch", Files{"system.ads": "src/system/" + sys})
	d.Flags = flags.Clone()

	layout, err := agg.Sources(p)
	if err != nil {
		return nil, &ConfigError{Target: caps.Name, Profile: p, Err: err}
	}
	for _, dir := range slices.Sorted(maps.Keys(layout)) {
		d.AddSources(dir, layout[dir])
	}

	if hook != nil {
		if err := hook(p, d); err != nil {
			return nil, fmt.Errorf("target %s, profile %s: %w", caps.Name, p, err)
		}
	}
	return d, nil
}

// -----------------------------------------------------------------------------

// Options configures a Target.
type Options struct {
	Aggregator Aggregator
	Customize  Customize
	// Flags overrides DefaultFlags when set.
	Flags *BuildFlags
}

// Target handles the creation of the runtimes of a board. It exclusively
// owns the descriptors of its runtimes.
type Target struct {
	caps        *target.Capabilities
	agg         Aggregator
	customize   Customize
	flags       BuildFlags
	configFiles map[string]string
	runtimes    map[profile.Profile]*Descriptor
}

// New resolves every profile declared by caps.
func New(caps *target.Capabilities, opts Options) (*Target, error) {
	if opts.Aggregator == nil {
		return nil, fmt.Errorf("target %s: no source aggregator", caps.Name)
	}
	if len(caps.Profiles) == 0 {
		return nil, &ConfigError{Target: caps.Name, Err: target.ErrNoProfiles}
	}
	t := &Target{
		caps:        caps,
		agg:         opts.Aggregator,
		customize:   opts.Customize,
		flags:       DefaultFlags(),
		configFiles: map[string]string{},
		runtimes:    make(map[profile.Profile]*Descriptor, len(caps.Profiles)),
	}
	if opts.Flags != nil {
		t.flags = opts.Flags.Clone()
	}
	if caps.Readme != "" {
		readme, err := fs.ReadFile(t.agg.FS(), caps.Readme)
		if err != nil {
			return nil, &ConfigError{Target: caps.Name, Err: err}
		}
		t.configFiles["README"] = string(readme)
	}
	for _, p := range caps.ProfileNames() {
		d, err := Resolve(caps, p, t.agg, t.flags, t.customize)
		if err != nil {
			return nil, err
		}
		t.runtimes[p] = d
	}
	return t, nil
}

// Name returns the name of the target.
func (t *Target) Name() string {
	return t.caps.Name
}

// Capabilities returns the capabilities the target was created from.
func (t *Target) Capabilities() *target.Capabilities {
	return t.caps
}

// Aggregator returns the source aggregator of the target.
func (t *Target) Aggregator() Aggregator {
	return t.agg
}

// ConfigFiles returns the companion files written in every runtime.
func (t *Target) ConfigFiles() map[string]string {
	return t.configFiles
}

// Profiles returns the resolved profiles in canonical order.
func (t *Target) Profiles() []profile.Profile {
	ps := slices.Collect(maps.Keys(t.runtimes))
	profile.Sort(ps)
	return ps
}

// Descriptor returns the descriptor of p, which the caller may refine.
func (t *Target) Descriptor(p profile.Profile) (*Descriptor, bool) {
	d, ok := t.runtimes[p]
	return d, ok
}

// Prepare returns private copies of the descriptors to install, with the
// customization hook run once more on each. Experimental profiles are
// dropped unless requested.
func (t *Target) Prepare(experimental bool) ([]*Descriptor, error) {
	var out []*Descriptor
	for _, p := range t.Profiles() {
		if !experimental && !p.IsStable() {
			continue
		}
		d := t.runtimes[p].Clone()
		if t.customize != nil {
			if err := t.customize(p, d); err != nil {
				return nil, fmt.Errorf("target %s, profile %s: %w", t.Name(), p, err)
			}
		}
		out = append(out, d)
	}
	return out, nil
}
