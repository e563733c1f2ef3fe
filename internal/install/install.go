// Package install writes the runtimes of a target to a destination
// directory.
//
// Destination layout:
//
//	dest/
//	  README-<target>.txt
//	  <profile>_<target>.gpr        # installation project, one per runtime
//	  <target>/
//	    ld/<script>                 # linker scripts
//	    <bsp dir>/...               # sources shared by every runtime
//	    <profile>/
//	      obj/ adalib/ user_srcs/
//	      <source dir>/...          # sources specific to the runtime
//	      ada_source_path ada_object_path runtime.xml
//	      install.gpr target_options.gpr libgnat.gpr [libgnarl.gpr]
package install

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goplus/rtsgen/pkgs/buildsys/gpr"
	"github.com/goplus/rtsgen/pkgs/langs"
	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/goplus/rtsgen/pkgs/rts"
	"github.com/qiniu/x/log"
)

// ErrState is returned when an installation step runs out of order.
var ErrState = errors.New("invalid installation state")

// State is the progress of an installation.
type State int

const (
	Uninitialized State = iota
	ProfilesResolved
	SourcesCopied
	DescriptorsRendered
	Written
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ProfilesResolved:
		return "profiles resolved"
	case SourcesCopied:
		return "sources copied"
	case DescriptorsRendered:
		return "descriptors rendered"
	case Written:
		return "written"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options configures an installation.
type Options struct {
	Destination string
	// Prefix overrides the toolchain lib/gnat directory in install prefixes.
	Prefix string
	// Experimental keeps the profiles outside of profile.Stable.
	Experimental bool
}

// Result reports what an installation did.
type Result struct {
	// Files lists the written files, relative to the destination, in write
	// order. On failure it stops at the failing file.
	Files []string
	// Profiles lists the installed runtimes.
	Profiles []profile.Profile
}

// runtime is the installation plan of one runtime.
type runtime struct {
	desc *rts.Descriptor
	dir  string // relative to the destination

	gnatDirs   []string
	gnarlDirs  []string
	gnatLangs  langs.Set
	gnarlLangs langs.Set
}

type renderedFile struct {
	name string // relative to the destination
	data []byte
}

// Installer installs the runtimes of a target. Steps run in order:
// ResolveProfiles, CopySources, Render and Write.
type Installer struct {
	tgt   *rts.Target
	opts  Options
	dest  string
	state State

	runtimes    []*runtime
	linkSources []string

	bspGnat      []string
	bspGnarl     []string
	bspGnatLang  langs.Set
	bspGnarlLang langs.Set

	rendered []renderedFile
	res      Result
}

// New returns an installer of the runtimes of t.
func New(t *rts.Target, opts Options) *Installer {
	return &Installer{tgt: t, opts: opts}
}

// State returns the current state of the installation.
func (in *Installer) State() State {
	return in.state
}

// Result returns what the installation did so far.
func (in *Installer) Result() *Result {
	return &in.res
}

func (in *Installer) expect(s State) error {
	if in.state != s {
		return fmt.Errorf("%w: %s, want %s", ErrState, in.state, s)
	}
	return nil
}

func (in *Installer) errorf(p profile.Profile, err error) error {
	if p == "" {
		return fmt.Errorf("%s: %w", in.tgt.Name(), err)
	}
	return fmt.Errorf("%s/%s: %w", in.tgt.Name(), p, err)
}

// ResolveProfiles selects the runtimes to install and computes their
// install prefixes.
func (in *Installer) ResolveProfiles() error {
	if err := in.expect(Uninitialized); err != nil {
		return err
	}
	if in.opts.Destination == "" {
		return in.errorf("", errors.New("no destination"))
	}
	dest, err := filepath.Abs(in.opts.Destination)
	if err != nil {
		return in.errorf("", err)
	}
	in.dest = dest

	descs, err := in.tgt.Prepare(in.opts.Experimental)
	if err != nil {
		return err
	}
	if !in.opts.Experimental {
		for _, p := range in.tgt.Profiles() {
			if !p.IsStable() {
				log.Warnf("%s: skipping experimental profile %s", in.tgt.Name(), p)
			}
		}
	}
	caps := in.tgt.Capabilities()
	for _, d := range descs {
		d.Prefix = gpr.InstallPrefix(caps, d.Profile, in.opts.Prefix)
		in.runtimes = append(in.runtimes, &runtime{
			desc: d,
			dir:  path.Join(caps.Name, string(d.Profile)),
		})
		in.res.Profiles = append(in.res.Profiles, d.Profile)
	}
	if len(in.runtimes) == 0 {
		log.Warnf("%s: no runtime to install", in.tgt.Name())
	}
	in.state = ProfilesResolved
	return nil
}

func (in *Installer) hasTasking() bool {
	for _, rt := range in.runtimes {
		if rt.desc.Profile.IsTasking() {
			return true
		}
	}
	return false
}

// CopySources copies the README, the linker scripts, the sources shared by
// every runtime and the sources of each runtime.
func (in *Installer) CopySources() error {
	if err := in.expect(ProfilesResolved); err != nil {
		return err
	}
	caps := in.tgt.Capabilities()
	if err := os.MkdirAll(in.dest, 0o755); err != nil {
		return in.errorf("", err)
	}

	if readme, ok := in.tgt.ConfigFiles()["README"]; ok {
		if err := in.writeFile("README-"+caps.Name+".txt", []byte(readme)); err != nil {
			return in.errorf("", err)
		}
	}

	for _, s := range caps.LinkerScripts {
		if err := in.copyFile(path.Join(caps.Name, "ld", s.Name), s.Source); err != nil {
			return in.errorf("", err)
		}
		in.linkSources = append(in.linkSources, path.Join("..", "ld", s.Name))
	}

	if err := in.copyBSP(); err != nil {
		return in.errorf("", err)
	}

	for _, rt := range in.runtimes {
		if err := in.copyRuntime(rt); err != nil {
			return in.errorf(rt.desc.Profile, err)
		}
	}
	in.state = SourcesCopied
	return nil
}

func (in *Installer) copyBSP() error {
	agg := in.tgt.Aggregator()
	layout, err := agg.BSPSources()
	if err != nil {
		return err
	}
	caps := in.tgt.Capabilities()
	tasking := in.hasTasking()
	for _, dir := range slices.Sorted(maps.Keys(layout)) {
		files := layout[dir]
		if len(files) == 0 {
			continue
		}
		isTasking := agg.IsTasking(dir)
		if isTasking && !tasking {
			continue
		}
		if err := in.copyFiles(path.Join(caps.Name, dir), files); err != nil {
			return err
		}
		set := langs.Classify(slices.Collect(maps.Keys(files)))
		// Relative to the runtime directories.
		rel := path.Join("..", dir)
		if isTasking {
			in.bspGnarl = append(in.bspGnarl, rel)
			in.bspGnarlLang = in.bspGnarlLang.Union(set)
		} else {
			in.bspGnat = append(in.bspGnat, rel)
			in.bspGnatLang = in.bspGnatLang.Union(set)
		}
	}
	return nil
}

func (in *Installer) copyRuntime(rt *runtime) error {
	rt.gnatDirs = slices.Clone(in.bspGnat)
	rt.gnatLangs = in.bspGnatLang
	if rt.desc.Profile.IsTasking() {
		rt.gnarlDirs = slices.Clone(in.bspGnarl)
		rt.gnarlLangs = in.bspGnarlLang
	}

	for _, sub := range []string{"obj", "adalib", "user_srcs"} {
		if err := os.MkdirAll(filepath.Join(in.dest, rt.dir, sub), 0o755); err != nil {
			return err
		}
	}

	copySet := func(set rts.SourceSet, dirs *[]string, found *langs.Set) error {
		for _, dir := range set.Dirs() {
			src := set[dir]
			if len(src.Files) == 0 {
				continue
			}
			if !slices.Contains(*dirs, dir) {
				*dirs = append(*dirs, dir)
			}
			*found = found.Union(src.Langs)
			if err := in.copyFiles(path.Join(rt.dir, dir), src.Files); err != nil {
				return err
			}
		}
		return nil
	}
	if err := copySet(rt.desc.Core, &rt.gnatDirs, &rt.gnatLangs); err != nil {
		return err
	}
	if err := copySet(rt.desc.Tasking, &rt.gnarlDirs, &rt.gnarlLangs); err != nil {
		return err
	}
	rt.gnatDirs = append(rt.gnatDirs, "user_srcs")
	slices.Sort(rt.gnatDirs)
	slices.Sort(rt.gnarlDirs)
	return nil
}

// Render renders the descriptors and sub-projects of every runtime. Nothing
// is written.
func (in *Installer) Render() error {
	if err := in.expect(SourcesCopied); err != nil {
		return err
	}
	caps := in.tgt.Capabilities()
	for _, rt := range in.runtimes {
		d := rt.desc
		add := func(name string, data []byte) {
			in.rendered = append(in.rendered, renderedFile{name: path.Join(rt.dir, name), data: data})
		}

		add("ada_source_path", sourcePath(rt.gnatDirs, rt.gnarlDirs))
		add("ada_object_path", []byte("adalib\n"))

		cfg := in.tgt.ConfigFiles()
		for _, name := range slices.Sorted(maps.Keys(cfg)) {
			add(name, []byte(cfg[name]))
		}
		add(gpr.RuntimeXML, gpr.RenderRuntimeXML(caps, d))

		rtsFiles := []string{gpr.RuntimeXML, "ada_source_path", "ada_object_path"}
		for _, name := range slices.Sorted(maps.Keys(d.ConfigFiles)) {
			add(name, []byte(d.ConfigFiles[name]))
			rtsFiles = append(rtsFiles, name)
		}

		projects, err := gpr.RenderSubProjects(d.Profile, &gpr.SubProjects{
			LinkSources: in.linkSources,
			RTSFiles:    rtsFiles,
			Flags:       d.Flags,
			GnatDirs:    rt.gnatDirs,
			GnarlDirs:   rt.gnarlDirs,
			GnatLangs:   rt.gnatLangs,
			GnarlLangs:  rt.gnarlLangs,
		})
		if err != nil {
			return in.errorf(d.Profile, err)
		}
		for _, name := range slices.Sorted(maps.Keys(projects)) {
			add(name, projects[name])
		}

		in.rendered = append(in.rendered, renderedFile{
			name: gpr.ProjectFileName(caps, d.Profile),
			data: gpr.RenderInstallProject(caps, d),
		})
	}
	in.state = DescriptorsRendered
	return nil
}

// sourcePath renders ada_source_path: every source directory, sorted and
// unique, one per line.
func sourcePath(gnat, gnarl []string) []byte {
	dirs := slices.Concat(gnat, gnarl)
	slices.Sort(dirs)
	dirs = slices.Compact(dirs)
	var b strings.Builder
	for _, d := range dirs {
		b.WriteString(d)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Write writes the rendered files.
func (in *Installer) Write() error {
	if err := in.expect(DescriptorsRendered); err != nil {
		return err
	}
	for _, f := range in.rendered {
		if err := in.writeFile(f.name, f.data); err != nil {
			return in.errorf(in.profileOf(f.name), err)
		}
	}
	for _, rt := range in.runtimes {
		log.Infof("%s: installed %s in %s", in.tgt.Name(), rt.desc.Profile, filepath.Join(in.dest, rt.dir))
	}
	in.state = Written
	return nil
}

func (in *Installer) profileOf(name string) profile.Profile {
	for _, rt := range in.runtimes {
		if strings.HasPrefix(name, rt.dir+"/") {
			return rt.desc.Profile
		}
	}
	return ""
}

func (in *Installer) copyFiles(dir string, files rts.Files) error {
	for _, dst := range slices.Sorted(maps.Keys(files)) {
		if err := in.copyFile(path.Join(dir, dst), files[dst]); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies src from the source tree to name, relative to the
// destination.
func (in *Installer) copyFile(name, src string) error {
	data, err := fs.ReadFile(in.tgt.Aggregator().FS(), src)
	if err != nil {
		return err
	}
	return in.writeFile(name, data)
}

func (in *Installer) writeFile(name string, data []byte) error {
	full := filepath.Join(in.dest, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return err
	}
	log.Debugf("wrote %s", full)
	in.res.Files = append(in.res.Files, name)
	return nil
}

// Install installs the runtimes of t, holding the lock of the destination.
// The result is returned on failure too.
func Install(t *rts.Target, opts Options) (*Result, error) {
	in := New(t, opts)
	if err := in.ResolveProfiles(); err != nil {
		return in.Result(), err
	}
	unlock, err := lockDestination(in.dest)
	if err != nil {
		return in.Result(), in.errorf("", err)
	}
	defer unlock()

	for _, step := range []func() error{in.CopySources, in.Render, in.Write} {
		if err := step(); err != nil {
			return in.Result(), err
		}
	}
	return in.Result(), nil
}
