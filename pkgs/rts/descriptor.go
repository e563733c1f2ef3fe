package rts

import (
	"maps"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/goplus/rtsgen/pkgs/langs"
	"github.com/goplus/rtsgen/pkgs/profile"
)

// Files maps the installed name of a source file to its path in the source
// tree.
type Files map[string]string

// FilesOf builds a Files mapping installing each path under its base name.
func FilesOf(paths ...string) Files {
	files := make(Files, len(paths))
	for _, p := range paths {
		files[path.Base(p)] = p
	}
	return files
}

// Layout maps a directory, relative to the runtime directory, to its files.
type Layout map[string]Files

// SourceDir is a directory of runtime sources.
type SourceDir struct {
	Files Files
	Langs langs.Set // languages besides Ada
}

// SourceSet maps a relative directory to its sources.
type SourceSet map[string]*SourceDir

// Dirs returns the directories of s, sorted.
func (s SourceSet) Dirs() []string {
	dirs := make([]string, 0, len(s))
	for dir := range s {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Langs returns the union of the languages of every directory.
func (s SourceSet) Langs() langs.Set {
	var set langs.Set
	for _, d := range s {
		set = set.Union(d.Langs)
	}
	return set
}

func (s SourceSet) add(dir string, files Files) {
	d, ok := s[dir]
	if !ok {
		d = &SourceDir{Files: make(Files, len(files))}
		s[dir] = d
	}
	maps.Copy(d.Files, files)
	d.Langs = langs.Classify(slices.Collect(maps.Keys(d.Files)))
}

func (s SourceSet) clone() SourceSet {
	out := make(SourceSet, len(s))
	for dir, d := range s {
		out[dir] = &SourceDir{Files: maps.Clone(d.Files), Langs: d.Langs}
	}
	return out
}

// BuildFlags are the switches used to build the runtime library itself.
type BuildFlags struct {
	Common []string
	Asm    []string
	C      []string
}

// DefaultFlags returns the build flags every target starts from.
func DefaultFlags() BuildFlags {
	return BuildFlags{
		Common: []string{"-fcallgraph-info=su,da", "-ffunction-sections", "-fdata-sections"},
		C:      []string{"-DIN_RTS", "-Dinhibit_libc"},
	}
}

// Clone returns a deep copy of f.
func (f BuildFlags) Clone() BuildFlags {
	return BuildFlags{
		Common: slices.Clone(f.Common),
		Asm:    slices.Clone(f.Asm),
		C:      slices.Clone(f.C),
	}
}

// appendMissing appends the flags of add not already in list.
func appendMissing(list []string, add ...string) []string {
	for _, f := range add {
		if !slices.Contains(list, f) {
			list = append(list, f)
		}
	}
	return list
}

// Descriptor is the fully resolved configuration of one runtime of a target.
type Descriptor struct {
	Profile     profile.Profile
	Scenarios   map[string]string
	Core        SourceSet
	Tasking     SourceSet
	Flags       BuildFlags
	ConfigFiles map[string]string
	Prefix      string

	isTasking func(dir string) bool
}

func newDescriptor(p profile.Profile, isTasking func(string) bool) *Descriptor {
	if isTasking == nil {
		isTasking = IsTaskingDir
	}
	return &Descriptor{
		Profile:     p,
		Scenarios:   map[string]string{},
		Core:        SourceSet{},
		Tasking:     SourceSet{},
		ConfigFiles: map[string]string{},
		isTasking:   isTasking,
	}
}

// IsTaskingDir is the default tasking-support test: gnarl directories hold
// the tasking sources.
func IsTaskingDir(dir string) bool {
	return strings.Contains(dir, "gnarl")
}

// AddSources adds files to dir, in the tasking or the core set depending on
// the directory. Languages of the directory are reclassified.
func (d *Descriptor) AddSources(dir string, files Files) {
	isTasking := d.isTasking
	if isTasking == nil {
		isTasking = IsTaskingDir
	}
	if isTasking(dir) {
		if d.Tasking == nil {
			d.Tasking = SourceSet{}
		}
		d.Tasking.add(dir, files)
		return
	}
	if d.Core == nil {
		d.Core = SourceSet{}
	}
	d.Core.add(dir, files)
}

// AddCommonFlags appends the flags not yet present to the common flags.
func (d *Descriptor) AddCommonFlags(flags ...string) {
	d.Flags.Common = appendMissing(d.Flags.Common, flags...)
}

// AddAsmFlags appends the flags not yet present to the assembler flags.
func (d *Descriptor) AddAsmFlags(flags ...string) {
	d.Flags.Asm = appendMissing(d.Flags.Asm, flags...)
}

// AddCFlags appends the flags not yet present to the C flags.
func (d *Descriptor) AddCFlags(flags ...string) {
	d.Flags.C = appendMissing(d.Flags.C, flags...)
}

// Clone returns a deep copy of d sharing no storage with it.
func (d *Descriptor) Clone() *Descriptor {
	return &Descriptor{
		Profile:     d.Profile,
		Scenarios:   maps.Clone(d.Scenarios),
		Core:        d.Core.clone(),
		Tasking:     d.Tasking.clone(),
		Flags:       d.Flags.Clone(),
		ConfigFiles: maps.Clone(d.ConfigFiles),
		Prefix:      d.Prefix,
		isTasking:   d.isTasking,
	}
}
