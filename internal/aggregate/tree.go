// Package aggregate implements the default source aggregator: runtime
// sources are read from a source tree as listed by a catalogue entry, and
// scenario variables are derived from the target capabilities.
package aggregate

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/goplus/rtsgen/pkgs/rts"
	"github.com/goplus/rtsgen/pkgs/target"
)

// Scenario variables set on every runtime besides rts.ScenarioProfile.
const (
	ScenarioMathLib = "Add_Math_Lib"
	ScenarioTimer   = "Timer"
	ScenarioMemory  = "Memory"
	ScenarioTextIO  = "Text_IO"
)

// Tree aggregates the sources of one target from a source tree.
type Tree struct {
	fsys  fs.FS
	entry *target.Entry
	caps  *target.Capabilities
}

var _ rts.Aggregator = (*Tree)(nil)

// New returns the aggregator of the target declared by e and resolved into
// caps, reading sources from fsys.
func New(fsys fs.FS, e *target.Entry, caps *target.Capabilities) *Tree {
	return &Tree{fsys: fsys, entry: e, caps: caps}
}

// Open is like New, reading sources from the directory dir.
func Open(dir string, e *target.Entry, caps *target.Capabilities) (*Tree, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("source tree %s is not a directory", dir)
	}
	return New(os.DirFS(dir), e, caps), nil
}

// FS returns the source tree.
func (t *Tree) FS() fs.FS {
	return t.fsys
}

// IsTasking reports whether dir holds tasking-support sources.
func (t *Tree) IsTasking(dir string) bool {
	return rts.IsTaskingDir(dir)
}

// Scenarios returns the scenario variables of profile p. The math library
// is built with hardware floating point when the target has an FPU.
func (t *Tree) Scenarios(p profile.Profile, mathLib bool) (map[string]string, error) {
	vars := map[string]string{
		rts.ScenarioProfile: string(p),
		ScenarioMathLib:     "no",
		ScenarioTimer:       "timer32",
		ScenarioMemory:      "default",
		ScenarioTextIO:      "serial_io",
	}
	if mathLib {
		if t.caps.HasFPU {
			vars[ScenarioMathLib] = "hardfloat"
		} else {
			vars[ScenarioMathLib] = "softfloat"
		}
	}
	if t.caps.Timer64 {
		vars[ScenarioTimer] = "timer64"
	}
	if t.caps.SmallMemory {
		vars[ScenarioMemory] = "small"
	}
	if t.caps.SemihostingIO {
		vars[ScenarioTextIO] = "semihosting"
	}
	return vars, nil
}

// Sources returns the sources specific to profile p.
func (t *Tree) Sources(p profile.Profile) (rts.Layout, error) {
	return t.layout(t.entry.Sources[string(p)])
}

// BSPSources returns the sources shared by every runtime of the target.
func (t *Tree) BSPSources() (rts.Layout, error) {
	return t.layout(t.entry.BSP)
}

// layout checks that every listed source exists in the tree.
func (t *Tree) layout(dirs map[string][]string) (rts.Layout, error) {
	out := make(rts.Layout, len(dirs))
	for dir, paths := range dirs {
		for _, p := range paths {
			fi, err := fs.Stat(t.fsys, p)
			if err != nil {
				return nil, err
			}
			if fi.IsDir() {
				return nil, &fs.PathError{Op: "aggregate", Path: p, Err: fmt.Errorf("is a directory")}
			}
		}
		out[dir] = rts.FilesOf(paths...)
	}
	return out, nil
}
