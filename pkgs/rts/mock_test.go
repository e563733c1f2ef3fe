package rts

import (
	"io/fs"
	"testing/fstest"

	"github.com/goplus/rtsgen/pkgs/profile"
)

type mockAggregator struct {
	fsys    fstest.MapFS
	sources map[profile.Profile]Layout
	bsp     Layout
	calls   []bool // mathLib argument of each Scenarios call
}

func (m *mockAggregator) Scenarios(p profile.Profile, mathLib bool) (map[string]string, error) {
	m.calls = append(m.calls, mathLib)
	lib := "no"
	if mathLib {
		lib = "hardfloat"
	}
	return map[string]string{"Add_Math_Lib": lib}, nil
}

func (m *mockAggregator) Sources(p profile.Profile) (Layout, error) {
	return m.sources[p], nil
}

func (m *mockAggregator) BSPSources() (Layout, error) {
	return m.bsp, nil
}

func (m *mockAggregator) IsTasking(dir string) bool {
	return IsTaskingDir(dir)
}

func (m *mockAggregator) FS() fs.FS {
	return m.fsys
}
