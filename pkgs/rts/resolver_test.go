package rts

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/goplus/rtsgen/pkgs/langs"
	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/goplus/rtsgen/pkgs/target"
)

func testCaps() *target.Capabilities {
	return &target.Capabilities{
		Name:   "stm32f4",
		Triple: "arm-eabi",
		Profiles: []target.ProfileSystem{
			{Profile: profile.ZFP, SystemFile: "system-xi-arm.ads"},
			{Profile: profile.RavenscarSFP, SystemFile: "system-xi-sfp.ads"},
			{Profile: profile.RavenscarFull, SystemFile: "system-xi-full.ads"},
			{Profile: "ravenscar-full-tp", SystemFile: "system-xi-full-tp.ads"},
		},
	}
}

func TestResolveSeedsDescriptor(t *testing.T) {
	agg := &mockAggregator{
		sources: map[profile.Profile]Layout{
			profile.RavenscarSFP: {
				"gnarl/common": FilesOf("src/s-taprop.adb", "src/s-bbcppr.S"),
				"gnat/common":  FilesOf("src/a-except.adb", "src/memcpy.c"),
			},
		},
	}
	d, err := Resolve(testCaps(), profile.RavenscarSFP, agg, DefaultFlags(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := d.Core["arch"].Files["system.ads"]; got != "src/system/system-xi-sfp.ads" {
		t.Errorf("arch/system.ads = %q, want %q", got, "src/system/system-xi-sfp.ads")
	}
	if got := d.Scenarios[ScenarioProfile]; got != "ravenscar-sfp" {
		t.Errorf("RTS_Profile = %q, want ravenscar-sfp", got)
	}
	if diff := cmp.Diff([]string{"arch", "gnat/common"}, d.Core.Dirs()); diff != "" {
		t.Errorf("core dirs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gnarl/common"}, d.Tasking.Dirs()); diff != "" {
		t.Errorf("tasking dirs mismatch (-want +got):\n%s", diff)
	}
	if !d.Tasking["gnarl/common"].Langs.Has(langs.AsmCpp) {
		t.Error("gnarl/common should contain Asm_Cpp sources")
	}
	if !d.Core.Langs().Has(langs.C) {
		t.Error("core should contain C sources")
	}
}

func TestResolveMathLib(t *testing.T) {
	tests := []struct {
		profile profile.Profile
		mathLib bool
	}{
		{profile.ZFP, false},
		{profile.RavenscarSFP, false},
		{profile.RavenscarFull, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			agg := &mockAggregator{}
			if _, err := Resolve(testCaps(), tt.profile, agg, DefaultFlags(), nil); err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if len(agg.calls) != 1 || agg.calls[0] != tt.mathLib {
				t.Fatalf("Scenarios calls = %v, want [%v]", agg.calls, tt.mathLib)
			}
		})
	}
}

func TestResolveNoSystemFile(t *testing.T) {
	caps := testCaps()
	caps.Profiles[0].SystemFile = ""
	_, err := Resolve(caps, profile.ZFP, &mockAggregator{}, DefaultFlags(), nil)
	if !errors.Is(err, ErrNoSystemFile) {
		t.Fatalf("err = %v, want ErrNoSystemFile", err)
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Target != "stm32f4" || cerr.Profile != profile.ZFP {
		t.Fatalf("err = %#v, want ConfigError for stm32f4/zfp", err)
	}
}

func TestNewNoProfiles(t *testing.T) {
	caps := testCaps()
	caps.Profiles = nil
	if _, err := New(caps, Options{Aggregator: &mockAggregator{}}); !errors.Is(err, target.ErrNoProfiles) {
		t.Fatalf("err = %v, want ErrNoProfiles", err)
	}
}

func TestFlagsNotShared(t *testing.T) {
	hook := func(p profile.Profile, d *Descriptor) error {
		if p == profile.RavenscarFull {
			d.AddCFlags("-DFULL")
			d.Flags.Common[0] = "-O2"
		}
		return nil
	}
	tgt, err := New(testCaps(), Options{Aggregator: &mockAggregator{}, Customize: hook})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	full, _ := tgt.Descriptor(profile.RavenscarFull)
	zfp, _ := tgt.Descriptor(profile.ZFP)

	if diff := cmp.Diff(DefaultFlags(), zfp.Flags); diff != "" {
		t.Errorf("zfp flags changed by sibling hook (-want +got):\n%s", diff)
	}
	if full.Flags.Common[0] != "-O2" || full.Flags.C[len(full.Flags.C)-1] != "-DFULL" {
		t.Errorf("full flags = %+v, hook not applied", full.Flags)
	}
	if diff := cmp.Diff(DefaultFlags(), tgt.flags); diff != "" {
		t.Errorf("target default flags changed (-want +got):\n%s", diff)
	}
}

func TestPrepare(t *testing.T) {
	calls := 0
	hook := func(p profile.Profile, d *Descriptor) error {
		calls++
		d.AddCommonFlags("-mcpu=cortex-m4")
		return nil
	}
	tgt, err := New(testCaps(), Options{Aggregator: &mockAggregator{}, Customize: hook})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if calls != 4 {
		t.Fatalf("hook called %d times at construction, want 4", calls)
	}

	ds, err := tgt.Prepare(false)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	var got []profile.Profile
	for _, d := range ds {
		got = append(got, d.Profile)
	}
	if diff := cmp.Diff(profile.Stable, got); diff != "" {
		t.Errorf("prepared profiles mismatch (-want +got):\n%s", diff)
	}
	if calls != 7 {
		t.Errorf("hook called %d times, want 7", calls)
	}

	// Prepared copies are private: changing them leaves the target intact.
	ds[0].AddCFlags("-DPRIVATE")
	orig, _ := tgt.Descriptor(ds[0].Profile)
	if len(orig.Flags.C) != len(DefaultFlags().C) {
		t.Errorf("target descriptor modified through prepared copy: %v", orig.Flags.C)
	}

	ds, err = tgt.Prepare(true)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(ds) != 4 || ds[3].Profile != "ravenscar-full-tp" {
		t.Errorf("Prepare(true) returned %d descriptors", len(ds))
	}
	for _, d := range ds {
		if n := countOf(d.Flags.Common, "-mcpu=cortex-m4"); n != 1 {
			t.Errorf("%s: -mcpu=cortex-m4 appears %d times, want 1", d.Profile, n)
		}
	}
}

func TestAmendments(t *testing.T) {
	e := &target.Entry{
		Name: "stm32f4",
		Amend: map[string]target.Amendment{
			target.AllProfiles: {CommonFlags: []string{"-mthumb"}},
			"ravenscar-full": {
				CFlags:      []string{"-DSTM32F4"},
				Sources:     map[string][]string{"gnarl/stm32": {"arm/stm32/s-bbbosu.adb"}},
				ConfigFiles: map[string]string{"s-bbbopa.ads": "package X is end X;\n"},
			},
		},
	}
	d := newDescriptor(profile.RavenscarFull, nil)
	d.Flags = DefaultFlags()
	hook := Amendments(e)
	for i := 0; i < 2; i++ {
		if err := hook(profile.RavenscarFull, d); err != nil {
			t.Fatalf("hook: %v", err)
		}
	}
	if n := countOf(d.Flags.Common, "-mthumb"); n != 1 {
		t.Errorf("-mthumb appears %d times, want 1", n)
	}
	if n := countOf(d.Flags.C, "-DSTM32F4"); n != 1 {
		t.Errorf("-DSTM32F4 appears %d times, want 1", n)
	}
	if got := d.Tasking["gnarl/stm32"].Files["s-bbbosu.adb"]; got != "arm/stm32/s-bbbosu.adb" {
		t.Errorf("gnarl/stm32 source = %q", got)
	}
	if _, ok := d.ConfigFiles["s-bbbopa.ads"]; !ok {
		t.Error("config file not attached")
	}
}

func TestChain(t *testing.T) {
	var order []string
	step := func(name string, err error) Customize {
		return func(p profile.Profile, d *Descriptor) error {
			order = append(order, name)
			return err
		}
	}
	errStop := errors.New("stop")

	hook := Chain(step("a", nil), nil, step("b", errStop), step("c", nil))
	if err := hook(profile.ZFP, newDescriptor(profile.ZFP, nil)); !errors.Is(err, errStop) {
		t.Fatalf("Chain error = %v, want %v", err, errStop)
	}
	if diff := cmp.Diff([]string{"a", "b"}, order); diff != "" {
		t.Errorf("hooks run mismatch (-want +got):\n%s", diff)
	}
}

func TestSetScenarios(t *testing.T) {
	agg := &mockAggregator{}
	hook := Chain(Amendments(&target.Entry{Name: "stm32f4"}), SetScenarios(map[string]string{"Timer": "timer64"}))
	tgt, err := New(testCaps(), Options{Aggregator: agg, Customize: hook})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	descs, err := tgt.Prepare(false)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	for _, d := range descs {
		if got := d.Scenarios["Timer"]; got != "timer64" {
			t.Errorf("%s: Timer = %q, want timer64", d.Profile, got)
		}
		if got := d.Scenarios[ScenarioProfile]; got != string(d.Profile) {
			t.Errorf("%s: RTS_Profile = %q", d.Profile, got)
		}
	}

	bad := SetScenarios(map[string]string{ScenarioProfile: "zfp"})
	if _, err := New(testCaps(), Options{Aggregator: agg, Customize: bad}); err == nil {
		t.Error("overriding RTS_Profile succeeded")
	}
}

func TestAddSourcesZeroDescriptor(t *testing.T) {
	d := &Descriptor{}
	d.AddSources("arch", Files{"a.c": "src/a.c"})
	d.AddSources("gnarl", Files{"s-taskin.adb": "src/s-taskin.adb"})

	if got := d.Core["arch"].Files["a.c"]; got != "src/a.c" {
		t.Errorf("arch/a.c = %q, want src/a.c", got)
	}
	if !d.Core["arch"].Langs.Has(langs.C) {
		t.Error("arch should be classified as C")
	}
	if diff := cmp.Diff([]string{"gnarl"}, d.Tasking.Dirs()); diff != "" {
		t.Errorf("tasking dirs mismatch (-want +got):\n%s", diff)
	}
}

func TestNewReadsReadme(t *testing.T) {
	caps := testCaps()
	caps.Readme = "docs/README"
	agg := &mockAggregator{fsys: fstest.MapFS{"docs/README": {Data: []byte("STM32F4 runtimes\n")}}}
	tgt, err := New(caps, Options{Aggregator: agg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tgt.ConfigFiles()["README"]; got != "STM32F4 runtimes\n" {
		t.Errorf("README = %q", got)
	}
}

func countOf(list []string, s string) int {
	n := 0
	for _, e := range list {
		if e == s {
			n++
		}
	}
	return n
}
