package gpr

import (
	"strings"

	"github.com/goplus/rtsgen/pkgs/target"
)

const (
	runtimeDir = "${RUNTIME_DIR(ada)}"

	// LDScriptVar is the scenario variable holding the linker script of
	// targets with a single script and no loader.
	LDScriptVar = "LDSCRIPT"
)

// LinkerSection is the linker configuration of a runtime. Items are GPR
// expressions, ready to be rendered.
type LinkerSection struct {
	// SearchPath is the library search path, always first.
	SearchPath string
	// Base holds the start-files and C library switches, rendered on one line.
	Base []string
	// Lines holds the remaining unconditional switches, one per line.
	Lines []string
	// Branches holds one entry per declared loader, in declaration order.
	Branches []LoaderBranch
}

// LoaderBranch holds the switches applying to a single loader. A branch
// without switches is still part of the section: the case construct must
// cover every loader.
type LoaderBranch struct {
	Loader   string
	Switches []string
}

// Quote renders s as a GPR string literal.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func scriptSwitch(name string) string {
	return `"-T", ` + Quote(name)
}

// ComposeLinker computes the linker switches of a runtime. withLibc selects
// the explicit library link order used by the full tasking runtime in place
// of -nolibc.
func ComposeLinker(caps *target.Capabilities, withLibc bool) LinkerSection {
	sec := LinkerSection{
		SearchPath: Quote("-Wl,-L" + runtimeDir + "/adalib"),
		Base:       []string{Quote("-nostartfiles")},
	}
	if withLibc {
		// libgnat needs libc for malloc, libc and libgcc need libgnat for
		// the syscalls and abort.
		sec.Base = append(sec.Base, Quote("-lgnat"), Quote("-lc"), Quote("-lgcc"), Quote("-lgnat"))
	} else {
		sec.Base = append(sec.Base, Quote("-nolibc"))
	}

	if len(caps.LinkerScripts) > 0 {
		sec.Lines = append(sec.Lines, Quote("-L"+runtimeDir+"/ld"))
	}
	if caps.SingleScript() {
		sec.Lines = append(sec.Lines, `"-T", `+LDScriptVar)
	} else {
		for _, s := range caps.LinkerScripts {
			if s.Loaders.Unconditional() {
				sec.Lines = append(sec.Lines, scriptSwitch(s.Name))
			}
		}
	}
	for _, sw := range caps.LinkerSwitches {
		if sw.Loaders.Unconditional() {
			sec.Lines = append(sec.Lines, Quote(sw.Switch))
		}
	}

	if !caps.HasLoaders() {
		return sec
	}
	for _, l := range caps.Loaders {
		b := LoaderBranch{Loader: l}
		for _, s := range caps.LinkerScripts {
			if s.Loaders.Has(l) {
				b.Switches = append(b.Switches, scriptSwitch(s.Name))
			}
		}
		for _, sw := range caps.LinkerSwitches {
			if sw.Loaders.Has(l) {
				b.Switches = append(b.Switches, Quote(sw.Switch))
			}
		}
		sec.Branches = append(sec.Branches, b)
	}
	return sec
}
