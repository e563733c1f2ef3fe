package gpr

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"unicode"

	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/goplus/rtsgen/pkgs/rts"
	"github.com/goplus/rtsgen/pkgs/target"
)

// boardless reports whether runtimes of caps are installed without a board
// qualifier.
func boardless(caps *target.Capabilities) bool {
	return caps.IsVirtualized() || caps.Native
}

// InstallPrefix computes where runtime p of caps is installed. A non-empty
// override replaces the default lib/gnat directory of the toolchain.
func InstallPrefix(caps *target.Capabilities, p profile.Profile, override string) string {
	var prefix string
	switch {
	case override != "":
		prefix = override
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
	case caps.Triple != "":
		prefix = caps.Triple + "/lib/gnat/"
	default:
		prefix = "lib/gnat/"
	}
	if boardless(caps) {
		return prefix + "rts-" + string(p)
	}
	return prefix + string(p) + "-" + caps.Name
}

func projectBaseName(caps *target.Capabilities, p profile.Profile) string {
	return strings.ReplaceAll(string(p)+"-"+caps.Name, "-", "_")
}

// ProjectFileName returns the file name of the installation project of
// runtime p.
func ProjectFileName(caps *target.Capabilities, p profile.Profile) string {
	return projectBaseName(caps, p) + ".gpr"
}

// titleCase upper-cases every letter following a non-letter and lower-cases
// the others: "ravenscar_sfp_stm32f4" becomes "Ravenscar_Sfp_Stm32F4".
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(unicode.ToUpper(r))
		case isLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// RenderInstallProject renders the aggregate project used to build and
// install runtime d. The project lives at the root of the destination.
func RenderInstallProject(caps *target.Capabilities, d *rts.Descriptor) []byte {
	name := titleCase(projectBaseName(caps, d.Profile))
	rtsName := string(d.Profile)
	prefix := d.Prefix
	if prefix == "" {
		prefix = InstallPrefix(caps, d.Profile, "")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "aggregate project %s is\n\n", name)
	fmt.Fprintf(&b, "   Base_BSP_Source_Dir   := Project'Project_Dir & %s;\n", Quote(caps.RelPath()))
	fmt.Fprintf(&b, "   Base_Installation_Dir := %s;\n", Quote(path.Dir(prefix)+"/"))
	if boardless(caps) {
		b.WriteString("   Default_Prefix        :=\n")
		fmt.Fprintf(&b, "     Base_Installation_Dir & %s;\n", Quote(path.Base(prefix)))
	} else {
		board := strings.Replace(path.Base(prefix), rtsName+"-", "", 1)
		fmt.Fprintf(&b, "   Board                 := %s;\n", Quote(board))
		b.WriteString("   Default_Prefix        :=\n")
		fmt.Fprintf(&b, "     Base_Installation_Dir & %s & Board;\n", Quote(rtsName+"-"))
	}
	b.WriteString("   Install_Dir           := external (\"PREFIX\", Default_Prefix);\n\n")

	for _, key := range slices.Sorted(maps.Keys(d.Scenarios)) {
		fmt.Fprintf(&b, "   for external (%s) use %s;\n", Quote(key), Quote(d.Scenarios[key]))
	}
	b.WriteString("\n")
	b.WriteString("   for external (\"INSTALL_PREFIX\") use Install_Dir;\n\n")

	if caps.Triple != "" {
		fmt.Fprintf(&b, "   for Target use %s;\n", Quote(caps.Triple))
	}
	b.WriteString("   for Runtime (\"Ada\") use Base_BSP_Source_Dir &\n")
	fmt.Fprintf(&b, "       %s;\n\n", Quote(rtsName))

	b.WriteString("   for Project_Path use\n")
	fmt.Fprintf(&b, "     (Base_BSP_Source_Dir & %s,\n", Quote(rtsName))
	b.WriteString("      \"../lib/gnat\");\n")
	b.WriteString("   for Project_Files use\n")
	fmt.Fprintf(&b, "     (Base_BSP_Source_Dir & %s,\n", Quote(rtsName+"/libgnat.gpr"))
	if d.Profile.IsTasking() {
		fmt.Fprintf(&b, "      Base_BSP_Source_Dir & %s,\n", Quote(rtsName+"/libgnarl.gpr"))
	}
	fmt.Fprintf(&b, "      Base_BSP_Source_Dir & %s);\n\n", Quote(rtsName+"/install.gpr"))
	fmt.Fprintf(&b, "end %s;\n", name)
	return []byte(b.String())
}
