package gpr

import (
	"fmt"
	"strings"

	"github.com/goplus/rtsgen/pkgs/rts"
	"github.com/goplus/rtsgen/pkgs/target"
)

// RuntimeXML is the name of the build configuration read by gprbuild.
const RuntimeXML = "runtime.xml"

// compilerLangs lists the languages receiving leading required switches.
var compilerLangs = []string{"Ada", "C", "Asm", "Asm2", "Asm_Cpp"}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return strings.Join(quoted, ", ")
}

func indent(n int) string {
	return strings.Repeat(" ", n)
}

// RenderRuntimeXML renders the build configuration of runtime d.
func RenderRuntimeXML(caps *target.Capabilities, d *rts.Descriptor) []byte {
	var b strings.Builder

	b.WriteString("<?xml version=\"1.0\" ?>\n\n")
	b.WriteString("<gprconfig>\n")
	b.WriteString("  <configuration>\n")
	b.WriteString("    <config><![CDATA[\n")

	switch {
	case caps.HasLoaders():
		fmt.Fprintf(&b, "   type Loaders is (%s);\n", quoteList(caps.Loaders))
		fmt.Fprintf(&b, "   Loader : Loaders := external(\"LOADER\", %s);\n\n", Quote(caps.Loaders[0]))
	case caps.SingleScript():
		// A single script and no loader: let the user override it.
		fmt.Fprintf(&b, "   %s := external(%s,\n", LDScriptVar, Quote(LDScriptVar))
		fmt.Fprintf(&b, "                        %s);\n\n", Quote(runtimeDir+"/ld/"+caps.LinkerScripts[0].Name))
	}

	writeCompiler(&b, caps)
	writeLinker(&b, ComposeLinker(caps, caps.HasLibc(d.Profile)))

	b.WriteString("]]>\n")
	b.WriteString("   </config>\n")
	b.WriteString("  </configuration>\n")
	b.WriteString("</gprconfig>\n")
	return []byte(b.String())
}

func writeCompiler(b *strings.Builder, caps *target.Capabilities) {
	b.WriteString("   package Compiler is\n")
	fmt.Fprintf(b, "      Common_Required_Switches := (%s);\n", quoteList(caps.CompilerSwitches))
	hasC := len(caps.CSwitches) > 0
	if hasC {
		fmt.Fprintf(b, "      C_Required_Switches := (%s);\n", quoteList(caps.CSwitches))
	}
	b.WriteString("\n")

	for _, lang := range compilerLangs {
		fmt.Fprintf(b, "      for Leading_Required_Switches (%s) use\n", Quote(lang))
		fmt.Fprintf(b, "         Compiler'Leading_Required_Switches (%s) &\n", Quote(lang))
		b.WriteString("         Common_Required_Switches")
		if lang != "Ada" && hasC {
			b.WriteString(" &\n         C_Required_Switches")
		}
		b.WriteString(";\n")
	}
	b.WriteString("   end Compiler;\n\n")
}

func writeLinker(b *strings.Builder, sec LinkerSection) {
	b.WriteString("   package Linker is\n")
	b.WriteString("      for Required_Switches use Linker'Required_Switches &\n")
	fmt.Fprintf(b, "        (%s,\n", sec.SearchPath)
	b.WriteString(indent(9) + strings.Join(sec.Base, ", "))
	for _, l := range sec.Lines {
		b.WriteString(",\n" + indent(9) + l)
	}
	b.WriteString(") &\n" + indent(9) + "Compiler.Common_Required_Switches;\n")

	if len(sec.Branches) > 0 {
		b.WriteString("\n      case Loader is\n")
		for _, br := range sec.Branches {
			fmt.Fprintf(b, "         when %s =>\n", Quote(br.Loader))
			if len(br.Switches) == 0 {
				continue
			}
			b.WriteString(indent(12) + "for Required_Switches use Linker'Required_Switches &\n")
			fmt.Fprintf(b, "%s(%s);\n", indent(14), strings.Join(br.Switches, ",\n"+indent(15)))
		}
		b.WriteString("      end case;\n")
	}
	b.WriteString("   end Linker;\n")
}
