package gpr

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/goplus/rtsgen/pkgs/langs"
	"github.com/goplus/rtsgen/pkgs/profile"
	"github.com/goplus/rtsgen/pkgs/rts"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("gpr").Funcs(template.FuncMap{
	"list": renderList,
}).ParseFS(templateFS, "templates/*.tmpl"))

// renderList quotes items and joins them, on one line when indent is zero,
// one per line at the given column otherwise.
func renderList(items []string, indent int) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	if indent == 0 {
		return strings.Join(quoted, ", ")
	}
	return strings.Join(quoted, ",\n"+strings.Repeat(" ", indent))
}

// SubProjects holds what the per-runtime projects are generated from.
type SubProjects struct {
	LinkSources []string // linker scripts, relative to the runtime directory
	RTSFiles    []string // files installed along the runtime
	Flags       rts.BuildFlags

	GnatDirs   []string
	GnarlDirs  []string
	GnatLangs  langs.Set
	GnarlLangs langs.Set
}

type subProjectsView struct {
	LinkSources []string
	RTSFiles    []string
	Flags       rts.BuildFlags

	GnatDirs      []string
	GnarlDirs     []string
	GnatLangs     []string
	GnarlLangs    []string
	FullGnatLangs []string
	AllLangs      []string
}

// EmptyC is the placeholder C source written next to full runtimes.
const EmptyC = "empty.c"

// RenderSubProjects renders the projects of runtime p, keyed by file name.
func RenderSubProjects(p profile.Profile, sp *SubProjects) (map[string][]byte, error) {
	view := &subProjectsView{
		LinkSources:   sp.LinkSources,
		RTSFiles:      sp.RTSFiles,
		Flags:         sp.Flags,
		GnatDirs:      sp.GnatDirs,
		GnarlDirs:     sp.GnarlDirs,
		GnatLangs:     sp.GnatLangs.WithBase(),
		GnarlLangs:    sp.GnarlLangs.WithBase(),
		FullGnatLangs: sp.GnatLangs.Add(langs.C).WithBase(),
		AllLangs:      sp.GnatLangs.Union(sp.GnarlLangs).WithBase(),
	}

	files := map[string]string{
		"install.gpr":        "install.gpr.tmpl",
		"target_options.gpr": "target_options.gpr.tmpl",
	}
	switch p.Category() {
	case profile.Minimal:
		files["libgnat.gpr"] = "libgnat.gpr.tmpl"
	case profile.Restricted:
		files["libgnat.gpr"] = "libgnat.gpr.tmpl"
		files["libgnarl.gpr"] = "libgnarl.gpr.tmpl"
	case profile.Full:
		files["libgnat.gpr"] = "libgnat_full.gpr.tmpl"
		files["libgnarl.gpr"] = "libgnarl_full.gpr.tmpl"
	}

	out := make(map[string][]byte, len(files)+1)
	for name, tmpl := range files {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, tmpl, view); err != nil {
			return nil, err
		}
		out[name] = buf.Bytes()
	}
	if p.Category() == profile.Full {
		out[EmptyC] = []byte{}
	}
	return out, nil
}
