// Package langs classifies runtime source directories by the compiled
// languages they contribute besides Ada.
package langs

import (
	"io/fs"
	"path"
	"strings"
)

// Language is a source language other than the runtime's base language.
type Language uint8

const (
	C Language = 1 << iota
	Asm
	AsmCpp
)

// Base is the implementation language of the runtime, always present.
const Base = "Ada"

var names = []struct {
	lang Language
	name string
}{
	{C, "C"},
	{Asm, "Asm"},
	{AsmCpp, "Asm_Cpp"},
}

func (l Language) String() string {
	for _, n := range names {
		if n.lang == l {
			return n.name
		}
	}
	return "unknown"
}

// Set is a set of languages.
type Set uint8

// Has reports whether l is in s.
func (s Set) Has(l Language) bool {
	return s&Set(l) != 0
}

// Add returns s with l added.
func (s Set) Add(l Language) Set {
	return s | Set(l)
}

// Union returns the languages present in s or o.
func (s Set) Union(o Set) Set {
	return s | o
}

// Empty reports whether s holds no language besides the base one.
func (s Set) Empty() bool {
	return s == 0
}

// List returns the language names of s in a fixed order: C, Asm, Asm_Cpp.
func (s Set) List() []string {
	var out []string
	for _, n := range names {
		if s.Has(n.lang) {
			out = append(out, n.name)
		}
	}
	return out
}

// WithBase returns the language names of s preceded by the base language.
func (s Set) WithBase() []string {
	return append([]string{Base}, s.List()...)
}

// Of returns the language a file name contributes, if any. The extension
// is case sensitive: ".S" goes through the C preprocessor, ".s" does not.
func Of(name string) (Language, bool) {
	switch path.Ext(name) {
	case ".c", ".h":
		return C, true
	case ".s":
		return Asm, true
	case ".S":
		return AsmCpp, true
	}
	return 0, false
}

// Classify returns the languages contributed by a set of file names.
func Classify(files []string) Set {
	var s Set
	for _, f := range files {
		if l, ok := Of(f); ok {
			s = s.Add(l)
		}
	}
	return s
}

// ClassifyFS classifies the regular files directly inside dir.
func ClassifyFS(fsys fs.FS, dir string) (Set, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}
	return Classify(files), nil
}
