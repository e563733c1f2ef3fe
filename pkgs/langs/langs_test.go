package langs

import (
	"slices"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{"empty", nil, nil},
		{"ada only", []string{"s-textio.adb", "s-textio.ads"}, nil},
		{"c and header", []string{"a.c", "b.h"}, []string{"C"}},
		{"asm", []string{"start.s"}, []string{"Asm"}},
		{"asm cpp", []string{"crt0.S"}, []string{"Asm_Cpp"}},
		{"all", []string{"crt0.S", "x.adb", "handler.s", "init.c"}, []string{"C", "Asm", "Asm_Cpp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.files).List()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Classify mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyOrderIndependent(t *testing.T) {
	files := []string{"crt0.S", "x.adb", "handler.s", "init.c", "y.h"}
	want := Classify(files)
	perm := slices.Clone(files)
	for i := 0; i < len(files); i++ {
		perm = append(perm[1:], perm[0])
		if got := Classify(perm); got != want {
			t.Fatalf("Classify(%v) = %v, want %v", perm, got.List(), want.List())
		}
		slices.Reverse(perm)
		if got := Classify(perm); got != want {
			t.Fatalf("Classify(%v) = %v, want %v", perm, got.List(), want.List())
		}
	}
	if again := Classify(files); again != want {
		t.Fatalf("Classify not idempotent: %v vs %v", again.List(), want.List())
	}
}

func TestClassifyFS(t *testing.T) {
	fsys := fstest.MapFS{
		"gnat/a.c":         {Data: []byte("")},
		"gnat/b.adb":       {Data: []byte("")},
		"gnat/sub/start.s": {Data: []byte("")},
		"gnarl/x.adb":      {Data: []byte("")},
	}
	got, err := ClassifyFS(fsys, "gnat")
	if err != nil {
		t.Fatalf("ClassifyFS: %v", err)
	}
	if diff := cmp.Diff([]string{"C"}, got.List()); diff != "" {
		t.Errorf("gnat languages mismatch (-want +got):\n%s", diff)
	}

	got, err = ClassifyFS(fsys, "gnarl")
	if err != nil {
		t.Fatalf("ClassifyFS: %v", err)
	}
	if !got.Empty() {
		t.Errorf("gnarl languages = %v, want empty", got.List())
	}

	if _, err := ClassifyFS(fsys, "missing"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWithBase(t *testing.T) {
	s := Set(0).Add(AsmCpp).Add(C)
	want := []string{"Ada", "C", "Asm_Cpp"}
	if diff := cmp.Diff(want, s.WithBase()); diff != "" {
		t.Fatalf("WithBase mismatch (-want +got):\n%s", diff)
	}
}
