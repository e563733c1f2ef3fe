package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		profile Profile
		want    Category
		tasking bool
	}{
		{ZFP, Minimal, false},
		{RavenscarSFP, Restricted, true},
		{RavenscarFull, Full, true},
		{"ravenscar-full-tp", Full, true},
		{"light", Minimal, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			if got := tt.profile.Category(); got != tt.want {
				t.Errorf("Category() = %v, want %v", got, tt.want)
			}
			if got := tt.profile.IsTasking(); got != tt.tasking {
				t.Errorf("IsTasking() = %v, want %v", got, tt.tasking)
			}
		})
	}
}

func TestIsStable(t *testing.T) {
	for _, p := range Stable {
		if !p.IsStable() {
			t.Errorf("%s.IsStable() = false, want true", p)
		}
	}
	if Profile("ravenscar-full-tp").IsStable() {
		t.Error("experimental profile reported as stable")
	}
}

func TestSort(t *testing.T) {
	ps := []Profile{"light", RavenscarFull, "embedded", ZFP, RavenscarSFP}
	Sort(ps)
	want := []Profile{ZFP, RavenscarSFP, RavenscarFull, "embedded", "light"}
	if diff := cmp.Diff(want, ps); diff != "" {
		t.Fatalf("Sort mismatch (-want +got):\n%s", diff)
	}
}
