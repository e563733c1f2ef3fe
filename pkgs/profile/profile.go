package profile

import (
	"slices"
	"strings"
)

// Profile names a runtime variant, such as "zfp" or "ravenscar-full".
type Profile string

// The stable profiles, in canonical order.
const (
	ZFP           Profile = "zfp"
	RavenscarSFP  Profile = "ravenscar-sfp"
	RavenscarFull Profile = "ravenscar-full"
)

// Stable lists the profiles installed when experimental ones are not requested.
var Stable = []Profile{ZFP, RavenscarSFP, RavenscarFull}

// Category groups profiles by their concurrency model.
type Category int

const (
	// Minimal profiles have no tasking support.
	Minimal Category = iota
	// Restricted profiles support the restricted tasking subset.
	Restricted
	// Full profiles support full tasking and link against the C library.
	Full
)

func (c Category) String() string {
	switch c {
	case Minimal:
		return "minimal"
	case Restricted:
		return "restricted"
	case Full:
		return "full"
	}
	return "unknown"
}

func (p Profile) String() string {
	return string(p)
}

// IsTasking reports whether the profile ships tasking-support sources.
func (p Profile) IsTasking() bool {
	return strings.Contains(string(p), "ravenscar")
}

// IsFull reports whether p is a full tasking profile.
func (p Profile) IsFull() bool {
	return p.IsTasking() && strings.Contains(string(p), "full")
}

// Category returns the runtime category of p: Minimal without tasking,
// Full for full tasking and Restricted otherwise.
func (p Profile) Category() Category {
	switch {
	case !p.IsTasking():
		return Minimal
	case p.IsFull():
		return Full
	}
	return Restricted
}

// IsStable reports whether p is one of the stable profiles.
func (p Profile) IsStable() bool {
	return slices.Contains(Stable, p)
}

// Compare orders stable profiles first, in canonical order, then the others
// lexicographically.
func Compare(a, b Profile) int {
	ia, ib := slices.Index(Stable, a), slices.Index(Stable, b)
	switch {
	case ia >= 0 && ib >= 0:
		return ia - ib
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// Sort sorts profiles in place in canonical order.
func Sort(ps []Profile) {
	slices.SortFunc(ps, Compare)
}
