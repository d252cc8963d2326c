package rgbvi

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

var registry = buildRegistry()

func buildRegistry() map[string]Formula {
	m := make(map[string]Formula)
	add := func(f Formula, fn Func) {
		f.Func = fn
		m[f.Name] = f
	}

	add(greenBlue, GreenBlue)
	add(redGreen, RedGreen)
	add(exGreen, ExG)
	add(exRed, ExR)
	add(exGreenMinusExRed, ExGExR)
	add(colorIndexVegetation, CIVE)
	add(colorIndexVegetationInv, CIVEInv)
	add(modifiedExGreen, MExG)
	add(greenFour, G4)

	add(normalizedDifference, NDI)
	add(normalizedGreenRed, NGRDI)
	add(woebbecke, WoebbeckeIndex)
	add(modifiedGreenRed, MGRVI)
	add(greenLeaf, GLI)
	add(redGreenBlue, RGBVI)
	add(normalizedGreenBlue, NGBDI)
	add(visibleAtmosphericallyResistant, VARI)
	add(kawashima, Kawashima)

	add(redGreenRatio, RGRI)
	add(vegetative, Veg)
	return m
}

// linearNames and normalizedNames keep the two historical formula
// collections addressable. cive, cive_inv and mexg belong to both and
// resolve to the same registry entry.
var (
	linearNames = []string{
		"green_blue", "red_green", "exgr", "exr", "exgr_exr", "cive", "cive_inv", "mexg", "g4",
	}
	normalizedNames = []string{
		"ndi", "woebbecke_index", "cive", "cive_inv", "veg", "mgrvi", "gli", "rgbvi",
		"rgri", "ngrdi", "ngbdi", "vari", "kawashima", "mexg",
	}
)

// Lookup returns the formula registered under name.
func Lookup(name string) (Formula, bool) {
	f, ok := registry[name]
	return f, ok
}

// MustLookup is Lookup for names known at compile time. It panics on a miss.
func MustLookup(name string) Formula {
	f, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("rgbvi: formula %q is not registered", name))
	}
	return f
}

// Names returns every registered formula name in lexical order.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}

// All returns every registered formula ordered by name.
func All() []Formula {
	return lo.Map(Names(), func(name string, _ int) Formula {
		return registry[name]
	})
}

// LinearNames lists the linear-difference collection.
func LinearNames() []string {
	return append([]string(nil), linearNames...)
}

// NormalizedNames lists the ratio and adaptive collection.
func NormalizedNames() []string {
	return append([]string(nil), normalizedNames...)
}

// Compute runs the formula registered under name.
func Compute(name string, img *Image, opts ...Option) (*Result, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormula, name)
	}
	return f.Func(img, opts...)
}
