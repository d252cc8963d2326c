package rgbvi

// Linear indices: weighted channel differences rescaled with fixed bounds.
// Products are wrapped in float64 conversions so no architecture fuses them
// into multiply-adds; results must not depend on GOARCH.

const (
	citationWoebbecke1994 = `Woebbecke, D.M., Meyer, G.E., Bargen, K.V., & Mortensen, D.A. (1994). ` +
		`"Color indices for weed identification under various soil, residue, and lighting conditions." ` +
		`Transactions of the ASABE, 38, 259-269.`
	citationMeyer1999 = `Meyer, G.E., Hindman, T.W., & Laksmi, K. (1999). ` +
		`"Machine vision detection parameters for plant species identification." ` +
		`Proceedings of the SPIE, Volume 3543, p. 327-335. doi:10.1117/12.336896`
	citationKataoka2003 = `T. Kataoka, T. Kaneko, H. Okamoto and S. Hata, ` +
		`"Crop growth estimation system using machine vision," ` +
		`Proceedings 2003 IEEE/ASME International Conference on Advanced Intelligent Mechatronics (AIM 2003), ` +
		`Kobe, Japan, 2003, pp. b1079-b1083 vol.2, doi: 10.1109/AIM.2003.1225492.`
)

var (
	greenBlue = Formula{
		Name: "green_blue", Title: "Green minus blue", Citation: citationWoebbecke1994,
		Kind: KindFixed, Lower: -255, Upper: 255,
	}
	redGreen = Formula{
		Name: "red_green", Title: "Red minus green", Citation: citationWoebbecke1994,
		Kind: KindFixed, Lower: -255, Upper: 255,
	}
	exGreen = Formula{
		Name: "exgr", Title: "Excess green", Citation: citationWoebbecke1994,
		Kind: KindFixed, Lower: -510, Upper: 510,
	}
	exRed = Formula{
		Name: "exr", Title: "Excess red", Citation: citationMeyer1999,
		Kind: KindFixed, Lower: -255, Upper: 357,
	}
	exGreenMinusExRed = Formula{
		Name: "exgr_exr", Title: "Excess green minus excess red",
		Kind: KindFixed, Lower: -867, Upper: 765,
	}
	colorIndexVegetation = Formula{
		Name: "cive", Title: "Color index of vegetation extraction", Citation: citationKataoka2003,
		Kind: KindFixed, Lower: -188.01755, Upper: 229.41745,
	}
	colorIndexVegetationInv = Formula{
		Name: "cive_inv", Title: "Inverse color index of vegetation extraction", Citation: citationKataoka2003,
		Kind: KindFixed, Lower: -229.41745, Upper: 188.01755,
	}
	modifiedExGreen = Formula{
		Name: "mexg", Title: "Modified excess green",
		Kind: KindFixed, Lower: -304.725, Upper: 321.3,
	}
	greenFour = Formula{
		Name: "g4", Title: "Four times green minus red",
		Kind: KindFixed, Lower: -255, Upper: 1020,
	}
)

// GreenBlue computes G-B.
func GreenBlue(img *Image, opts ...Option) (*Result, error) {
	return greenBlue.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return g - b, false
	})
}

// RedGreen computes R-G.
func RedGreen(img *Image, opts ...Option) (*Result, error) {
	return redGreen.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return r - g, false
	})
}

// ExG computes excess green, 2G-R-B.
func ExG(img *Image, opts ...Option) (*Result, error) {
	return exGreen.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return 2*g - r - b, false
	})
}

// ExR computes excess red, 1.4R-G.
func ExR(img *Image, opts ...Option) (*Result, error) {
	return exRed.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return float64(1.4*r) - g, false
	})
}

// ExGExR computes excess green minus excess red.
func ExGExR(img *Image, opts ...Option) (*Result, error) {
	return exGreenMinusExRed.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return 2*g - r - b - (float64(1.4*r) - g), false
	})
}

// CIVE is the "green" principal component projection of field images,
// 0.441R - 0.811G + 0.385B + 18.78745.
func CIVE(img *Image, opts ...Option) (*Result, error) {
	return colorIndexVegetation.fixed(img, opts, cive)
}

// CIVEInv negates CIVE.
func CIVEInv(img *Image, opts ...Option) (*Result, error) {
	return colorIndexVegetationInv.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return float64(-0.441*r) + float64(0.811*g) - float64(0.385*b) - 18.78745, false
	})
}

// MExG computes modified excess green, 1.26G - 0.884R - 0.311B.
func MExG(img *Image, opts ...Option) (*Result, error) {
	return modifiedExGreen.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return float64(1.26*g) - float64(0.884*r) - float64(0.311*b), false
	})
}

// G4 computes 4G-R.
func G4(img *Image, opts ...Option) (*Result, error) {
	return greenFour.fixed(img, opts, func(b, g, r float64) (float64, bool) {
		return 4*g - r, false
	})
}

func cive(b, g, r float64) (float64, bool) {
	return float64(0.441*r) - float64(0.811*g) + float64(0.385*b) + 18.78745, false
}
