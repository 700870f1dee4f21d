package plot

import "image/color"

// Colormap maps a normalized value in [0, 1] onto a color ramp by linear
// interpolation between its stops.
type Colormap struct {
	Name  string
	Stops []color.NRGBA
}

// At returns the ramp color for t, clamped to [0, 1].
func (cm Colormap) At(t float64) color.NRGBA {
	if len(cm.Stops) == 0 {
		return color.NRGBA{A: 255}
	}
	if len(cm.Stops) == 1 || t <= 0 {
		return cm.Stops[0]
	}
	if t >= 1 {
		return cm.Stops[len(cm.Stops)-1]
	}

	pos := t * float64(len(cm.Stops)-1)
	i := int(pos)
	frac := pos - float64(i)

	a, b := cm.Stops[i], cm.Stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + frac*(float64(y)-float64(x)))
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: 255,
	}
}

var (
	Viridis = Colormap{
		Name: "viridis",
		Stops: []color.NRGBA{
			{68, 1, 84, 255},
			{59, 82, 139, 255},
			{33, 145, 140, 255},
			{94, 201, 98, 255},
			{253, 231, 37, 255},
		},
	}

	Blues = Colormap{
		Name: "Blues",
		Stops: []color.NRGBA{
			{247, 251, 255, 255},
			{158, 202, 225, 255},
			{49, 130, 189, 255},
			{8, 48, 107, 255},
		},
	}

	Reds = Colormap{
		Name: "Reds",
		Stops: []color.NRGBA{
			{255, 245, 240, 255},
			{252, 146, 114, 255},
			{222, 45, 38, 255},
			{103, 0, 13, 255},
		},
	}
)

// ColormapByName resolves the colormap names accepted by the HTTP API.
func ColormapByName(name string) (Colormap, bool) {
	switch name {
	case "", "viridis":
		return Viridis, true
	case "Blues", "blues":
		return Blues, true
	case "Reds", "reds":
		return Reds, true
	}
	return Colormap{}, false
}
