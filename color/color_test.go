package color

import "testing"

const eps = 1e-4

func near(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func rgbNear(got, want Rgb) bool {
	return near(got.R, want.R) && near(got.G, want.G) && near(got.B, want.B)
}

func TestToRgb_Achromatic(t *testing.T) {
	for _, v := range []float32{0, 0.25, 0.5, 0.8, 1} {
		for _, h := range []float32{0, 0.3, 0.7, 1} {
			got := Hsv{H: h, S: 0, V: v}.ToRgb()
			if !near(got.R, v) || !near(got.G, v) || !near(got.B, v) {
				t.Errorf("S=0 h=%v v=%v: got %+v, want grey %v", h, v, got, v)
			}
		}
	}
}

func TestToRgb_BlackAtZeroValue(t *testing.T) {
	for _, h := range []float32{0, 0.2, 0.5, 0.9} {
		got := Hsv{H: h, S: 1, V: 0}.ToRgb()
		if !rgbNear(got, Rgb{}) {
			t.Errorf("V=0 h=%v: got %+v, want black", h, got)
		}
	}
}

func TestToRgb_HueWraps(t *testing.T) {
	a := Hsv{H: 0, S: 0.6, V: 0.9}.ToRgb()
	b := Hsv{H: 1, S: 0.6, V: 0.9}.ToRgb()
	if !rgbNear(a, b) {
		t.Fatalf("H=0 gave %+v, H=1 gave %+v", a, b)
	}
}

func TestToRgb_Primaries(t *testing.T) {
	cases := []struct {
		h    float32
		want Rgb
	}{
		{0, Rgb{1, 0, 0}},            // red
		{1.0 / 6, Rgb{1, 1, 0}},      // yellow
		{2.0 / 6, Rgb{0, 1, 0}},      // green
		{3.0 / 6, Rgb{0, 1, 1}},      // cyan
		{4.0 / 6, Rgb{0, 0, 1}},      // blue
		{5.0 / 6, Rgb{1, 0, 1}},      // magenta
		{11.0 / 12, Rgb{1, 0, 0.5}},  // midway magenta->red
	}
	for _, c := range cases {
		got := Hsv{H: c.h, S: 1, V: 1}.ToRgb()
		if !rgbNear(got, c.want) {
			t.Errorf("h=%v: got %+v, want %+v", c.h, got, c.want)
		}
	}
}

func TestToRgb_OutputsInRange(t *testing.T) {
	for h := float32(0); h <= 1; h += 0.05 {
		for s := float32(0); s <= 1; s += 0.25 {
			for v := float32(0); v <= 1; v += 0.25 {
				got := Hsv{H: h, S: s, V: v}.ToRgb()
				for _, c := range []float32{got.R, got.G, got.B} {
					if c < 0 || c > 1 {
						t.Fatalf("h=%v s=%v v=%v: component %v out of range", h, s, v, c)
					}
				}
			}
		}
	}
}

func TestToRgb_ClampsWildInputs(t *testing.T) {
	got := Hsv{H: 2.5, S: -1, V: 9}.ToRgb()
	// H clamps to 1 (wraps to red case), S to 0, V to 1: grey at full value.
	if !rgbNear(got, Rgb{1, 1, 1}) {
		t.Fatalf("wild input: got %+v, want white", got)
	}
}
