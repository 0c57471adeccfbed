package picture

import "testing"

func TestFormat_Equal(t *testing.T) {
	base := Format{Chroma: ChromaI420, Width: 320, Height: 240, Aspect: 4.0 / 3.0}

	tests := []struct {
		name  string
		other Format
		want  bool
	}{
		{"identical", base, true},
		{"aspect differs", Format{Chroma: ChromaI420, Width: 320, Height: 240, Aspect: 16.0 / 9.0}, true},
		{"chroma differs", Format{Chroma: ChromaRGBA, Width: 320, Height: 240}, false},
		{"width differs", Format{Chroma: ChromaI420, Width: 321, Height: 240}, false},
		{"height differs", Format{Chroma: ChromaI420, Width: 320, Height: 241}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_Resolve(t *testing.T) {
	realized := Format{Chroma: ChromaI420, Width: 640, Height: 480, Aspect: 4.0 / 3.0}

	tests := []struct {
		name      string
		requested Format
		want      Format
	}{
		{"all wildcard", Format{}, Format{Chroma: ChromaI420, Width: 640, Height: 480}},
		{"chroma only", Format{Chroma: ChromaRGBA}, Format{Chroma: ChromaRGBA, Width: 640, Height: 480}},
		{"width only", Format{Width: 100}, Format{Chroma: ChromaI420, Width: 100, Height: 480}},
		{"explicit kept", Format{Chroma: ChromaGrey, Width: 10, Height: 20, Aspect: 2},
			Format{Chroma: ChromaGrey, Width: 10, Height: 20, Aspect: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.requested.Resolve(realized)
			if got != tt.want {
				t.Errorf("Resolve: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseChroma(t *testing.T) {
	tests := []struct {
		in      string
		want    Chroma
		wantErr bool
	}{
		{"", "", false},
		{"I420", ChromaI420, false},
		{"yuv420p", ChromaI420, false},
		{"gray", ChromaGrey, false},
		{"rgba", ChromaRGBA, false},
		{"jpg", CodecJPEG, false},
		{"tif", CodecTIFF, false},
		{"WEBP", CodecWebP, false},
		{"nv12", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChroma(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("chroma: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChroma_IsRaw(t *testing.T) {
	for _, c := range RawChromas() {
		if !c.IsRaw() {
			t.Errorf("%s should be raw", c)
		}
	}
	for _, c := range []Chroma{CodecPNG, CodecJPEG, "", "XXXX"} {
		if c.IsRaw() {
			t.Errorf("%q should not be raw", c)
		}
	}
}

func TestFormat_String(t *testing.T) {
	if got := (Format{Chroma: ChromaI420, Width: 2, Height: 3}).String(); got != "I420 2x3" {
		t.Errorf("String: got %q", got)
	}
	if got := (Format{}).String(); got != "* 0x0" {
		t.Errorf("String wildcard: got %q", got)
	}
}

func TestFormat_Fits(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		max    int64
		want   bool
	}{
		{"under", Format{Width: 4, Height: 4}, 20, true},
		{"exact", Format{Width: 4, Height: 5}, 20, true},
		{"over", Format{Width: 5, Height: 5}, 20, false},
		{"huge", Format{Width: 1 << 40, Height: 1 << 40}, DefaultMaxPixels, false},
		{"zero size", Format{}, 20, false},
		{"negative", Format{Width: -4, Height: -4}, 20, false},
		{"no budget", Format{Width: 1, Height: 1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Fits(tt.max); got != tt.want {
				t.Errorf("Fits(%d): got %v, want %v", tt.max, got, tt.want)
			}
		})
	}
}
