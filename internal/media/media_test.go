package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url, want string
		ok        bool
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712/venues/venue_12_1.jpg", "venues/venue_12_1", true},
		{"https://res.cloudinary.com/demo/image/upload/turfs/t_3.png", "turfs/t_3", true},
		{"https://example.com/images/a.jpg", "", false},
		{"https://res.cloudinary.com/demo/image/upload/v1712", "", false},
	}
	for _, tt := range tests {
		got, err := PublicIDFromURL(tt.url)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("PublicIDFromURL(%q) = %q, %v; want %q", tt.url, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("PublicIDFromURL(%q) = %q, want error", tt.url, got)
		}
	}
}

func TestNormalizeDownscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3200, 1600))
	for x := 0; x < 3200; x += 7 {
		src.Set(x, x%1600, color.RGBA{R: 200, A: 255})
	}
	var in bytes.Buffer
	if err := png.Encode(&in, src); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	out, err := Normalize(&in, 1600)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	img, err := imaging.Decode(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 800 {
		t.Fatalf("got %dx%d, want 1600x800", b.Dx(), b.Dy())
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := Normalize(bytes.NewReader([]byte("not an image")), 1600); err == nil {
		t.Fatal("expected decode error")
	}
}
