package render

import (
	"testing"

	"github.com/matzehuels/polarcoaster/pkg/errors"
)

func TestConvertWithoutLibrsvg(t *testing.T) {
	t.Setenv("PATH", "")

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	if _, err := ToPDF(svg); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want %v", err, errors.ErrCodeUnsupported)
	}
	if _, err := ToPNG(svg, 0); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG() error = %v, want %v", err, errors.ErrCodeUnsupported)
	}
}

func TestToPNG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}

	png, err := ToPNG([]byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"/>`), 1)
	if err != nil {
		t.Fatalf("ToPNG() error: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("ToPNG() output is not a PNG")
	}
}
