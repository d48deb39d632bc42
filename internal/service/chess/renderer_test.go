package chess

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
)

func decodePNG(t *testing.T, data []byte) *image.RGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		out := image.NewRGBA(img.Bounds())
		for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
			for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
				out.Set(x, y, img.At(x, y))
			}
		}
		rgba = out
	}
	return rgba
}

func TestRenderPNGSize(t *testing.T) {
	r := NewSVGBoardRenderer()
	data, err := r.RenderPNG(context.Background(), corechess.NewBoard(), RenderOptions{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decodePNG(t, data)
	if got := img.Bounds().Dx(); got != 64*8+24*2 {
		t.Fatalf("width = %d", got)
	}
}

func TestRenderArrowChangesPixels(t *testing.T) {
	r := NewSVGBoardRenderer()
	ctx := context.Background()
	plain, err := r.RenderPNG(ctx, corechess.NewBoard(), RenderOptions{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	marked, err := r.RenderPNG(ctx, corechess.NewBoard(), RenderOptions{Arrow: &Arrow{From: "e2", To: "e4"}})
	if err != nil {
		t.Fatalf("RenderPNG arrow: %v", err)
	}
	a, b := decodePNG(t, plain), decodePNG(t, marked)

	// centre of e3 lies on the arrow shaft
	rect, _ := squareRect("e3", 64, image.Point{X: 24, Y: 24})
	cx, cy := rect.Min.X+32, rect.Min.Y+32
	if a.RGBAAt(cx, cy) == b.RGBAAt(cx, cy) {
		t.Fatalf("arrow not drawn through e3")
	}
	// h8 is untouched
	rect, _ = squareRect("h8", 64, image.Point{X: 24, Y: 24})
	if a.RGBAAt(rect.Min.X+2, rect.Min.Y+2) != b.RGBAAt(rect.Min.X+2, rect.Min.Y+2) {
		t.Fatalf("arrow leaked onto h8")
	}
}

func TestRenderRejectsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSVGBoardRenderer().RenderPNG(ctx, corechess.NewBoard(), RenderOptions{}); err == nil {
		t.Fatalf("cancelled render should fail")
	}
}

func TestSquareRect(t *testing.T) {
	origin := image.Point{X: 10, Y: 10}
	if r, ok := squareRect("a8", 64, origin); !ok || r.Min != origin {
		t.Fatalf("a8 rect = %v", r)
	}
	if r, ok := squareRect("h1", 64, origin); !ok || r.Max != (image.Point{X: 10 + 512, Y: 10 + 512}) {
		t.Fatalf("h1 rect = %v", r)
	}
	if _, ok := squareRect("i9", 64, origin); ok {
		t.Fatalf("i9 should be rejected")
	}
}
