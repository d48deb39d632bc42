package chess

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
)

// Glyph bodies live in a 45x45 view box; %[1]s is the fill, %[2]s the stroke.
var pieceGlyphs = map[corechess.PieceType]string{
	corechess.Pawn: `<circle cx="22.5" cy="13" r="5.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M17 36 L28 36 L26 19 L19 19 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="12" y="35" width="21" height="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	corechess.Knight: `<path d="M14 39 L33 39 L31 24 C31 14 26 8 19 7 L18 11 L12 17 L12 22 L16 23 L21 19 L18 28 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="17" cy="14" r="1.5" fill="%[2]s"/>`,
	corechess.Bishop: `<circle cx="22.5" cy="8" r="3" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M15 30 C13 22 18 14 22.5 11 C27 14 32 22 30 30 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="11" y="33" width="23" height="6" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	corechess.Rook: `<path d="M12 9 L16 9 L16 13 L20.5 13 L20.5 9 L24.5 9 L24.5 13 L29 13 L29 9 L33 9 L33 17 L29 20 L29 31 L16 31 L16 20 L12 17 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="10" y="33" width="25" height="6" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	corechess.Queen: `<path d="M9 15 L14 31 L31 31 L36 15 L28 24 L22.5 11 L17 24 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="9" cy="13" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="22.5" cy="9" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="36" cy="13" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="11" y="33" width="23" height="6" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	corechess.King: `<path d="M21 4 L24 4 L24 7 L27 7 L27 10 L24 10 L24 14 L21 14 L21 10 L18 10 L18 7 L21 7 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.2"/>
<path d="M12 31 C8 24 12 16 22.5 18 C33 16 37 24 33 31 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<rect x="11" y="33" width="23" height="6" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
}

func pieceSVG(p corechess.Piece) (string, error) {
	body, ok := pieceGlyphs[p.Type]
	if !ok {
		return "", fmt.Errorf("no glyph for piece %v", p.Type)
	}
	fill, stroke := "#f8f8f8", "#1a1a1a"
	if p.Color == corechess.Black {
		fill, stroke = "#262626", "#e6e6e6"
	}
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">` +
		fmt.Sprintf(body, fill, stroke) + `</svg>`, nil
}

type pieceCacheKey struct {
	piece corechess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece corechess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	svg, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}
