package chess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
)

// Arrow marks a suggested move on the rendered board.
type Arrow struct {
	From string
	To   string
}

type RenderOptions struct {
	Arrow *Arrow
	// LastMove squares are tinted.
	LastMove *Arrow
}

// PieceSource is the part of a position the renderer needs.
type PieceSource interface {
	PieceAt(square string) corechess.Piece
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board PieceSource, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
	squareSize int
	margin     int
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{squareSize: 64, margin: 24}
}

var (
	lightSquare         = color.RGBA{R: 240, G: 217, B: 181, A: 255}
	darkSquare          = color.RGBA{R: 181, G: 136, B: 99, A: 255}
	backgroundColor     = color.RGBA{R: 38, G: 36, B: 33, A: 255}
	coordinateTextColor = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
	lastMoveFill        = color.NRGBA{R: 246, G: 246, B: 105, A: 110}
	hintArrowColor      = color.NRGBA{R: 21, G: 120, B: 27, A: 200}
)

const files = "abcdefgh"

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board PieceSource, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	boardSize := r.squareSize * 8
	total := boardSize + r.margin*2
	origin := image.Point{X: r.margin, Y: r.margin}
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawSquares(img, r.squareSize, origin)
	if lm := opts.LastMove; lm != nil {
		drawSquareOverlay(img, lm.From, r.squareSize, origin, lastMoveFill)
		drawSquareOverlay(img, lm.To, r.squareSize, origin, lastMoveFill)
	}
	if err := drawPieces(img, board, r.squareSize, origin); err != nil {
		return nil, err
	}
	if a := opts.Arrow; a != nil {
		drawArrow(img, a.From, a.To, r.squareSize, origin, hintArrowColor)
	}
	drawCoordinates(img, r.squareSize, origin, r.margin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			clr := lightSquare
			if (col+(7-row))%2 == 0 {
				clr = darkSquare
			}
			x := origin.X + col*squareSize
			y := origin.Y + row*squareSize
			imagedraw.Draw(dst, image.Rect(x, y, x+squareSize, y+squareSize), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board PieceSource, squareSize int, origin image.Point) error {
	for rank := 8; rank >= 1; rank-- {
		for col := 0; col < 8; col++ {
			sq := fmt.Sprintf("%c%d", files[col], rank)
			piece := board.PieceAt(sq)
			if piece.Empty() {
				continue
			}
			img, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			rect, _ := squareRect(sq, squareSize, origin)
			imagedraw.Draw(dst, rect, img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point, margin int) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEnd := origin.Y + 8*squareSize

	for i := 0; i < 8; i++ {
		rankCenter := origin.Y + i*squareSize + squareSize/2
		drawCenteredText(drawer, fmt.Sprintf("%d", 8-i), origin.X-margin/2, rankCenter+ascent/2)
		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(files[i]), fileCenter, boardEnd+(margin+ascent)/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawSquareOverlay(img *image.RGBA, sq string, squareSize int, origin image.Point, clr color.Color) {
	rect, ok := squareRect(sq, squareSize, origin)
	if !ok {
		return
	}
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func squareRect(sq string, squareSize int, origin image.Point) (image.Rectangle, bool) {
	if len(sq) != 2 || sq[0] < 'a' || sq[0] > 'h' || sq[1] < '1' || sq[1] > '8' {
		return image.Rectangle{}, false
	}
	col := int(sq[0] - 'a')
	row := 7 - int(sq[1]-'1')
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize), true
}

type pointF struct {
	X float64
	Y float64
}

func drawArrow(img *image.RGBA, from, to string, squareSize int, origin image.Point, clr color.Color) {
	startRect, ok1 := squareRect(from, squareSize, origin)
	endRect, ok2 := squareRect(to, squareSize, origin)
	if !ok1 || !ok2 || from == to {
		return
	}
	sx := float64(startRect.Min.X + squareSize/2)
	sy := float64(startRect.Min.Y + squareSize/2)
	ex := float64(endRect.Min.X + squareSize/2)
	ey := float64(endRect.Min.Y + squareSize/2)

	dx, dy := ex-sx, ey-sy
	length := math.Hypot(dx, dy)
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.12
	headHalf := float64(squareSize) * 0.28
	bx, by := sx+dirX*baseLength, sy+dirY*baseLength

	fillQuad(img,
		pointF{sx - perpX*halfWidth, sy - perpY*halfWidth},
		pointF{sx + perpX*halfWidth, sy + perpY*halfWidth},
		pointF{bx + perpX*halfWidth, by + perpY*halfWidth},
		pointF{bx - perpX*halfWidth, by - perpY*halfWidth},
		clr)
	fillTriangle(img,
		pointF{ex, ey},
		pointF{bx - perpX*headHalf, by - perpY*headHalf},
		pointF{bx + perpX*headHalf, by + perpY*headHalf},
		clr)
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangle(img, p0, p1, p2, clr)
	fillTriangle(img, p0, p2, p3, clr)
}

func fillTriangle(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(math.Min(a.X, math.Min(b.X, c.X))))
	maxX := int(math.Ceil(math.Max(a.X, math.Max(b.X, c.X))))
	minY := int(math.Floor(math.Min(a.Y, math.Min(b.Y, c.Y))))
	maxY := int(math.Ceil(math.Max(a.Y, math.Max(b.Y, c.Y))))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}

// blendPixel composites clr over the existing pixel (source-over).
func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	dst := img.RGBAAt(x, y)
	inv := 0xffff - sa
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(dst.R)*0x101*inv/0xffff) >> 8),
		G: uint8((sg + uint32(dst.G)*0x101*inv/0xffff) >> 8),
		B: uint8((sb + uint32(dst.B)*0x101*inv/0xffff) >> 8),
		A: uint8((sa + uint32(dst.A)*0x101*inv/0xffff) >> 8),
	})
}
