package puzzle

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"golang.org/x/image/vector"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/game/modes"
)

// ErrInvalidGrid is returned for rows or cols outside the supported range.
var ErrInvalidGrid = modes.ErrInvalidSettings

// Splitter cuts a source image into interlocking puzzle pieces
type Splitter struct {
	loader ImageLoader
	logger *slog.Logger
	seed   func() int64
}

type SplitterOption func(*Splitter)

// WithSeed fixes the tab pattern seed
func WithSeed(seed int64) SplitterOption {
	return func(s *Splitter) { s.seed = func() int64 { return seed } }
}

func WithLogger(logger *slog.Logger) SplitterOption {
	return func(s *Splitter) { s.logger = logger }
}

func NewSplitter(loader ImageLoader, opts ...SplitterOption) *Splitter {
	s := &Splitter{
		loader: loader,
		logger: slog.Default(),
		seed:   func() int64 { return time.Now().UnixNano() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split loads imageURL and cuts it into rows*cols pieces in row-major order.
// It returns either every piece or an error, never a partial set.
func (s *Splitter) Split(ctx context.Context, imageURL string, rows, cols int) ([]game.PuzzlePiece, error) {
	if err := modes.ValidateGrid(rows, cols); err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := s.loader.Load(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	pattern := NewTabPattern(rows, cols, rand.New(rand.NewSource(s.seed())))
	pieces, err := SplitImage(ctx, img, pattern)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("split puzzle image",
		"rows", rows,
		"cols", cols,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"elapsed", time.Since(start))
	return pieces, nil
}

// SplitImage cuts img along pattern. Every piece canvas carries a margin
// as deep as a tab, and tabs show the neighbouring source pixels.
func SplitImage(ctx context.Context, img image.Image, pattern TabPattern) ([]game.PuzzlePiece, error) {
	if err := modes.ValidateGrid(pattern.Rows, pattern.Cols); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	pieceW := float64(bounds.Dx()) / float64(pattern.Cols)
	pieceH := float64(bounds.Dy()) / float64(pattern.Rows)
	tab := math.Min(pieceW, pieceH) * TabSize
	padding := tab

	canvasW := int(math.Ceil(pieceW+2*padding)) + 1
	canvasH := int(math.Ceil(pieceH+2*padding)) + 1
	canvas := image.Rect(0, 0, canvasW, canvasH)

	pieces := make([]game.PuzzlePiece, 0, pattern.Rows*pattern.Cols)
	for row := 0; row < pattern.Rows; row++ {
		for col := 0; col < pattern.Cols; col++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			originX := float64(col)*pieceW - padding
			originY := float64(row)*pieceH - padding
			sp := image.Pt(bounds.Min.X+int(math.Floor(originX)), bounds.Min.Y+int(math.Floor(originY)))

			region := image.NewRGBA(canvas)
			draw.Draw(region, canvas, img, sp, draw.Src)

			path := PiecePath(
				padding+originX-math.Floor(originX),
				padding+originY-math.Floor(originY),
				pieceW, pieceH, tab,
				pattern.Edges(row, col),
			)

			out := image.NewRGBA(canvas)
			rasterize(path, canvasW, canvasH).Draw(out, canvas, region, image.Point{})

			dataURL, err := encodeDataURL(out)
			if err != nil {
				return nil, fmt.Errorf("failed to encode piece %d,%d: %w", row, col, err)
			}

			pieces = append(pieces, game.PuzzlePiece{
				Index:        row*pattern.Cols + col,
				ImageDataURL: dataURL,
				Image:        out,
			})
		}
	}

	return pieces, nil
}

func rasterize(p Path, w, h int) *vector.Rasterizer {
	z := vector.NewRasterizer(w, h)
	for _, op := range p {
		a, b, c := op.Pts[0], op.Pts[1], op.Pts[2]
		switch op.Kind {
		case OpMoveTo:
			z.MoveTo(float32(a.X), float32(a.Y))
		case OpLineTo:
			z.LineTo(float32(a.X), float32(a.Y))
		case OpCubeTo:
			z.CubeTo(float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(c.X), float32(c.Y))
		}
	}
	z.ClosePath()
	return z
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
