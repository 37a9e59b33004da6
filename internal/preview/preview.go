// Package preview draws a storyboard contact sheet of sampled frames so a
// timeline can be checked without the real renderer.
package preview

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/engine"
	"github.com/idamadam/promovideo/internal/system"
)

var ErrOptions = errors.New("invalid preview options")

type Options struct {
	Every     int // sample every Every-th frame
	Columns   int
	TileWidth int
}

var (
	background = color.RGBA{0x12, 0x12, 0x16, 0xff}
	labelBar   = color.RGBA{0, 0, 0, 0xc0}
	labelText  = image.NewUniform(color.RGBA{0xee, 0xee, 0xee, 0xff})
)

const labelHeight = 16

// Board renders storyboards for one scenario
type Board struct {
	comp   *engine.Composition
	boxes  map[string]effects.Box
	width  int
	height int
	log    *zap.Logger
}

// NewBoard prepares a board. sc must be the scenario comp was built from;
// only its element boxes and frame size are read here.
func NewBoard(comp *engine.Composition, sc *director.Scenario, log *zap.Logger) *Board {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Board{
		comp:   comp,
		boxes:  make(map[string]effects.Box),
		width:  sc.Width,
		height: sc.Height,
		log:    log.Named("preview"),
	}
	if b.width <= 0 || b.height <= 0 {
		b.width, b.height = director.ReferenceWidth, director.ReferenceHeight
	}
	for _, s := range sc.Scenes {
		effects.Walk(s.Elements, func(spec effects.ElementSpec, _ int) {
			b.boxes[spec.ID] = spec.Box
		})
	}
	return b
}

// Frames lists the sampled frames; the last frame is always included
func (b *Board) Frames(every int) []int {
	total := b.comp.TotalFrames()
	var frames []int
	for f := 0; f < total; f += every {
		frames = append(frames, f)
	}
	if frames[len(frames)-1] != total-1 {
		frames = append(frames, total-1)
	}
	return frames
}

// Storyboard draws the sampled frames into a grid of tiles
func (b *Board) Storyboard(opts Options) (*image.RGBA, error) {
	if opts.Every <= 0 || opts.Columns <= 0 || opts.TileWidth < 16 {
		return nil, fmt.Errorf("%w: %+v", ErrOptions, opts)
	}

	frames := b.Frames(opts.Every)
	tileW := opts.TileWidth
	tileH := tileW * b.height / b.width
	cols := min(opts.Columns, len(frames))
	rows := (len(frames) + cols - 1) / cols

	sheet := image.NewRGBA(image.Rect(0, 0, cols*tileW, rows*(tileH+labelHeight)))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, f := range frames {
		rs, err := b.comp.Evaluate(f)
		if err != nil {
			return nil, err
		}
		canvas := b.Frame(rs)

		x := (i % cols) * tileW
		y := (i / cols) * (tileH + labelHeight)
		tile := image.Rect(x, y, x+tileW, y+tileH)
		draw.ApproxBiLinear.Scale(sheet, tile, canvas, canvas.Bounds(), draw.Over, nil)
		system.PutImage(canvas)

		label := image.Rect(x, y+tileH, x+tileW, y+tileH+labelHeight)
		draw.Draw(sheet, label, image.NewUniform(labelBar), image.Point{}, draw.Over)
		drawText(sheet, x+3, y+tileH+labelHeight-4, caption(rs))
	}
	b.log.Debug("Storyboard drawn", zap.Int("tiles", len(frames)), zap.Int("columns", cols))
	return sheet, nil
}

// Frame draws one RenderState at full size. The image comes from the shared
// image pool; callers hand it back with Release.
func (b *Board) Frame(rs engine.RenderState) *image.RGBA {
	canvas := system.GetImage(b.width, b.height)
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, l := range rs.Layers {
		fill(canvas, canvas.Bounds(), tint(l.SceneID, 0x30), l.Blend)
	}

	// draw in a fixed order so overlapping boxes stack the same way each time
	ids := make([]string, 0, len(rs.Elements))
	for id := range rs.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		el := rs.Elements[id]
		box, ok := b.boxes[id]
		if !ok || box.W == 0 || box.H == 0 {
			continue
		}
		fill(canvas, placed(box, el.Properties), tint(id, 0xff), el.Opacity)
	}
	return canvas
}

// Release returns a canvas from Frame to the shared pool
func (b *Board) Release(img *image.RGBA) {
	system.PutImage(img)
}

// placed moves and scales box about its centre
func placed(box effects.Box, p effects.Properties) image.Rectangle {
	cx := float64(box.X) + float64(box.W)/2 + p.TranslateX
	cy := float64(box.Y) + float64(box.H)/2 + p.TranslateY
	hw := float64(box.W) * p.Scale / 2
	hh := float64(box.H) * p.Scale / 2
	return image.Rect(int(cx-hw), int(cy-hh), int(cx+hw), int(cy+hh))
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA, opacity float64) {
	opacity = min(max(opacity, 0), 1)
	if opacity == 0 {
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// tint picks a stable colour for a name
func tint(name string, alpha uint8) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.RGBA{R: 0x40 | uint8(v), G: 0x40 | uint8(v>>8), B: 0x40 | uint8(v>>16), A: alpha}
}

func caption(rs engine.RenderState) string {
	parts := []string{fmt.Sprintf("#%d", rs.Frame)}
	names := make([]string, 0, len(rs.States))
	for name := range rs.States {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, rs.States[name].State)
	}
	return strings.Join(parts, " ")
}

func drawText(dst draw.Image, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  labelText,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// WritePNG saves img, creating the directory first
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
