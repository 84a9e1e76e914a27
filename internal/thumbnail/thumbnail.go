// Package thumbnail renders fixed-size raster previews for uploaded documents.
// Generation is best effort: any extraction or render failure yields "no
// thumbnail" rather than an error, so a preview problem never fails an upload.
package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas dimensions of every generated preview.
const (
	Width  = 450
	Height = 600
)

const (
	margin = 10
	// charBudget caps how much extracted text is considered before wrapping.
	charBudget = 3400
)

// Generator produces PNG previews keyed on file extension.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() Generator {
	return Generator{}
}

// Generate dispatches on the (dot-prefixed) extension and returns an encoded
// PNG plus true, or nil plus false when no thumbnail exists for the input.
// PDF deliberately has no generator path; unsupported extensions never reach
// this component because uploads validate the allow-list first.
func (Generator) Generate(data []byte, ext string) ([]byte, bool) {
	switch strings.ToLower(ext) {
	case ".docx":
		text, err := extractDocxText(data)
		if err != nil {
			return nil, false
		}
		return renderText(text)
	case ".xlsx":
		text, err := extractXlsxText(data)
		if err != nil {
			return nil, false
		}
		return renderText(text)
	case ".txt":
		return renderText(string(data))
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif":
		return renderImage(data)
	default:
		return nil, false
	}
}

// renderText draws wrapped text top-left aligned, black on white, with a
// single fixed small font, and returns the PNG encoding.
func renderText(text string) ([]byte, bool) {
	face := basicfont.Face7x13
	lineHeight := face.Height
	maxCols := (Width - 2*margin) / face.Advance
	maxLines := (Height - 2*margin) / lineHeight

	runes := []rune(text)
	if len(runes) > charBudget {
		runes = runes[:charBudget]
	}
	lines := wrap(string(runes), maxCols, maxLines)

	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(margin, margin+face.Ascent+i*lineHeight)
		d.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// wrap breaks text into at most maxLines rows of at most maxCols runes each.
// Tabs expand to four spaces; carriage returns are dropped.
func wrap(text string, maxCols, maxLines int) []string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\t", "    ")

	out := make([]string, 0, maxLines)
	for _, src := range strings.Split(text, "\n") {
		if len(out) >= maxLines {
			break
		}
		runes := []rune(src)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > 0 && len(out) < maxLines {
			n := maxCols
			if n > len(runes) {
				n = len(runes)
			}
			out = append(out, string(runes[:n]))
			runes = runes[n:]
		}
	}
	return out
}
