package thumbnail

import (
	"bytes"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"

	// Decoders for the supported raster formats (png registers via the named
	// import above).
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
)

// renderImage decodes a raster image and resamples it to exactly fill the
// canvas. The source stretches to fit; aspect ratio is not preserved.
func renderImage(data []byte) ([]byte, bool) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
