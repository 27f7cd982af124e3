package label

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
)

// Format thresholds a rendered label to pure black and white and places it
// at the top left of a white width x height canvas. Parts of the label
// outside the canvas are cut off.
func Format(pngData []byte, width, height int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode label image: %w", err)
	}

	bounds := src.Bounds()
	mono := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			mono.SetGray(x-bounds.Min.X, y-bounds.Min.Y, threshold(src.At(x, y)))
		}
	}

	canvas := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, mono.Bounds(), mono, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode label image: %w", err)
	}
	return buf.Bytes(), nil
}

// threshold maps dark, mostly opaque pixels to black and everything else,
// including fully transparent pixels, to white.
func threshold(c color.Color) color.Gray {
	p := color.NRGBAModel.Convert(c).(color.NRGBA)
	if p.A == 0 {
		return color.Gray{Y: 0xff}
	}
	luma := 0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B)
	if luma < 127 && p.A > 127 {
		return color.Gray{Y: 0}
	}
	return color.Gray{Y: 0xff}
}
