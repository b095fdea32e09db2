package charts

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// backgroundLevel is the 16-bit channel value above which a pixel counts as
// blank canvas.
const backgroundLevel = 0xF500

// cropToContent trims the blank margin around the drawing, keeping pad pixels
// of canvas, and returns the re-encoded PNG with its size.
func cropToContent(data []byte, pad int) ([]byte, int, int, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode chart: %w", err)
	}

	bounds := contentBounds(img)
	if !bounds.Empty() {
		bounds = bounds.Inset(-pad).Intersect(img.Bounds())
		img = imaging.Crop(img, bounds)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, 0, 0, fmt.Errorf("encode chart: %w", err)
	}
	size := img.Bounds().Size()
	return buf.Bytes(), size.X, size.Y, nil
}

// contentBounds returns the smallest rectangle holding every non-background
// pixel, or an empty rectangle for a blank image.
func contentBounds(img image.Image) image.Rectangle {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isBackground(img, x, y) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func isBackground(img image.Image, x, y int) bool {
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0 {
		return true
	}
	return r >= backgroundLevel && g >= backgroundLevel && b >= backgroundLevel
}
