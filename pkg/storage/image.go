package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// CompressImage decodes a JPEG or PNG, downscales it so the longest side is
// at most maxDimension, and re-encodes it as JPEG. Re-encoding also drops any
// payload appended after the image data.
func CompressImage(data []byte, maxDimension, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin keeps the aspect ratio while bounding the longest side
func fitWithin(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width >= height {
		return max, maxInt(1, height*max/width)
	}
	return maxInt(1, width*max/height), max
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
