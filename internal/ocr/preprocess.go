package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Preprocess prepares a photo of a paper invoice for recognition: it bounds
// the dimensions, then converts to a sharpened high-contrast grayscale JPEG.
func Preprocess(data []byte, maxDimension int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unsupported image format or corrupt image: %w", err)
	}

	if maxDimension > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
			img = resize.Thumbnail(uint(maxDimension), uint(maxDimension), img, resize.Lanczos3)
		}
	}

	enhanced := imaging.Grayscale(img)
	enhanced = imaging.AdjustContrast(enhanced, 20)
	enhanced = imaging.Sharpen(enhanced, 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, enhanced, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode processed image: %w", err)
	}
	return buf.Bytes(), nil
}
