package model

import (
	"image"

	"github.com/nfnt/resize"
)

// Preprocess converts an image to the planar RGB layout the model expects:
// size x size pixels, channel-major, each value scaled to [0, 1].
func Preprocess(img image.Image, size int) []float32 {
	targetSize := uint(size)
	resized := resize.Resize(targetSize, targetSize, img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	inputData := make([]float32, 3*width*height)
	plane := width * height

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			pixelIndex := y*width + x
			inputData[pixelIndex] = float32(r) / 65535.0
			inputData[plane+pixelIndex] = float32(g) / 65535.0
			inputData[2*plane+pixelIndex] = float32(b) / 65535.0
		}
	}

	return inputData
}
