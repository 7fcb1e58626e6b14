package internal

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/framefile/framefile/common"
)

// EncodeImage packs a whole file into a single square-ish rgb24 frame saved
// as a PNG. The frame header carries the payload length, so decode recovers
// the exact original bytes with no trailing padding. A one-shot alternative
// to the video pipeline for files that fit in memory.
func EncodeImage(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading input file %w", err)
	}

	total := len(data) + common.HeaderSize
	pixels := (total + common.PixelBytes - 1) / common.PixelBytes
	width := int(math.Ceil(math.Sqrt(float64(pixels))))
	height := (pixels + width - 1) / width
	geo := Geometry{Width: width, Height: height}

	frame := make([]byte, geo.FrameSize())
	if err := EncodeFrame(frame, 0, data); err != nil {
		return err
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[4*i] = frame[common.PixelBytes*i]
		img.Pix[4*i+1] = frame[common.PixelBytes*i+1]
		img.Pix[4*i+2] = frame[common.PixelBytes*i+2]
		img.Pix[4*i+3] = 0xff
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output image %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding png %w", err)
	}
	log.Printf("[INFO] image saved: %s, %dx%d pixels, %d payload bytes", outPath, width, height, len(data))
	return nil
}

// DecodeImage restores a file stored with EncodeImage.
func DecodeImage(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input image %w", err)
	}
	defer in.Close()
	img, err := png.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding png %w", err)
	}

	bounds := img.Bounds()
	frame := make([]byte, 0, bounds.Dx()*bounds.Dy()*common.PixelBytes)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			frame = append(frame, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	_, payload, err := DecodeFrame(frame)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, payload, 0644); err != nil {
		return fmt.Errorf("writing output file %w", err)
	}
	log.Printf("[INFO] file restored: %s, size: %d bytes", outPath, len(payload))
	return nil
}
