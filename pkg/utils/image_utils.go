package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imageresizer/internal/domain"
)

const (
	DefaultQuality   = 95
	DefaultMaxPixels = 50_000_000
)

type ImageProcessor struct {
	log       *zap.Logger
	quality   int
	maxPixels int64
}

func NewImageProcessor(log *zap.Logger, quality int, maxPixels int64) *ImageProcessor {
	if quality <= 0 {
		quality = DefaultQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &ImageProcessor{log: log, quality: quality, maxPixels: maxPixels}
}

func (p *ImageProcessor) checkPixels(width, height int) error {
	if n := int64(width) * int64(height); n > p.maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrImageTooLarge, width, height, p.maxPixels)
	}
	return nil
}

// Decode turns raw upload bytes into a bitmap and remembers the detected format.
// Dimensions are read from the header first so oversized or empty images are
// rejected before any pixel buffer is allocated.
func (p *ImageProcessor) Decode(filename string, data []byte) (domain.UploadedImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("%w %s: %v", domain.ErrDecode, filename, err)
	}
	if cfg.Width <= 0 {
		return domain.UploadedImage{}, domain.ErrZeroWidth
	}
	if cfg.Height <= 0 {
		return domain.UploadedImage{}, domain.ErrZeroHeight
	}
	if err := p.checkPixels(cfg.Width, cfg.Height); err != nil {
		return domain.UploadedImage{}, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("%w %s: %v", domain.ErrDecode, filename, err)
	}

	p.log.Debug("Image decoded",
		zap.String("file", filename),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return domain.UploadedImage{
		OriginalName: filename,
		Image:        img,
		Format:       format,
	}, nil
}

// TargetHeight scales height by newWidth/width, rounding to the nearest pixel.
// The result is never below one pixel.
func TargetHeight(width, height, newWidth int) (int, error) {
	if width <= 0 {
		return 0, domain.ErrZeroWidth
	}
	if height <= 0 {
		return 0, domain.ErrZeroHeight
	}
	h := math.Round(float64(height) * float64(newWidth) / float64(width))
	if h > math.MaxInt32 {
		return 0, fmt.Errorf("%w: target height %.0f", domain.ErrImageTooLarge, h)
	}
	return max(int(h), 1), nil
}

// Resize scales img to newWidth keeping its aspect ratio, using Lanczos-3.
func (p *ImageProcessor) Resize(img image.Image, newWidth int) (image.Image, error) {
	b := img.Bounds()
	newHeight, err := TargetHeight(b.Dx(), b.Dy(), newWidth)
	if err != nil {
		return nil, err
	}
	if err := p.checkPixels(newWidth, newHeight); err != nil {
		return nil, err
	}

	resized := resize.Resize(uint(newWidth), uint(newHeight), img, resize.Lanczos3)

	p.log.Debug("Image resized",
		zap.Int("from_width", b.Dx()),
		zap.Int("from_height", b.Dy()),
		zap.Int("to_width", newWidth),
		zap.Int("to_height", newHeight))

	return resized, nil
}

// Encode writes img back in the given format. Quality applies to JPEG only.
func (p *ImageProcessor) Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}

// ContentType maps a detected format to its MIME type.
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
