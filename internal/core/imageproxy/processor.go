package imageproxy

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"Snapgram/internal/core/blobs"
)

// Processor defines the interface for image processing operations.
type Processor interface {
	// Process crop-fills image data to the requested box.
	// Returns the processed image as JPEG bytes, or an error if processing fails.
	Process(data []byte, opts blobs.PreviewOptions) ([]byte, error)
}

// ImageProcessor implements the Processor interface using the imaging library.
type ImageProcessor struct{}

// NewProcessor creates a new ImageProcessor instance.
func NewProcessor() Processor {
	return &ImageProcessor{}
}

// Process scales the source to cover Width x Height, crops the excess keeping
// the region selected by Gravity, and encodes JPEG at Quality.
func (p *ImageProcessor) Process(data []byte, opts blobs.PreviewOptions) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrUnsupportedFormat)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrProcessingFailed, err)
	}

	if format != "jpeg" && format != "png" && format != "webp" {
		return nil, fmt.Errorf("%w: format %s", ErrUnsupportedFormat, format)
	}

	processed := imaging.Fill(img, opts.Width, opts.Height, anchorFor(opts.Gravity), imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("%w: failed to encode JPEG: %v", ErrProcessingFailed, err)
	}

	return buf.Bytes(), nil
}

func anchorFor(g blobs.Gravity) imaging.Anchor {
	switch g {
	case blobs.GravityTop:
		return imaging.Top
	case blobs.GravityBottom:
		return imaging.Bottom
	case blobs.GravityLeft:
		return imaging.Left
	case blobs.GravityRight:
		return imaging.Right
	case blobs.GravityTopLeft:
		return imaging.TopLeft
	case blobs.GravityTopRight:
		return imaging.TopRight
	case blobs.GravityBottomLeft:
		return imaging.BottomLeft
	case blobs.GravityBottomRight:
		return imaging.BottomRight
	default:
		return imaging.Center
	}
}
