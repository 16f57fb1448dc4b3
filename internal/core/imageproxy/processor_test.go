package imageproxy

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/blobs"
)

// createTestJPEG creates a test JPEG image with the specified dimensions.
func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 128, B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	require.NoError(t, err)
	return buf.Bytes()
}

// createSplitPNG creates a PNG whose top half is red and bottom half is blue.
func createSplitPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := color.RGBA{R: 255, A: 255}
		if y >= height/2 {
			c = color.RGBA{B: 255, A: 255}
		}
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestProcessor_Process_FillsBox(t *testing.T) {
	proc := NewProcessor()

	tests := []struct {
		name       string
		srcWidth   int
		srcHeight  int
		opts       blobs.PreviewOptions
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "landscape to square",
			srcWidth:   800,
			srcHeight:  600,
			opts:       blobs.PreviewOptions{Width: 200, Height: 200, Gravity: blobs.GravityCenter, Quality: 80},
			wantWidth:  200,
			wantHeight: 200,
		},
		{
			name:       "portrait to square with top gravity",
			srcWidth:   300,
			srcHeight:  900,
			opts:       blobs.PreviewOptions{Width: 100, Height: 100, Gravity: blobs.GravityTop, Quality: 100},
			wantWidth:  100,
			wantHeight: 100,
		},
		{
			name:       "small source upscaled to box",
			srcWidth:   50,
			srcHeight:  50,
			opts:       blobs.PreviewOptions{Width: 120, Height: 60, Gravity: blobs.GravityCenter, Quality: 70},
			wantWidth:  120,
			wantHeight: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := proc.Process(createTestJPEG(t, tt.srcWidth, tt.srcHeight), tt.opts)
			require.NoError(t, err)
			bounds := decodeJPEG(t, out).Bounds()
			assert.Equal(t, tt.wantWidth, bounds.Dx())
			assert.Equal(t, tt.wantHeight, bounds.Dy())
		})
	}
}

func TestProcessor_Process_Gravity(t *testing.T) {
	proc := NewProcessor()
	src := createSplitPNG(t, 100, 400)

	top, err := proc.Process(src, blobs.PreviewOptions{Width: 100, Height: 100, Gravity: blobs.GravityTop, Quality: 100})
	require.NoError(t, err)
	r, _, b, _ := decodeJPEG(t, top).At(50, 50).RGBA()
	assert.Greater(t, r, b, "top gravity keeps the red half")

	bottom, err := proc.Process(src, blobs.PreviewOptions{Width: 100, Height: 100, Gravity: blobs.GravityBottom, Quality: 100})
	require.NoError(t, err)
	r, _, b, _ = decodeJPEG(t, bottom).At(50, 50).RGBA()
	assert.Greater(t, b, r, "bottom gravity keeps the blue half")
}

func TestProcessor_Process_Errors(t *testing.T) {
	proc := NewProcessor()
	opts := blobs.PreviewOptions{Width: 10, Height: 10, Gravity: blobs.GravityCenter, Quality: 80}

	_, err := proc.Process(nil, opts)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = proc.Process([]byte("definitely not an image"), opts)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
