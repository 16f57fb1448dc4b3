package imageproxy

import (
	"fmt"
	"net/url"
	"strconv"

	"Snapgram/internal/core/blobs"
)

// Upper bound for either preview dimension
const MaxDimension = 4000

// ParseOptions reads w, h, gravity and q from a preview URL query.
// gravity defaults to center.
func ParseOptions(q url.Values) (blobs.PreviewOptions, error) {
	opts := blobs.PreviewOptions{Gravity: blobs.GravityCenter}

	var err error
	if opts.Width, err = intParam(q, "w"); err != nil {
		return opts, err
	}
	if opts.Height, err = intParam(q, "h"); err != nil {
		return opts, err
	}
	if opts.Quality, err = intParam(q, "q"); err != nil {
		return opts, err
	}
	if g := q.Get("gravity"); g != "" {
		opts.Gravity = blobs.Gravity(g)
	}

	return opts, ValidateOptions(opts)
}

// ValidateOptions checks dimensions, quality and gravity
func ValidateOptions(opts blobs.PreviewOptions) error {
	if opts.Width <= 0 || opts.Width > MaxDimension {
		return fmt.Errorf("%w: width must be 1-%d, got %d", ErrInvalidOptions, MaxDimension, opts.Width)
	}
	if opts.Height <= 0 || opts.Height > MaxDimension {
		return fmt.Errorf("%w: height must be 1-%d, got %d", ErrInvalidOptions, MaxDimension, opts.Height)
	}
	// Quality must be in JPEG range (1-100)
	if opts.Quality < 1 || opts.Quality > 100 {
		return fmt.Errorf("%w: quality must be 1-100, got %d", ErrInvalidOptions, opts.Quality)
	}
	if !opts.Gravity.Valid() {
		return fmt.Errorf("%w: unknown gravity %q", ErrInvalidOptions, opts.Gravity)
	}
	return nil
}

// cacheKey identifies one rendition of an asset
func cacheKey(assetID string, opts blobs.PreviewOptions) string {
	return fmt.Sprintf("%s:%dx%d:%s:q%d", assetID, opts.Width, opts.Height, opts.Gravity, opts.Quality)
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidOptions, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidOptions, name)
	}
	return n, nil
}
