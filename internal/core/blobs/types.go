package blobs

import (
	"net/url"
	"strconv"
	"strings"
)

// Gravity selects which part of the source image survives a crop-fill
type Gravity string

const (
	GravityCenter      Gravity = "center"
	GravityTop         Gravity = "top"
	GravityBottom      Gravity = "bottom"
	GravityLeft        Gravity = "left"
	GravityRight       Gravity = "right"
	GravityTopLeft     Gravity = "top-left"
	GravityTopRight    Gravity = "top-right"
	GravityBottomLeft  Gravity = "bottom-left"
	GravityBottomRight Gravity = "bottom-right"
)

// Valid reports whether g is a known gravity
func (g Gravity) Valid() bool {
	switch g {
	case GravityCenter, GravityTop, GravityBottom, GravityLeft, GravityRight,
		GravityTopLeft, GravityTopRight, GravityBottomLeft, GravityBottomRight:
		return true
	default:
		return false
	}
}

// PreviewOptions are the derivation parameters of a preview URL
type PreviewOptions struct {
	Gravity Gravity
	Width   int
	Height  int
	Quality int
}

// PostPreview is used for every post image
var PostPreview = PreviewOptions{Width: 2000, Height: 2000, Gravity: GravityTop, Quality: 100}

// AvatarPreview is used for profile pictures
var AvatarPreview = PreviewOptions{Width: 400, Height: 400, Gravity: GravityCenter, Quality: 90}

// Asset is a stored binary object
type Asset struct {
	ID       string `json:"id"`
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// File is an upload candidate as received from a client.
// A nil or zero-length File means "no file supplied".
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Empty reports whether f carries no bytes
func (f *File) Empty() bool {
	return f == nil || len(f.Data) == 0
}

// PreviewURL derives the preview URL of an asset.
// Format: {baseURL}/img/preview/{assetID}?w={w}&h={h}&gravity={g}&q={q}
// If baseURL is empty a relative URL is produced. Returns empty string for an empty assetID.
// The URL is never stored as the source of truth; callers regenerate it when options change.
func PreviewURL(baseURL, assetID string, opts PreviewOptions) string {
	if assetID == "" {
		return ""
	}
	q := url.Values{}
	q.Set("w", strconv.Itoa(opts.Width))
	q.Set("h", strconv.Itoa(opts.Height))
	if opts.Gravity != "" {
		q.Set("gravity", string(opts.Gravity))
	}
	q.Set("q", strconv.Itoa(opts.Quality))
	return strings.TrimSuffix(baseURL, "/") + "/img/preview/" + url.PathEscape(assetID) + "?" + q.Encode()
}
