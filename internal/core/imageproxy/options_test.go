package imageproxy

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Snapgram/internal/core/blobs"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    blobs.PreviewOptions
		wantErr bool
	}{
		{
			name:  "post preview",
			query: "w=2000&h=2000&gravity=top&q=100",
			want:  blobs.PostPreview,
		},
		{
			name:  "gravity defaults to center",
			query: "w=10&h=20&q=50",
			want:  blobs.PreviewOptions{Width: 10, Height: 20, Gravity: blobs.GravityCenter, Quality: 50},
		},
		{name: "missing width", query: "h=20&q=50", wantErr: true},
		{name: "non-numeric height", query: "w=10&h=abc&q=50", wantErr: true},
		{name: "quality out of range", query: "w=10&h=10&q=101", wantErr: true},
		{name: "width too large", query: "w=4001&h=10&q=50", wantErr: true},
		{name: "unknown gravity", query: "w=10&h=10&q=50&gravity=sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseOptions(q)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptions_RoundTripsPreviewURL(t *testing.T) {
	raw := blobs.PreviewURL("https://snapgram.app", "2b1f4c3e-8f0a-4c55-9a7e-1d2c3b4a5f60", blobs.PostPreview)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	opts, err := ParseOptions(u.Query())
	require.NoError(t, err)
	assert.Equal(t, blobs.PostPreview, opts)
}

func TestValidateAssetID(t *testing.T) {
	assert.NoError(t, ValidateAssetID("2b1f4c3e-8f0a-4c55-9a7e-1d2c3b4a5f60"))
	assert.ErrorIs(t, ValidateAssetID(""), ErrInvalidAssetID)
	assert.ErrorIs(t, ValidateAssetID("../etc/passwd"), ErrInvalidAssetID)
	assert.ErrorIs(t, ValidateAssetID("not-a-uuid"), ErrInvalidAssetID)
}
