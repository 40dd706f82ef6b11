package instagram

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractShortcode(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.instagram.com/reel/ABC123xyz/", "ABC123xyz"},
		{"https://www.instagram.com/p/DEF-456_a/", "DEF-456_a"},
		{"https://instagram.com/reel/ABC123xyz", "ABC123xyz"},
		{"https://www.instagram.com/reel/ABC123xyz/?igsh=share", "ABC123xyz"},
		{"https://www.instagram.com/reel/ABC123xyz#comments", "ABC123xyz"},
		{"https://www.instagram.com/stories/someone/123/", ""},
		{"https://example.com/reel/ABC123xyz/", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractShortcode(tt.url), "url %q", tt.url)
	}
}

func TestCommentsURLFirstPage(t *testing.T) {
	raw := CommentsURL("https://www.instagram.com", "hash123", "ABC", "", 50)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/graphql/query/", u.Path)
	assert.Equal(t, "hash123", u.Query().Get("query_hash"))

	var vars struct {
		Shortcode string `json:"shortcode"`
		First     int    `json:"first"`
		After     string `json:"after"`
	}
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("variables")), &vars))
	assert.Equal(t, "ABC", vars.Shortcode)
	assert.Equal(t, 50, vars.First)
	assert.Equal(t, "", vars.After)

	// The first page omits the cursor entirely
	assert.NotContains(t, u.Query().Get("variables"), "after")
}

func TestCommentsURLWithCursor(t *testing.T) {
	raw := CommentsURL("https://www.instagram.com", "hash123", "ABC", "cursor==", 50)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	var vars struct {
		After string `json:"after"`
	}
	require.NoError(t, json.Unmarshal([]byte(u.Query().Get("variables")), &vars))
	assert.Equal(t, "cursor==", vars.After)
}

func TestPreloginURL(t *testing.T) {
	raw := PreloginURL(APIBaseURL, "guid-123")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/si/fetch_headers/", u.Path)
	assert.Equal(t, "signup", u.Query().Get("challenge_type"))
	assert.Equal(t, "guid-123", u.Query().Get("guid"))
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "https://i.instagram.com/api/v1/accounts/login/", LoginURL(APIBaseURL))
}

func TestPostReferer(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/reel/ABC/", PostReferer("ABC"))
}
