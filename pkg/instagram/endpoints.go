package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
)

const (
	// BaseURL is the base URL for the web GraphQL surface
	BaseURL = "https://www.instagram.com"

	// APIBaseURL is the base URL for the mobile login API
	APIBaseURL = "https://i.instagram.com/api/v1"

	// GraphQLEndpoint is the cursor-paginated query endpoint
	GraphQLEndpoint = "/graphql/query/"

	// PreloginEndpoint establishes a session and hands out the CSRF cookie
	PreloginEndpoint = "/si/fetch_headers/"

	// LoginEndpoint accepts the signed login body
	LoginEndpoint = "/accounts/login/"
)

// shortcodePattern matches post and reel URLs
var shortcodePattern = regexp.MustCompile(`instagram\.com/(?:reel|p)/([^/?#]+)/?`)

// ExtractShortcode pulls the post shortcode out of a post or reel URL.
// Returns an empty string when the URL has no recognizable shortcode.
func ExtractShortcode(postURL string) string {
	m := shortcodePattern.FindStringSubmatch(postURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// commentVariables is the query's variables object. Field order matters for
// nothing but byte-stable request URLs, which make request logs and tests
// easier to compare.
type commentVariables struct {
	Shortcode string `json:"shortcode"`
	First     int    `json:"first"`
	After     string `json:"after,omitempty"`
}

// CommentsURL constructs the comment-listing query URL for one page. An empty
// after requests the first page.
func CommentsURL(baseURL, queryHash, shortcode, after string, first int) string {
	variables, _ := json.Marshal(commentVariables{
		Shortcode: shortcode,
		First:     first,
		After:     after,
	})

	params := url.Values{}
	params.Set("query_hash", queryHash)
	params.Set("variables", string(variables))

	return fmt.Sprintf("%s%s?%s", baseURL, GraphQLEndpoint, params.Encode())
}

// PreloginURL constructs the session-establishing call that yields the CSRF
// cookie before login.
func PreloginURL(apiBaseURL, guid string) string {
	params := url.Values{}
	params.Set("challenge_type", "signup")
	params.Set("guid", guid)

	return fmt.Sprintf("%s%s?%s", apiBaseURL, PreloginEndpoint, params.Encode())
}

// LoginURL constructs the signed login POST target
func LoginURL(apiBaseURL string) string {
	return apiBaseURL + LoginEndpoint
}

// PostReferer constructs the referer header value for a post's comment pages
func PostReferer(shortcode string) string {
	return fmt.Sprintf("%s/reel/%s/", BaseURL, shortcode)
}
