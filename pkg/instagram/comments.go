package instagram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	errs "igcomments/pkg/errors"
)

// CommentsPage fetches one page of the comment listing. An empty after
// requests the first page. The response classification order is fixed:
// transport errors, then session-invalidating statuses (401 and redirects),
// then any other non-200, then body shape.
func (c *Client) CommentsPage(queryHash, shortcode, after string, first int) (*CommentsResponse, error) {
	url := CommentsURL(c.baseURL, queryHash, shortcode, after, first)

	resp, err := c.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if errs.IsAuthLossStatusCode(resp.StatusCode) {
		return nil, errs.NewWithCode(errs.ErrorTypeAuthLoss,
			fmt.Sprintf("session rejected with status %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewWithCode(errs.ErrorTypeHTTPStatus,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, snippet(resp.Body)), resp.StatusCode)
	}

	var page CommentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errs.New(errs.ErrorTypeParsing, "failed to parse query response: "+err.Error())
	}
	if page.Data.ShortcodeMedia == nil {
		return nil, errs.New(errs.ErrorTypeParsing, "unexpected response shape; missing comment edges")
	}

	return &page, nil
}

// snippet reads a short prefix of an error body for diagnostics
func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 200))
	return string(b)
}
