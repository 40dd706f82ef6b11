package instagram

// CommentsResponse is the comment-listing query response envelope
type CommentsResponse struct {
	Data struct {
		ShortcodeMedia *ShortcodeMedia `json:"shortcode_media"`
	} `json:"data"`
	Status string `json:"status"`
}

// ShortcodeMedia holds the per-post comment listing
type ShortcodeMedia struct {
	EdgeMediaToParentComment EdgeMediaToParentComment `json:"edge_media_to_parent_comment"`
}

// EdgeMediaToParentComment is the paginated comment connection
type EdgeMediaToParentComment struct {
	Count    int           `json:"count"`
	PageInfo PageInfo      `json:"page_info"`
	Edges    []CommentEdge `json:"edges"`
}

// PageInfo carries the pagination cursor. EndCursor is empty when the
// endpoint returns a null cursor on the final page.
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// CommentEdge wraps one comment node
type CommentEdge struct {
	Node CommentNode `json:"node"`
}

// CommentNode is the raw comment as the endpoint returns it
type CommentNode struct {
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
	Owner     struct {
		Username string `json:"username"`
	} `json:"owner"`
}

// Comment is one extracted comment record. CreatedAt is a unix timestamp and
// may be zero when the endpoint omits it.
type Comment struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Comments flattens the edge list into comment records, preserving endpoint
// order.
func (e *EdgeMediaToParentComment) Comments() []Comment {
	comments := make([]Comment, 0, len(e.Edges))
	for _, edge := range e.Edges {
		comments = append(comments, Comment{
			Username:  edge.Node.Owner.Username,
			Text:      edge.Node.Text,
			CreatedAt: edge.Node.CreatedAt,
		})
	}
	return comments
}

// LoginResponse is the JSON body of the login POST. Session data arrives via
// response cookies; the body only signals success or the failure mode.
type LoginResponse struct {
	Status            string `json:"status"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	ChallengeRequired bool   `json:"challenge_required"`
	Message           string `json:"message"`
	LoggedInUser      struct {
		PK int64 `json:"pk"`
	} `json:"logged_in_user"`
}
