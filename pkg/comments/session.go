package comments

import (
	"igcomments/pkg/instagram"
)

// session is the transient aggregate state for one run: accumulated records,
// pagination position, and the page estimate. It lives exactly as long as
// one FetchAll call and is never shared.
type session struct {
	shortcode string
	cursor    string
	hasNext   bool
	comments  []instagram.Comment
	pages     int
	estimate  *PageEstimate
}

func newSession(shortcode string, pageSize int) *session {
	return &session{
		shortcode: shortcode,
		hasNext:   true,
		estimate:  NewPageEstimate(pageSize),
	}
}

// appendPage appends one successfully classified page and advances the
// cursor. Called exactly once per page; retries happen before this point.
func (s *session) appendPage(conn *instagram.EdgeMediaToParentComment) {
	if s.pages == 0 {
		s.estimate.SetInitial(conn.Count, len(conn.Edges))
	}

	s.comments = append(s.comments, conn.Comments()...)
	s.pages++

	s.estimate.Observe(len(s.comments))

	s.hasNext = conn.PageInfo.HasNextPage && conn.PageInfo.EndCursor != ""
	s.cursor = conn.PageInfo.EndCursor
}

// restore rebuilds session state from a checkpoint taken after some page N;
// the next fetch continues with the stored cursor.
func (s *session) restore(comments []instagram.Comment, cursor string, pages, estimateItems int) {
	s.comments = comments
	s.cursor = cursor
	s.pages = pages
	s.hasNext = cursor != ""
	s.estimate.SetInitial(estimateItems, len(comments))
	s.estimate.Observe(len(comments))
}
