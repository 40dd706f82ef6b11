package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"igcomments/pkg/auth"
	"igcomments/pkg/checkpoint"
	"igcomments/pkg/config"
	errs "igcomments/pkg/errors"
	"igcomments/pkg/instagram"
	"igcomments/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopLimiter removes pacing from tests
type nopLimiter struct{}

func (nopLimiter) Wait()  {}
func (nopLimiter) Reset() {}

// memStore is an in-memory bundle store shared with the fake reauthenticator
type memStore struct {
	mu     sync.Mutex
	bundle *auth.Bundle
	err    error
}

func (s *memStore) Load() (*auth.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle, s.err
}

func (s *memStore) put(b *auth.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = b
}

// fakeReauth hands out a fresh bundle and records how often it was asked
type fakeReauth struct {
	mu     sync.Mutex
	bundle *auth.Bundle
	store  *memStore
	err    error
	calls  int
}

func (r *fakeReauth) Reauthenticate() (*auth.Bundle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.store != nil {
		r.store.put(r.bundle)
	}
	return r.bundle, nil
}

func (r *fakeReauth) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testBundle(sessionID string) *auth.Bundle {
	return auth.NewBundle(auth.Cookies{
		SessionID: sessionID,
		CSRFToken: "csrf-" + sessionID,
		MachineID: "mid-" + sessionID,
		UserID:    "42",
	}, nil)
}

// commentServer serves a fixed comment list in pages, rejecting requests
// whose session cookie does not match the currently valid session.
type commentServer struct {
	mu       sync.Mutex
	comments []instagram.Comment
	pageSize int
	valid    string
	cursors  []string
	failures map[string]int // cursor -> remaining 500s before success
}

func newCommentServer(total, pageSize int, validSession string) *commentServer {
	comments := make([]instagram.Comment, 0, total)
	for i := 0; i < total; i++ {
		comments = append(comments, instagram.Comment{
			Username:  fmt.Sprintf("user%d", i),
			Text:      fmt.Sprintf("comment %d", i),
			CreatedAt: int64(1700000000 + i),
		})
	}
	return &commentServer{
		comments: comments,
		pageSize: pageSize,
		valid:    validSession,
		failures: make(map[string]int),
	}
}

func (s *commentServer) setValidSession(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = session
}

func (s *commentServer) failOnce(cursor string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cursor] = times
}

func (s *commentServer) requestedCursors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cursors))
	copy(out, s.cursors)
	return out
}

func (s *commentServer) handler(w http.ResponseWriter, r *http.Request) {
	var vars struct {
		Shortcode string `json:"shortcode"`
		First     int    `json:"first"`
		After     string `json:"after"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars); err != nil {
		http.Error(w, "bad variables", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.cursors = append(s.cursors, vars.After)

	if !strings.Contains(r.Header.Get("Cookie"), "sessionid="+s.valid) {
		s.mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if remaining := s.failures[vars.After]; remaining > 0 {
		s.failures[vars.After] = remaining - 1
		s.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	offset := 0
	if vars.After != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(vars.After, "cursor-"))
		if err != nil {
			s.mu.Unlock()
			http.Error(w, "bad cursor", http.StatusBadRequest)
			return
		}
		offset = n * s.pageSize
	}

	end := offset + s.pageSize
	if end > len(s.comments) {
		end = len(s.comments)
	}
	page := s.comments[offset:end]
	hasNext := end < len(s.comments)
	total := len(s.comments)
	s.mu.Unlock()

	var resp instagram.CommentsResponse
	resp.Status = "ok"
	resp.Data.ShortcodeMedia = &instagram.ShortcodeMedia{}
	conn := &resp.Data.ShortcodeMedia.EdgeMediaToParentComment
	conn.Count = total
	conn.PageInfo.HasNextPage = hasNext
	if hasNext {
		conn.PageInfo.EndCursor = fmt.Sprintf("cursor-%d", end/s.pageSize)
	}
	for _, c := range page {
		var edge instagram.CommentEdge
		edge.Node.Text = c.Text
		edge.Node.CreatedAt = c.CreatedAt
		edge.Node.Owner.Username = c.Username
		conn.Edges = append(conn.Edges, edge)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func testConfig(pageSize int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Instagram.CommentsPerPage = pageSize
	cfg.RateLimit.RetryDelay = time.Millisecond
	return cfg
}

func newTestFetcher(t *testing.T, serverURL string, cfg *config.Config,
	store *memStore, reauth *fakeReauth, opts ...Option) *Fetcher {
	t.Helper()
	log := logger.NewTestLogger()
	client := instagram.NewClient(serverURL, 5*time.Second, log)
	return NewFetcher(client, store, reauth, nopLimiter{}, cfg, log, opts...)
}

func TestFetchAllSinglePage(t *testing.T) {
	srv := newCommentServer(50, 50, "alpha")
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	store := &memStore{bundle: testBundle("alpha")}
	f := newTestFetcher(t, ts.URL, testConfig(50), store, &fakeReauth{})

	comments, err := f.FetchAll(context.Background(), "ABC123")
	require.NoError(t, err)

	require.Len(t, comments, 50)
	for i, c := range comments {
		assert.Equal(t, fmt.Sprintf("user%d", i), c.Username)
		assert.Equal(t, fmt.Sprintf("comment %d", i), c.Text)
	}
	assert.Equal(t, []string{""}, srv.requestedCursors())
}

func TestFetchAllMultiplePages(t *testing.T) {
	srv := newCommentServer(120, 50, "alpha")
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	store := &memStore{bundle: testBundle("alpha")}
	f := newTestFetcher(t, ts.URL, testConfig(50), store, &fakeReauth{})

	comments, err := f.FetchAll(context.Background(), "ABC123")
	require.NoError(t, err)

	require.Len(t, comments, 120)
	for i, c := range comments {
		assert.Equal(t, fmt.Sprintf("user%d", i), c.Username)
	}
	assert.Equal(t, []string{"", "cursor-1", "cursor-2"}, srv.requestedCursors())
}

func TestFetchAllRecoversFromAuthLoss(t *testing.T) {
	srv := newCommentServer(120, 50, "alpha")
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	// The session dies between page one and page two
	progress := &recordingProgress{onPage: func(page int) {
		if page == 1 {
			srv.setValidSession("beta")
		}
	}}

	store := &memStore{bundle: testBundle("alpha")}
	reauth := &fakeReauth{bundle: testBundle("beta"), store: store}
	f := newTestFetcher(t, ts.URL, testConfig(50), store, reauth,
		WithProgress(progress))

	comments, err := f.FetchAll(context.Background(), "ABC123")
	require.NoError(t, err)

	// One recovery, the rejected cursor re-fetched, nothing duplicated
	assert.Equal(t, 1, reauth.callCount())
	assert.Equal(t, []string{"", "cursor-1", "cursor-1", "cursor-2"}, srv.requestedCursors())

	require.Len(t, comments, 120)
	seen := make(map[string]bool, len(comments))
	for i, c := range comments {
		assert.Equal(t, fmt.Sprintf("user%d", i), c.Username)
		assert.False(t, seen[c.Username], "duplicate comment from %s", c.Username)
		seen[c.Username] = true
	}
}

func TestFetchAllReauthenticationExhausted(t *testing.T) {
	srv := newCommentServer(50, 50, "alpha")
	srv.setValidSession("nobody") // every request is rejected
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	cfg := testConfig(50)
	store := &memStore{bundle: testBundle("alpha")}
	reauth := &fakeReauth{bundle: testBundle("alpha"), store: store}
	f := newTestFetcher(t, ts.URL, cfg, store, reauth)

	_, err := f.FetchAll(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeAuthLoss, errs.TypeOf(err))
	assert.Equal(t, cfg.RateLimit.MaxAuthRecoveries, reauth.callCount())
}

func TestFetchAllRetriesTransientFailures(t *testing.T) {
	srv := newCommentServer(120, 50, "alpha")
	srv.failOnce("cursor-1", 1)
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	store := &memStore{bundle: testBundle("alpha")}
	f := newTestFetcher(t, ts.URL, testConfig(50), store, &fakeReauth{})

	comments, err := f.FetchAll(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, comments, 120)

	// The failed cursor was re-requested, and only that one
	assert.Equal(t, []string{"", "cursor-1", "cursor-1", "cursor-2"}, srv.requestedCursors())
}

func TestFetchAllTransientBudgetExhausted(t *testing.T) {
	srv := newCommentServer(50, 50, "alpha")
	srv.failOnce("", 10)
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	cfg := testConfig(50)
	store := &memStore{bundle: testBundle("alpha")}
	f := newTestFetcher(t, ts.URL, cfg, store, &fakeReauth{})

	_, err := f.FetchAll(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeHTTPStatus, errs.TypeOf(err))
	assert.Len(t, srv.requestedCursors(), cfg.RateLimit.MaxRetries)
}

func TestFetchAllContextCancellation(t *testing.T) {
	srv := newCommentServer(120, 50, "alpha")
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &memStore{bundle: testBundle("alpha")}
	f := newTestFetcher(t, ts.URL, testConfig(50), store, &fakeReauth{})

	_, err := f.FetchAll(ctx, "ABC123")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, srv.requestedCursors())
}

func TestFetchAllCheckpointResume(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	srv := newCommentServer(120, 50, "alpha")
	srv.failOnce("cursor-1", 10) // first run dies on page two
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	defer ts.Close()

	cfg := testConfig(50)
	store := &memStore{bundle: testBundle("alpha")}

	mgr, err := checkpoint.NewManager("ABC123")
	require.NoError(t, err)

	f := newTestFetcher(t, ts.URL, cfg, store, &fakeReauth{},
		WithCheckpoints(mgr, false))

	_, err = f.FetchAll(context.Background(), "ABC123")
	require.Error(t, err)
	require.True(t, mgr.Exists(), "failed run should leave a checkpoint")

	// Second run picks up after page one without refetching it
	srv.failOnce("cursor-1", 0)
	srv.mu.Lock()
	srv.cursors = nil
	srv.mu.Unlock()

	f2 := newTestFetcher(t, ts.URL, cfg, store, &fakeReauth{},
		WithCheckpoints(mgr, true))

	comments, err := f2.FetchAll(context.Background(), "ABC123")
	require.NoError(t, err)
	require.Len(t, comments, 120)
	for i, c := range comments {
		assert.Equal(t, fmt.Sprintf("user%d", i), c.Username)
	}

	assert.Equal(t, []string{"cursor-1", "cursor-2"}, srv.requestedCursors())
	assert.False(t, mgr.Exists(), "completed run should remove the checkpoint")
}

func TestValidateSession(t *testing.T) {
	store := &memStore{}
	f := NewFetcher(nil, store, nil, nopLimiter{}, testConfig(50), logger.NewTestLogger())

	err := f.ValidateSession()
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeAuthLoss, errs.TypeOf(err))

	store.put(testBundle("alpha"))
	require.NoError(t, f.ValidateSession())
}

// recordingProgress captures progress callbacks for assertions
type recordingProgress struct {
	mu      sync.Mutex
	started int
	pages   []int
	totals  []int
	done    int
	onPage  func(page int)
}

func (p *recordingProgress) Start(totalPages int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = totalPages
}

func (p *recordingProgress) PageFetched(page, totalPages, comments int) {
	p.mu.Lock()
	p.pages = append(p.pages, page)
	p.totals = append(p.totals, totalPages)
	cb := p.onPage
	p.mu.Unlock()
	if cb != nil {
		cb(page)
	}
}

func (p *recordingProgress) Finish(totalComments int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = totalComments
}
