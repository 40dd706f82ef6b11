package comments

import (
	"context"
	"fmt"

	"igcomments/pkg/auth"
	"igcomments/pkg/checkpoint"
	"igcomments/pkg/config"
	errs "igcomments/pkg/errors"
	"igcomments/pkg/instagram"
	"igcomments/pkg/logger"
	"igcomments/pkg/ratelimit"
)

// BundleStore is the slice of the session store the fetcher needs: the
// freshest persisted bundle, re-read before every page so a bundle refreshed
// by a concurrent login is picked up mid-run.
type BundleStore interface {
	Load() (*auth.Bundle, error)
}

// Progress receives page-level updates during a fetch. Implementations must
// tolerate EstimateChanged raising the total between PageFetched calls; the
// total never decreases.
type Progress interface {
	Start(totalPages int)
	PageFetched(page, totalPages, comments int)
	Finish(totalComments int)
}

// noopProgress is used when no display is attached
type noopProgress struct{}

func (noopProgress) Start(int)                 {}
func (noopProgress) PageFetched(int, int, int) {}
func (noopProgress) Finish(int)                {}

// Fetcher walks the comment listing of one post to exhaustion, pacing
// requests through the limiter and recovering from mid-run auth loss.
type Fetcher struct {
	client   *instagram.Client
	store    BundleStore
	reauth   Reauthenticator
	limiter  ratelimit.Limiter
	cfg      *config.Config
	logger   logger.Logger
	progress Progress

	checkpoints *checkpoint.Manager
	resume      bool

	bundle *auth.Bundle
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithProgress attaches a progress display
func WithProgress(p Progress) Option {
	return func(f *Fetcher) {
		if p != nil {
			f.progress = p
		}
	}
}

// WithCheckpoints enables per-page checkpointing through the given manager.
// When resume is set, an existing checkpoint for the shortcode is restored
// before fetching; otherwise it is discarded.
func WithCheckpoints(m *checkpoint.Manager, resume bool) Option {
	return func(f *Fetcher) {
		f.checkpoints = m
		f.resume = resume
	}
}

// NewFetcher creates a fetcher. The store provides the persisted session
// bundle and the reauthenticator replaces it when the endpoint rejects it.
func NewFetcher(client *instagram.Client, store BundleStore, reauth Reauthenticator,
	limiter ratelimit.Limiter, cfg *config.Config, log logger.Logger, opts ...Option) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	f := &Fetcher{
		client:   client,
		store:    store,
		reauth:   reauth,
		limiter:  limiter,
		cfg:      cfg,
		logger:   log,
		progress: noopProgress{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll retrieves every comment page for the post, in order, and returns
// the accumulated records. On any surfaced error the partial state has
// already been checkpointed (when checkpointing is enabled), so the
// accumulation is never returned partially.
func (f *Fetcher) FetchAll(ctx context.Context, shortcode string) ([]instagram.Comment, error) {
	sess := newSession(shortcode, f.cfg.Instagram.CommentsPerPage)

	if err := f.maybeRestore(sess); err != nil {
		return nil, err
	}

	f.logger.InfoWithFields("starting comment fetch", map[string]interface{}{
		"shortcode": shortcode,
		"page_size": f.cfg.Instagram.CommentsPerPage,
		"resumed":   sess.pages > 0,
		"from_page": sess.pages + 1,
	})

	f.progress.Start(sess.estimate.Pages())

	for sess.hasNext {
		page, err := f.fetchPage(ctx, shortcode, sess.cursor)
		if err != nil {
			f.persistCheckpoint(sess)
			return nil, err
		}

		sess.appendPage(&page.Data.ShortcodeMedia.EdgeMediaToParentComment)
		f.persistCheckpoint(sess)

		f.progress.PageFetched(sess.pages, sess.estimate.Pages(), len(sess.comments))

		f.logger.DebugWithFields("page appended", map[string]interface{}{
			"page":        sess.pages,
			"accumulated": len(sess.comments),
			"has_next":    sess.hasNext,
		})
	}

	f.progress.Finish(len(sess.comments))

	f.logger.InfoWithFields("comment fetch complete", map[string]interface{}{
		"shortcode": shortcode,
		"pages":     sess.pages,
		"comments":  len(sess.comments),
	})

	if f.checkpoints != nil {
		if err := f.checkpoints.Delete(); err != nil {
			f.logger.WarnWithFields("failed to remove checkpoint", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return sess.comments, nil
}

// maybeRestore loads checkpoint state into the session, or clears a stale
// checkpoint when resume was not requested.
func (f *Fetcher) maybeRestore(sess *session) error {
	if f.checkpoints == nil {
		return nil
	}

	if !f.resume {
		if err := f.checkpoints.Delete(); err != nil {
			return err
		}
		return nil
	}

	cp, err := f.checkpoints.Load()
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if cp == nil {
		return nil
	}
	if cp.Shortcode != sess.shortcode {
		return fmt.Errorf("checkpoint is for a different post (%s)", cp.Shortcode)
	}
	if cp.EndCursor == "" {
		// The previous run finished paging; nothing to resume
		return nil
	}

	sess.restore(cp.Comments, cp.EndCursor, cp.PagesFetched, cp.TotalEstimate)
	return nil
}

func (f *Fetcher) persistCheckpoint(sess *session) {
	if f.checkpoints == nil || sess.pages == 0 {
		return
	}

	cp := f.checkpoints.New(sess.shortcode)
	cp.EndCursor = sess.cursor
	cp.PagesFetched = sess.pages
	cp.TotalEstimate = sess.estimate.Items()
	cp.Comments = sess.comments

	if err := f.checkpoints.Save(cp); err != nil {
		f.logger.WarnWithFields("failed to save checkpoint", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// refreshHeaders rebuilds the request header set from the freshest persisted
// bundle. A load failure keeps the current headers; the request either works
// with them or classification drives recovery.
func (f *Fetcher) refreshHeaders(shortcode string) {
	bundle, err := f.store.Load()
	if err != nil || bundle == nil {
		if f.bundle == nil {
			f.logger.Warn("no session bundle available for request headers")
		}
		return
	}
	f.installBundle(shortcode, bundle)
}

// installBundle swaps the client onto the given bundle's cookies
func (f *Fetcher) installBundle(shortcode string, bundle *auth.Bundle) {
	f.bundle = bundle
	f.client.InstallHeaders(f.requestHeaders(shortcode, bundle))
}

func (f *Fetcher) requestHeaders(shortcode string, bundle *auth.Bundle) map[string]string {
	return map[string]string{
		"User-Agent":       f.cfg.Instagram.WebUserAgent,
		"Accept":           "*/*",
		"Accept-Language":  "en-US,en;q=0.9",
		"X-Requested-With": "XMLHttpRequest",
		"X-IG-App-ID":      f.cfg.Instagram.WebAppID,
		"Referer":          instagram.PostReferer(shortcode),
		"Cookie":           bundle.CookieHeader(),
	}
}

// ValidateSession checks that a usable bundle exists before a run starts.
// It does not hit the network; mid-run rejection is handled by recovery.
func (f *Fetcher) ValidateSession() error {
	bundle, err := f.store.Load()
	if err != nil {
		return err
	}
	if bundle == nil || !bundle.IsValid() {
		return errs.New(errs.ErrorTypeAuthLoss, "no valid session; login required")
	}
	return nil
}
