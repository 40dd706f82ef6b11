package comments

import (
	"context"

	"igcomments/pkg/auth"
	errs "igcomments/pkg/errors"
	"igcomments/pkg/instagram"
	"igcomments/pkg/retry"
)

// attemptState names the per-page-fetch states of the recovery controller
type attemptState int

const (
	stateRequesting attemptState = iota
	stateSuccess
	stateAuthFailure
	stateTransientFailure
	stateDone
	stateFailed
)

func (s attemptState) String() string {
	switch s {
	case stateRequesting:
		return "requesting"
	case stateSuccess:
		return "success"
	case stateAuthFailure:
		return "auth_failure"
	case stateTransientFailure:
		return "transient_failure"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reauthenticator restores a usable credential bundle after auth loss. The
// CLI implementation re-runs the login handshake (with stored or prompted
// account credentials) and persists the new bundle before returning it.
type Reauthenticator interface {
	Reauthenticate() (*auth.Bundle, error)
}

// fetchPage drives the recovery state machine for a single cursor. It
// returns only a successfully classified page or the surfacing error.
//
// The cursor never changes inside this function: auth loss re-issues the
// identical request after re-authentication, and transient failures retry it
// up to the configured bound with a fixed delay. Terminal errors and
// re-authentication failures surface immediately.
func (f *Fetcher) fetchPage(ctx context.Context, shortcode, cursor string) (*instagram.CommentsResponse, error) {
	var (
		page              *instagram.CommentsResponse
		lastErr           error
		transientFailures int
		authRecoveries    int
	)

	state := stateRequesting
	for {
		switch state {
		case stateRequesting:
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			f.limiter.Wait()
			f.refreshHeaders(shortcode)

			page, lastErr = f.client.CommentsPage(
				f.cfg.Instagram.QueryHash, shortcode, cursor, f.cfg.Instagram.CommentsPerPage)

			switch {
			case lastErr == nil:
				state = stateSuccess
			case errs.IsAuthLoss(lastErr):
				state = stateAuthFailure
			case errs.IsTerminal(lastErr):
				state = stateFailed
			default:
				state = stateTransientFailure
			}

		case stateSuccess:
			return page, nil

		case stateAuthFailure:
			authRecoveries++
			if f.cfg.RateLimit.MaxAuthRecoveries > 0 && authRecoveries > f.cfg.RateLimit.MaxAuthRecoveries {
				f.logger.ErrorWithFields("giving up after repeated auth recoveries", map[string]interface{}{
					"cursor":     cursor,
					"recoveries": authRecoveries - 1,
				})
				state = stateFailed
				continue
			}

			f.logger.WarnWithFields("session rejected, re-authenticating", map[string]interface{}{
				"cursor":   cursor,
				"recovery": authRecoveries,
			})

			bundle, err := f.reauthenticate(ctx)
			if err != nil {
				lastErr = err
				state = stateFailed
				continue
			}

			f.installBundle(shortcode, bundle)
			// Same cursor, fresh headers; the transient budget is untouched
			state = stateRequesting

		case stateTransientFailure:
			transientFailures++
			if transientFailures >= f.cfg.RateLimit.MaxRetries {
				state = stateFailed
				continue
			}

			f.logger.WarnWithFields("page fetch failed, retrying", map[string]interface{}{
				"cursor":  cursor,
				"attempt": transientFailures,
				"error":   lastErr.Error(),
			})

			if err := retry.Wait(ctx, f.cfg.RateLimit.RetryDelay); err != nil {
				return nil, err
			}
			state = stateRequesting

		case stateFailed:
			return nil, lastErr
		}
	}
}

// reauthenticate runs the recovery login, retrying transport blips but
// surfacing classified login failures immediately.
func (f *Fetcher) reauthenticate(ctx context.Context) (*auth.Bundle, error) {
	return retry.DoWithResult(func() (*auth.Bundle, error) {
		return f.reauth.Reauthenticate()
	}, &retry.Config{
		MaxAttempts: f.cfg.RateLimit.MaxRetries,
		Backoff:     &retry.ConstantBackoff{Delay: f.cfg.RateLimit.RetryDelay},
		RetryIf: func(err error) bool {
			return errs.TypeOf(err) == errs.ErrorTypeNetwork
		},
		Context: ctx,
		Logger:  f.logger,
	})
}
