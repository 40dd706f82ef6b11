package auth

import (
	"fmt"
	"time"
)

// FallbackExpiry bounds a bundle's lifetime when the login response carried
// no usable per-cookie expiry. 25 days sits under the shortest observed
// official cookie lifetime.
const FallbackExpiry = 25 * 24 * time.Hour

// cookieNames lists the four required session cookies
var cookieNames = [4]string{"sessionid", "csrftoken", "mid", "ds_user_id"}

// Cookies holds the four session-identifying cookie values
type Cookies struct {
	SessionID string `json:"sessionid"`
	CSRFToken string `json:"csrftoken"`
	MachineID string `json:"mid"`
	UserID    string `json:"ds_user_id"`
}

// complete reports whether all four values are present
func (c Cookies) complete() bool {
	return c.SessionID != "" && c.CSRFToken != "" && c.MachineID != "" && c.UserID != ""
}

// Bundle is one persisted credential set. Bundles are never mutated in
// place: a refresh builds a new bundle that replaces the stored one.
type Bundle struct {
	IssuedAt        int64             `json:"iat"`
	OverallExpiry   int64             `json:"overall_expiry"`
	Cookies         Cookies           `json:"cookies"`
	PerCookieExpiry map[string]*int64 `json:"per_cookie_expiry"`
}

// NewBundle builds a bundle from freshly extracted cookies. The overall
// expiry is the earliest future per-cookie expiry, or now+FallbackExpiry when
// none is known.
func NewBundle(cookies Cookies, perCookieExpiry map[string]int64) *Bundle {
	now := time.Now().Unix()

	var overall int64
	perCookie := make(map[string]*int64, len(cookieNames))
	for _, name := range cookieNames {
		if exp, ok := perCookieExpiry[name]; ok && exp > now {
			e := exp
			perCookie[name] = &e
			if overall == 0 || exp < overall {
				overall = exp
			}
		} else {
			perCookie[name] = nil
		}
	}
	if overall == 0 {
		overall = now + int64(FallbackExpiry/time.Second)
	}

	return &Bundle{
		IssuedAt:        now,
		OverallExpiry:   overall,
		Cookies:         cookies,
		PerCookieExpiry: perCookie,
	}
}

// IsValidAt reports whether the bundle is usable at the given instant: all
// four cookies present and the overall expiry strictly in the future.
func (b *Bundle) IsValidAt(now time.Time) bool {
	if b == nil {
		return false
	}
	return b.Cookies.complete() && b.OverallExpiry > now.Unix()
}

// IsValid is IsValidAt for the current time
func (b *Bundle) IsValid() bool {
	return b.IsValidAt(time.Now())
}

// CookieHeader renders the Cookie header value the query endpoint expects
func (b *Bundle) CookieHeader() string {
	c := b.Cookies
	return fmt.Sprintf("sessionid=%s; ds_user_id=%s; csrftoken=%s; mid=%s",
		c.SessionID, c.UserID, c.CSRFToken, c.MachineID)
}
