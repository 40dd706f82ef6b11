package instagram

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

// Cookie is a semantic (name, value, domain, expiry) tuple, decoupled from
// whatever HTTP client produced it. A zero Expires means a session cookie
// with no stated lifetime.
type Cookie struct {
	Name    string
	Value   string
	Domain  string
	Expires time.Time
}

// CollectCookies converts a response's Set-Cookie headers into semantic
// tuples. Max-Age takes effect when the header carries no absolute expiry.
func CollectCookies(resp *http.Response) []Cookie {
	raw := resp.Cookies()
	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		expires := c.Expires
		if expires.IsZero() && c.MaxAge > 0 {
			expires = time.Now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		cookies = append(cookies, Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Domain:  c.Domain,
			Expires: expires,
		})
	}
	return cookies
}

// LookupCookie finds the cookie for a name within a domain. The name match is
// case-insensitive, the domain match is by suffix (a leading dot on the
// cookie domain is ignored), and when several cookies share a name the one
// expiring last wins. Expired cookies are skipped.
func LookupCookie(cookies []Cookie, name, domain string) (Cookie, bool) {
	now := time.Now()

	sorted := make([]Cookie, len(cookies))
	copy(sorted, cookies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return effectiveExpiry(sorted[i]).After(effectiveExpiry(sorted[j]))
	})

	for _, c := range sorted {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		cookieDomain := strings.TrimPrefix(c.Domain, ".")
		if cookieDomain != "" && !strings.HasSuffix(domain, cookieDomain) {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Cookie{}, false
}

// CookieValue is LookupCookie reduced to the value string
func CookieValue(cookies []Cookie, name, domain string) string {
	c, ok := LookupCookie(cookies, name, domain)
	if !ok {
		return ""
	}
	return c.Value
}

// effectiveExpiry orders session cookies as if they never expire
func effectiveExpiry(c Cookie) time.Time {
	if c.Expires.IsZero() {
		return time.Now().Add(100 * 365 * 24 * time.Hour)
	}
	return c.Expires
}
