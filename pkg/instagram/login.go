package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"igcomments/pkg/auth"
	"igcomments/pkg/config"
	errs "igcomments/pkg/errors"
	"igcomments/pkg/logger"
)

// cookieDomain is the domain the session cookies are scoped to
const cookieDomain = "instagram.com"

// Authenticator executes the login handshake: a preflight call that yields
// the CSRF cookie, then a signed login POST. It returns a complete credential
// bundle or a classified error, never a partially populated bundle.
type Authenticator struct {
	cfg     config.InstagramConfig
	timeout config.LoginConfig
	baseURL string
	logger  logger.Logger
}

// NewAuthenticator creates an authenticator against the production API
func NewAuthenticator(cfg *config.Config, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Authenticator{
		cfg:     cfg.Instagram,
		timeout: cfg.Login,
		baseURL: APIBaseURL,
		logger:  log,
	}
}

// SetBaseURL points the authenticator at a different API base. Tests use
// this to target an httptest server.
func (a *Authenticator) SetBaseURL(baseURL string) {
	a.baseURL = baseURL
}

// Login performs the full handshake for the given account. The returned
// bundle is valid; any failure mode maps to exactly one error class.
func (a *Authenticator) Login(username, password string) (*auth.Bundle, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, "failed to create cookie jar: "+err.Error())
	}
	client := &http.Client{Jar: jar}

	var collected []Cookie

	// Preflight: establish a session and pick up the CSRF cookie
	preloginCtx, cancelPrelogin := context.WithTimeout(context.Background(), a.timeout.PreloginTimeout)
	defer cancelPrelogin()

	resp, err := a.post(preloginCtx, client, PreloginURL(a.baseURL, GenerateUUID("", true)), "")
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, "network error during prelogin: "+err.Error())
	}
	collected = append(collected, CollectCookies(resp)...)
	drain(resp)

	csrfToken := CookieValue(collected, "csrftoken", cookieDomain)
	if csrfToken == "" {
		return nil, errs.New(errs.ErrorTypeNoCSRFToken, "unable to get CSRF token from prelogin")
	}

	// Signed login: the device identity is derived from a per-run seed, so
	// every parameter that depends on it is consistent within the attempt.
	deviceID := GenerateDeviceID(GenerateUUID("", true))
	params := Params{
		{Key: "device_id", Value: deviceID},
		{Key: "guid", Value: GenerateUUID("", false)},
		{Key: "adid", Value: GenerateADID(username)},
		{Key: "phone_id", Value: GenerateUUID(deviceID, false)},
		{Key: "csrftoken", Value: csrfToken},
		{Key: "username", Value: username},
		{Key: "password", Value: password},
		{Key: "login_attempt_count", Value: 0},
	}
	form := SignParams(a.cfg.SignatureKey, a.cfg.SignatureKeyVersion, params)

	loginCtx, cancelLogin := context.WithTimeout(context.Background(), a.timeout.LoginTimeout)
	defer cancelLogin()

	resp, err = a.post(loginCtx, client, LoginURL(a.baseURL), form.Encode())
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, "network error during login: "+err.Error())
	}
	collected = append(collected, CollectCookies(resp)...)
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	bundle, err := a.classify(resp.StatusCode, body, collected)
	if err != nil {
		a.logger.WarnWithFields("login failed", map[string]interface{}{
			"username": username,
			"status":   resp.StatusCode,
			"error":    err.Error(),
		})
		return nil, err
	}

	a.logger.InfoWithFields("login succeeded", map[string]interface{}{
		"username": username,
		"user_id":  bundle.Cookies.UserID,
	})
	return bundle, nil
}

// classify maps the login response to a bundle or a single error class, in
// priority order: HTTP status, two-factor, challenge, missing user id,
// missing cookies.
func (a *Authenticator) classify(statusCode int, body []byte, collected []Cookie) (*auth.Bundle, error) {
	if statusCode != http.StatusOK {
		return nil, errs.NewWithCode(errs.ErrorTypeHTTPStatus,
			fmt.Sprintf("HTTP %d during login: %s", statusCode, truncate(body, 200)), statusCode)
	}

	var login LoginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return nil, errs.New(errs.ErrorTypeInvalidCredentials,
			"unable to login: unexpected response: "+truncate(body, 200))
	}

	if login.TwoFactorRequired {
		return nil, errs.New(errs.ErrorTypeTwoFactor,
			"two-factor authentication required on this account")
	}
	if login.ChallengeRequired {
		return nil, errs.New(errs.ErrorTypeChallenge,
			"challenge required; solve it in the app and retry")
	}
	if login.LoggedInUser.PK == 0 {
		msg := "login rejected"
		if login.Message != "" {
			msg += ": " + login.Message
		}
		return nil, errs.New(errs.ErrorTypeInvalidCredentials, msg)
	}

	cookies := auth.Cookies{
		SessionID: CookieValue(collected, "sessionid", cookieDomain),
		CSRFToken: CookieValue(collected, "csrftoken", cookieDomain),
		MachineID: CookieValue(collected, "mid", cookieDomain),
		UserID:    CookieValue(collected, "ds_user_id", cookieDomain),
	}
	if cookies.SessionID == "" || cookies.CSRFToken == "" || cookies.MachineID == "" || cookies.UserID == "" {
		return nil, errs.New(errs.ErrorTypeIncompleteLogin,
			"login succeeded but required cookies are missing")
	}

	perCookieExpiry := make(map[string]int64)
	for _, name := range []string{"sessionid", "csrftoken", "mid", "ds_user_id"} {
		if c, ok := LookupCookie(collected, name, cookieDomain); ok && !c.Expires.IsZero() {
			perCookieExpiry[name] = c.Expires.Unix()
		}
	}

	return auth.NewBundle(cookies, perCookieExpiry), nil
}

// post sends a form-encoded POST with the app header set
func (a *Authenticator) post(ctx context.Context, client *http.Client, url, body string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", a.cfg.AppUserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("X-IG-Capabilities", a.cfg.Capabilities)
	req.Header.Set("X-IG-Connection-Type", "WIFI")
	req.Header.Set("X-IG-App-ID", a.cfg.AppID)
	req.Header.Set("X-FB-HTTP-Engine", "Liger")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	return client.Do(req)
}

// drain discards and closes a response body so the connection can be reused
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}

// truncate renders at most n bytes of a response body for error messages
func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
