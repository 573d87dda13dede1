package ebay

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrMissingCredentials means no application credentials were configured, so
// no search can proceed at all.
var ErrMissingCredentials = errors.New("ebay: EBAY_APP_ID / EBAY_CERT_ID not configured")

// AuthError is a rejected credential exchange. Fatal to a batch run.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ebay: token exchange rejected with status %d: %s", e.StatusCode, e.Body)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// refreshMargin is how long before real expiry a cached token is considered
// stale. A token that would expire mid-batch is refreshed up front.
const refreshMargin = 5 * time.Minute

// TokenSource obtains and caches the OAuth bearer token for the eBay APIs
// via the client-credentials grant. Concurrent callers share one exchange.
type TokenSource struct {
	appID    string
	certID   string
	tokenURL string
	client   *resty.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	now       func() time.Time
}

func NewTokenSource(appID, certID, tokenURL string) *TokenSource {
	client := resty.New()
	client.SetTimeout(15 * time.Second)

	return &TokenSource{
		appID:    appID,
		certID:   certID,
		tokenURL: tokenURL,
		client:   client,
		now:      time.Now,
	}
}

// Token returns a bearer token valid for at least the refresh margin,
// exchanging application credentials for a fresh one when needed.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiresAt) {
		return t.token, nil
	}

	if t.appID == "" || t.certID == "" {
		return "", ErrMissingCredentials
	}

	basic := base64.StdEncoding.EncodeToString([]byte(t.appID + ":" + t.certID))

	var parsed tokenResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+basic).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      "https://api.ebay.com/oauth/api_scope",
		}).
		SetResult(&parsed).
		Post(t.tokenURL)
	if err != nil {
		return "", fmt.Errorf("ebay: token exchange failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", &AuthError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	if parsed.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode(), Body: "empty access_token in response"}
	}

	t.token = parsed.AccessToken
	t.expiresAt = t.now().Add(time.Duration(parsed.ExpiresIn)*time.Second - refreshMargin)
	return t.token, nil
}

// SetNowFunc overrides the clock. Used in tests.
func (t *TokenSource) SetNowFunc(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}
