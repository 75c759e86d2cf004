package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the two-factor service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new two-factor service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// TokenSource supplies the bearer access token for each request.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// NewSession creates an authenticated session from an access token issued
// by the identity provider.
func (c *SDKClient) NewSession(accessToken string) *Session {
	return c.NewSessionWithSource(StaticToken(accessToken))
}

// NewSessionWithSource creates a session that asks src for a token before
// every request. Use it when tokens are refreshed elsewhere.
func (c *SDKClient) NewSessionWithSource(src TokenSource) *Session {
	return &Session{client: c, tokens: src}
}
