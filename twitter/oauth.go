package twitter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Endpoint is the X API v2 OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://twitter.com/i/oauth2/authorize",
	TokenURL:  "https://api.twitter.com/2/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Scopes requested for the dashboard: read posts and profile, publish posts,
// and keep the session alive with a refresh token.
var Scopes = []string{"tweet.read", "users.read", "tweet.write", "offline.access"}

// OAuthConfig runs the authorization-code-with-PKCE flow for the dashboard.
type OAuthConfig struct {
	config *oauth2.Config
}

type OAuthOption func(*oauth2.Config)

// WithEndpoint overrides the provider endpoints, used by tests.
func WithEndpoint(endpoint oauth2.Endpoint) OAuthOption {
	return func(c *oauth2.Config) {
		c.Endpoint = endpoint
	}
}

func NewOAuthConfig(clientID, clientSecret, callbackURL string, opts ...OAuthOption) *OAuthConfig {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     Endpoint,
		RedirectURL:  callbackURL,
		Scopes:       Scopes,
	}
	for _, opt := range opts {
		opt(config)
	}
	return &OAuthConfig{config: config}
}

// AuthLink returns the provider authorization URL together with the
// anti-forgery state and the PKCE verifier. Both must survive until the
// callback; the URL carries the derived S256 challenge, never the verifier.
func (o *OAuthConfig) AuthLink() (url string, state string, verifier string) {
	verifier = oauth2.GenerateVerifier()
	state = uuid.New().String()
	url = o.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	return url, state, verifier
}

// Exchange trades the authorization code and PKCE verifier for an access
// token. Exchange failure is terminal for the login attempt; the user has to
// restart the flow.
func (o *OAuthConfig) Exchange(ctx context.Context, code string, verifier string) (string, error) {
	token, err := o.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token.AccessToken, nil
}
