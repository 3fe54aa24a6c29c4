package twitter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"perch/twitter"
)

func TestAuthLink(t *testing.T) {
	oauth := twitter.NewOAuthConfig("client-id", "client-secret", "http://localhost:5001/auth/twitter/callback")

	link, state, verifier := oauth.AuthLink()

	require.NotEmpty(t, state)
	require.NotEmpty(t, verifier)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	query := parsed.Query()

	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "http://localhost:5001/auth/twitter/callback", query.Get("redirect_uri"))
	assert.Equal(t, state, query.Get("state"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.NotEmpty(t, query.Get("code_challenge"))
	// The verifier itself must never appear in the authorization URL
	assert.NotEqual(t, verifier, query.Get("code_challenge"))
	assert.NotContains(t, link, verifier)
	assert.Contains(t, query.Get("scope"), "tweet.read")
	assert.Contains(t, query.Get("scope"), "offline.access")
}

func TestAuthLinkStateIsUniquePerAttempt(t *testing.T) {
	oauth := twitter.NewOAuthConfig("client-id", "client-secret", "http://localhost/cb")

	_, state1, verifier1 := oauth.AuthLink()
	_, state2, verifier2 := oauth.AuthLink()

	assert.NotEqual(t, state1, state2)
	assert.NotEqual(t, verifier1, verifier2)
}

func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "the-code", r.FormValue("code"))
		assert.Equal(t, "the-verifier", r.FormValue("code_verifier"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"the-token","token_type":"bearer"}`))
	}))
	defer srv.Close()

	oauth := twitter.NewOAuthConfig("client-id", "client-secret", "http://localhost/cb",
		twitter.WithEndpoint(oauth2.Endpoint{
			TokenURL:  srv.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		}))

	token, err := oauth.Exchange(context.Background(), "the-code", "the-verifier")

	require.NoError(t, err)
	assert.Equal(t, "the-token", token)
}

func TestExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	oauth := twitter.NewOAuthConfig("client-id", "client-secret", "http://localhost/cb",
		twitter.WithEndpoint(oauth2.Endpoint{
			TokenURL:  srv.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		}))

	_, err := oauth.Exchange(context.Background(), "bad-code", "verifier")

	require.Error(t, err)
}
