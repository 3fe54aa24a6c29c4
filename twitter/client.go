package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/gommon/log"

	"perch/metrics"
	"perch/models"
)

const DefaultAPIHost = "https://api.twitter.com/2"

// The provider caps timeline pages at 100 tweets.
const maxPageSize = 100

// Client is a thin X API v2 client scoped to a single user's access token.
// Clients carry no state beyond the token, so callers construct one per
// request.
type Client struct {
	host        string
	accessToken string
	httpClient  *http.Client
}

type Option func(*Client)

// WithHost overrides the API host, used by tests.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(accessToken string, opts ...Option) *Client {
	client := &Client{
		host:        DefaultAPIHost,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchOptions parameterizes a timeline walk. The two fetch profiles in the
// dashboard differ only in page cap and time window.
type FetchOptions struct {
	// Only posts created after this instant are requested
	StartTime time.Time

	// Only posts created before this instant are requested
	EndTime time.Time

	// Pagination stops after this many pages even if a continuation token
	// remains
	MaxPages int

	// Posts per page, capped at 100
	PageSize int

	// Pause honored before each subsequent page request. Defaults to a
	// constant 3 seconds to stay under the provider rate limit.
	Delay backoff.BackOff
}

// DefaultDelay returns the production inter-page pause.
func DefaultDelay() backoff.BackOff {
	return backoff.NewConstantBackOff(3 * time.Second)
}

// Me returns the authenticated user's profile with public metrics.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	query := url.Values{
		"user.fields": {"public_metrics,created_at,description,profile_image_url"},
	}

	var raw struct {
		Data models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "users_me", "/users/me", query, nil, &raw); err != nil {
		return models.User{}, err
	}
	return raw.Data, nil
}

// Timeline fetches a user's own posts page by page, excluding retweets and
// replies. Pagination stops at the page cap, an empty page, or a missing
// continuation token. A rate-limited page ends the walk and returns whatever
// was accumulated so far; any other error aborts the fetch.
func (c *Client) Timeline(ctx context.Context, userID string, opts FetchOptions) ([]models.Post, error) {
	if opts.PageSize <= 0 || opts.PageSize > maxPageSize {
		opts.PageSize = maxPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	delay := opts.Delay
	if delay == nil {
		delay = DefaultDelay()
	}

	var posts []models.Post
	var next string
	for page := 0; page < opts.MaxPages; page++ {
		if page > 0 {
			select {
			case <-time.After(delay.NextBackOff()):
			case <-ctx.Done():
				return posts, ctx.Err()
			}
		}

		query := url.Values{
			"max_results":  {strconv.Itoa(opts.PageSize)},
			"tweet.fields": {"created_at,public_metrics"},
			"exclude":      {"retweets,replies"},
		}
		if !opts.StartTime.IsZero() {
			query.Set("start_time", opts.StartTime.UTC().Format(time.RFC3339))
		}
		if !opts.EndTime.IsZero() {
			query.Set("end_time", opts.EndTime.UTC().Format(time.RFC3339))
		}
		if next != "" {
			query.Set("pagination_token", next)
		}

		var raw struct {
			Data []models.Post `json:"data"`
			Meta struct {
				NextToken string `json:"next_token"`
			} `json:"meta"`
		}
		err := c.do(ctx, http.MethodGet, "user_tweets", "/users/"+url.PathEscape(userID)+"/tweets", query, nil, &raw)
		if IsRateLimited(err) {
			// Partial results beat a failed dashboard
			log.Warnf("rate limited after %d pages, returning %d posts", page, len(posts))
			return posts, nil
		}
		if err != nil {
			return nil, err
		}

		if len(raw.Data) == 0 {
			break
		}
		posts = append(posts, raw.Data...)

		if raw.Meta.NextToken == "" {
			break
		}
		next = raw.Meta.NextToken
	}

	return posts, nil
}

// PostTweet publishes a tweet on behalf of the authenticated user.
func (c *Client) PostTweet(ctx context.Context, text string) (models.CreatedTweet, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return models.CreatedTweet{}, fmt.Errorf("failed to encode tweet: %w", err)
	}

	var raw struct {
		Data models.CreatedTweet `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "create_tweet", "/tweets", nil, bytes.NewReader(payload), &raw); err != nil {
		return models.CreatedTweet{}, err
	}
	return raw.Data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, query url.Values, body io.Reader, out interface{}) error {
	u := c.host + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusTooManyRequests {
			metrics.RateLimited.Inc()
		}
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var detail struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil {
			apiErr.Title = detail.Title
			apiErr.Detail = detail.Detail
		}
		log.Errorf("x api request failed: %s", apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
