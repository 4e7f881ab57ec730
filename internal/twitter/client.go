// Package twitter talks to the X API v2: it fetches the account's posts and
// likes and performs the delete/unlike mutations, translating HTTP results
// into scheduler outcomes.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"birdsweep/internal/sweep"
	logx "birdsweep/pkg/logx"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	// defaultRateLimitWait is used when a 429 carries no reset header.
	defaultRateLimitWait = 15 * time.Minute
	serverErrorWait      = 30 * time.Second
	pageSize             = 100
)

type Config struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string

	// BaseURL overrides the API host (tests).
	BaseURL string
	Timeout time.Duration
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Client struct {
	http   *http.Client
	base   string
	signer oauth1Signer
	log    logx.Logger

	// fetchLimiter paces pagination requests; mutations are paced by the
	// scheduler instead.
	fetchLimiter *rate.Limiter
}

func NewClient(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		base: base,
		signer: oauth1Signer{
			consumerKey:    cfg.APIKey,
			consumerSecret: cfg.APISecret,
			token:          cfg.AccessToken,
			tokenSecret:    cfg.AccessTokenSecret,
		},
		log:          log,
		fetchLimiter: rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Me returns the authenticated user; used as the startup auth check and to
// obtain the user id the likes endpoints need.
func (c *Client) Me(ctx context.Context) (User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/2/users/me", nil)
	if err != nil {
		return User{}, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return User{}, apiError(resp)
	}
	var body struct {
		Data User `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return User{}, fmt.Errorf("decode /users/me: %w", err)
	}
	if body.Data.ID == "" {
		return User{}, errors.New("authentication succeeded but no user returned")
	}
	return body.Data, nil
}

// UserTweets fetches all of the user's posts (retweets included; the API
// reports them with an "RT @" text prefix in this context).
func (c *Client) UserTweets(ctx context.Context, userID string) ([]sweep.Item, error) {
	path := "/2/users/" + url.PathEscape(userID) + "/tweets"
	q := url.Values{"tweet.fields": {"created_at"}}
	return c.fetchPaged(ctx, path, q, func(t pagedTweet) sweep.Item {
		kind := sweep.KindPost
		if strings.HasPrefix(t.Text, "RT @") {
			kind = sweep.KindRepost
		}
		return sweep.Item{ID: t.ID, Kind: kind, Text: t.Text, Timestamp: t.createdAt()}
	})
}

// LikedTweets fetches all posts the user has liked.
func (c *Client) LikedTweets(ctx context.Context, userID string) ([]sweep.Item, error) {
	path := "/2/users/" + url.PathEscape(userID) + "/liked_tweets"
	return c.fetchPaged(ctx, path, url.Values{}, func(t pagedTweet) sweep.Item {
		return sweep.Item{ID: t.ID, Kind: sweep.KindLike, Text: t.Text}
	})
}

type pagedTweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func (t pagedTweet) createdAt() time.Time {
	if t.CreatedAt == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}

type page struct {
	Data []pagedTweet `json:"data"`
	Meta struct {
		NextToken string `json:"next_token"`
	} `json:"meta"`
}

// fetchPaged walks a paginated listing endpoint. 429s wait for the reported
// reset and retry; 5xx retries after a short pause. Both honor ctx.
func (c *Client) fetchPaged(ctx context.Context, path string, q url.Values, conv func(pagedTweet) sweep.Item) ([]sweep.Item, error) {
	var items []sweep.Item
	token := ""
	for {
		if err := c.fetchLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		qp := url.Values{}
		for k, vs := range q {
			qp[k] = vs
		}
		qp.Set("max_results", strconv.Itoa(pageSize))
		if token != "" {
			qp.Set("pagination_token", token)
		}

		resp, err := c.do(ctx, http.MethodGet, path+"?"+qp.Encode(), nil)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var pg page
			err := json.NewDecoder(resp.Body).Decode(&pg)
			drain(resp)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
			for _, t := range pg.Data {
				if t.ID == "" {
					continue
				}
				items = append(items, conv(t))
			}
			if pg.Meta.NextToken == "" {
				return items, nil
			}
			token = pg.Meta.NextToken
			c.log.Debug("fetched page", logx.String("path", path), logx.Int("total", len(items)))

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := waitFromReset(resetInstant(resp.Header))
			drain(resp)
			c.log.Warn("rate limited while fetching; waiting",
				logx.String("path", path), logx.Duration("wait", wait))
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}

		case resp.StatusCode >= 500:
			drain(resp)
			c.log.Warn("server error while fetching; retrying",
				logx.String("path", path), logx.Int("status", resp.StatusCode))
			if err := sleepCtx(ctx, serverErrorWait); err != nil {
				return nil, err
			}

		default:
			err := apiError(resp)
			drain(resp)
			return nil, err
		}
	}
}

// DeleteTweet removes one post (or repost) and reports the scheduler outcome.
func (c *Client) DeleteTweet(ctx context.Context, id string) sweep.Outcome {
	resp, err := c.do(ctx, http.MethodDelete, "/2/tweets/"+url.PathEscape(id), nil)
	if err != nil {
		return sweep.Failed(err)
	}
	defer drain(resp)
	return outcomeFromResponse(resp)
}

// Unlike removes one like and reports the scheduler outcome.
func (c *Client) Unlike(ctx context.Context, userID, tweetID string) sweep.Outcome {
	p := "/2/users/" + url.PathEscape(userID) + "/likes/" + url.PathEscape(tweetID)
	resp, err := c.do(ctx, http.MethodDelete, p, nil)
	if err != nil {
		return sweep.Failed(err)
	}
	defer drain(resp)
	return outcomeFromResponse(resp)
}

func outcomeFromResponse(resp *http.Response) sweep.Outcome {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return sweep.Success()
	case resp.StatusCode == http.StatusNotFound:
		return sweep.AlreadyGone()
	case resp.StatusCode == http.StatusForbidden:
		return sweep.Forbidden()
	case resp.StatusCode == http.StatusTooManyRequests:
		return sweep.RateLimited(resetInstant(resp.Header))
	default:
		return sweep.Failed(apiError(resp))
	}
}

// resetInstant reads the x-rate-limit-reset header (epoch seconds). Zero time
// means the header was absent or malformed.
func resetInstant(h http.Header) time.Time {
	raw := strings.TrimSpace(h.Get("x-rate-limit-reset"))
	if raw == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

func waitFromReset(reset time.Time) time.Duration {
	if reset.IsZero() {
		return defaultRateLimitWait
	}
	wait := time.Until(reset) + time.Second
	if wait <= 0 {
		return time.Second
	}
	return wait
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "birdsweep")
	if err := c.signer.sign(req); err != nil {
		return nil, err
	}
	return c.http.Do(req)
}

func apiError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(b))
	if detail == "" {
		return fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("api: status %d: %s", resp.StatusCode, detail)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
