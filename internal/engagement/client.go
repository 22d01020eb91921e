// Package engagement reads the monitored account's posts and their
// like/retweet audiences from the Twitter v2 API.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aurum-community/aurum-bot/internal/domain"
)

// ErrUnauthorized marks an engagement fetch denied by the API. Distinct from
// other transient failures so the poller can skip a single post instead of
// aborting the cycle.
var ErrUnauthorized = errors.New("engagement source denied access")

// ErrUnavailable marks any other source failure.
var ErrUnavailable = errors.New("engagement source unavailable")

// Source is the read-only feed of the official account's posts and the
// accounts that engaged with them.
type Source interface {
	ResolveAccount(ctx context.Context, handle string) (string, error)
	RecentPosts(ctx context.Context, accountID string, limit int) ([]domain.Post, error)
	LikedBy(ctx context.Context, postID string) ([]string, error)
	RetweetedBy(ctx context.Context, postID string) ([]string, error)
}

// Config holds Twitter API connection settings.
type Config struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required"`
	BearerToken string        `mapstructure:"bearer_token" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RetryCount  int           `mapstructure:"retry_count"`
}

// Client implements Source against the Twitter v2 REST API.
type Client struct {
	http *resty.Client
	log  *slog.Logger
}

// NewClient builds a Twitter API client. Retries happen inside the HTTP
// client itself; callers never retry on top of it.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.BearerToken).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		http: httpClient,
		log:  log,
	}
}

type userPayload struct {
	Data struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type usersPayload struct {
	Data []struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"data"`
}

type tweetsPayload struct {
	Data []struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
}

// ResolveAccount returns the account ID for a Twitter handle.
func (c *Client) ResolveAccount(ctx context.Context, handle string) (string, error) {
	var payload userPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/users/by/username/" + handle)
	if err != nil {
		return "", fmt.Errorf("%w: resolve account %q: %v", ErrUnavailable, handle, err)
	}

	if err := classifyStatus(resp); err != nil {
		return "", fmt.Errorf("resolve account %q: %w", handle, err)
	}

	if payload.Data.ID == "" {
		return "", fmt.Errorf("%w: resolve account %q: empty response", ErrUnavailable, handle)
	}

	return payload.Data.ID, nil
}

// RecentPosts fetches the account's most recent posts, newest first.
func (c *Client) RecentPosts(ctx context.Context, accountID string, limit int) ([]domain.Post, error) {
	var payload tweetsPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("max_results", fmt.Sprintf("%d", limit)).
		SetQueryParam("tweet.fields", "created_at").
		SetResult(&payload).
		Get("/users/" + accountID + "/tweets")
	if err != nil {
		return nil, fmt.Errorf("%w: recent posts: %v", ErrUnavailable, err)
	}

	if err := classifyStatus(resp); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		posts = append(posts, domain.Post{
			ID:        tweet.ID,
			Text:      tweet.Text,
			CreatedAt: tweet.CreatedAt,
		})
	}

	return posts, nil
}

// LikedBy returns the handles that liked the post.
func (c *Client) LikedBy(ctx context.Context, postID string) ([]string, error) {
	return c.engagedUsers(ctx, postID, "liking_users")
}

// RetweetedBy returns the handles that retweeted the post.
func (c *Client) RetweetedBy(ctx context.Context, postID string) ([]string, error) {
	return c.engagedUsers(ctx, postID, "retweeted_by")
}

func (c *Client) engagedUsers(ctx context.Context, postID, endpoint string) ([]string, error) {
	var payload usersPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/tweets/" + postID + "/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s for post %s: %v", ErrUnavailable, endpoint, postID, err)
	}

	if err := classifyStatus(resp); err != nil {
		return nil, fmt.Errorf("%s for post %s: %w", endpoint, postID, err)
	}

	handles := make([]string, 0, len(payload.Data))
	for _, user := range payload.Data {
		if user.Username != "" {
			handles = append(handles, user.Username)
		}
	}

	return handles, nil
}

func classifyStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode())
	case resp.IsError():
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	default:
		return nil
	}
}
