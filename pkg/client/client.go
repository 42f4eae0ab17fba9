// Package client is a small Go SDK for the socialshop API: REST calls for
// the feed, posts, chats and notifications, and live views kept current over
// the realtime socket.
package client

import (
	"bytes"
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

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/pkg/retry"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Msg     string          `json:"msg"`
	Code    string          `json:"code"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	retry   retry.Config
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// New creates a client for baseURL (scheme and host, no path) that
// authenticates with token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		retry:   retry.DefaultConfig(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request and decodes the envelope's data into out. GETs are
// retried on transport errors and 5xx answers.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
		if err != nil {
			return retry.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var env envelope
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &env); err != nil {
				return retry.Permanent(fmt.Errorf("decode response: %w", err))
			}
		}
		if resp.StatusCode >= 300 {
			apiErr := &APIError{Status: resp.StatusCode, Message: env.Msg, Code: env.Code}
			if resp.StatusCode >= 500 {
				return apiErr
			}
			return retry.Permanent(apiErr)
		}
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return retry.Permanent(fmt.Errorf("decode data: %w", err))
			}
		}
		return nil
	}

	if method != http.MethodGet {
		return unwrapPermanent(attempt())
	}
	return unwrapPermanent(retry.Do(ctx, c.log, method+" "+path, attempt, c.retry))
}

// unwrapPermanent strips the retry marker so callers can errors.As the cause.
func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// Feed returns one page of the global feed, newest first.
func (c *Client) Feed(ctx context.Context, page, limit int) ([]models.FeedPost, error) {
	var data struct {
		Posts []models.FeedPost `json:"posts"`
	}
	q := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/feed", q, nil, &data); err != nil {
		return nil, err
	}
	return data.Posts, nil
}

// PostDetails returns a post with its like rows and comments.
func (c *Client) PostDetails(ctx context.Context, postID string) (*models.PostDetails, error) {
	var details models.PostDetails
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) LikePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/likes", nil, nil, nil)
}

func (c *Client) UnlikePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID)+"/likes", nil, nil, nil)
}

// Messages returns the conversation with userID, oldest first.
func (c *Client) Messages(ctx context.Context, userID uint) ([]models.Message, error) {
	var data struct {
		Messages []models.Message `json:"messages"`
	}
	path := "/chats/" + strconv.FormatUint(uint64(userID), 10) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, userID uint, text string) (*models.Message, error) {
	var msg models.Message
	path := "/chats/" + strconv.FormatUint(uint64(userID), 10) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, models.SendMessageRequest{Text: text}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Notifications returns one page of the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context, page, limit int) ([]models.NotificationWithSender, error) {
	var data struct {
		Notifications []models.NotificationWithSender `json:"notifications"`
	}
	q := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &data); err != nil {
		return nil, err
	}
	return data.Notifications, nil
}

func (c *Client) UnseenNotifications(ctx context.Context) (int, error) {
	var data struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications/unseen-count", nil, nil, &data); err != nil {
		return 0, err
	}
	return data.Count, nil
}
