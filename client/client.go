package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/nik132-eng/roastit/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "roastit-client/1.0"
)

// APIError is a non 2xx answer of the RoastIt API.
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
	Detail     string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("roastit: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("roastit: %d %s", e.StatusCode, e.Message)
}

// Client talks to a RoastIt server. Profiles are cached for a minute.
type Client struct {
	client   *http.Client
	cache    *cache.Cache
	endpoint string
	token    string
}

func New(endpoint, token string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:   &httpClient,
		cache:    cache.New(time.Minute, 5*time.Minute),
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, response any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

// SubmitPost uploads an image with its title.
func (c *Client) SubmitPost(ctx context.Context, title, filename string, image io.Reader) (domain.Post, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("title", title); err != nil {
		return domain.Post{}, err
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return domain.Post{}, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return domain.Post{}, fmt.Errorf("failed to read image: %v", err)
	}
	if err := w.Close(); err != nil {
		return domain.Post{}, err
	}

	var post domain.Post
	err = c.do(ctx, http.MethodPost, "/posts", w.FormDataContentType(), &body, &post)
	return post, err
}

func (c *Client) SubmitRoast(ctx context.Context, postID, text string) (domain.Roast, error) {
	payload, err := json.Marshal(map[string]string{"text": text, "postId": postID})
	if err != nil {
		return domain.Roast{}, err
	}

	var roast domain.Roast
	err = c.do(ctx, http.MethodPost, "/roasts", "application/json", bytes.NewReader(payload), &roast)
	return roast, err
}

func (c *Client) ListPosts(ctx context.Context, sort domain.FeedSort, limit int) ([]domain.Post, error) {
	query := url.Values{}
	if sort != "" {
		query.Set("sort", string(sort))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/posts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var posts []domain.Post
	err := c.do(ctx, http.MethodGet, path, "", nil, &posts)
	return posts, err
}

func (c *Client) GetPost(ctx context.Context, id string) (domain.PostDetail, error) {
	var detail domain.PostDetail
	err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), "", nil, &detail)
	return detail, err
}

func (c *Client) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	cacheKey := "profile:" + userID
	if x, found := c.cache.Get(cacheKey); found {
		return x.(domain.Profile), nil
	}

	var profile domain.Profile
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), "", nil, &profile)
	if err != nil {
		return domain.Profile{}, err
	}

	c.cache.Set(cacheKey, profile, cache.DefaultExpiration)
	return profile, nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodGet, "/me", "", nil, &user)
	return user, err
}
