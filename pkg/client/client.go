// Package client is a small HTTP client for the timeclock API feeds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a timeclock API. It is safe for concurrent use once the
// token is set.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// User is the account returned by login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login authenticates with an email or username and stores the token.
func (c *Client) Login(ctx context.Context, login, password string) (*User, error) {
	req := loginRequest{Password: password}
	if strings.Contains(login, "@") {
		req.Email = login
	} else {
		req.Username = login
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

// AdminEntry is one admin feed entry.
type AdminEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Unread    bool      `json:"unread"`
	Thread    *struct {
		OpenQuestionCount int `json:"open_question_count"`
	} `json:"thread,omitempty"`
}

// AdminFeed is the administrator notification feed.
type AdminFeed struct {
	Items  []AdminEntry `json:"items"`
	Unread int          `json:"unread"`
}

// AdminFeed fetches GET /messages.
func (c *Client) AdminFeed(ctx context.Context) (*AdminFeed, error) {
	var feed AdminFeed
	if err := c.do(ctx, http.MethodGet, "/messages", nil, &feed); err != nil {
		return nil, fmt.Errorf("admin feed: %w", err)
	}
	return &feed, nil
}

// AnsweredQuestion is one employee feed entry.
type AnsweredQuestion struct {
	Question struct {
		ID      string  `json:"id"`
		Content string  `json:"content"`
		Answer  *string `json:"answer"`
	} `json:"question"`
	Unread bool `json:"unread"`
}

// EmployeeFeed is the answered-question feed of the caller.
type EmployeeFeed struct {
	Items  []AnsweredQuestion `json:"items"`
	Unread int                `json:"unread"`
}

// EmployeeFeed fetches GET /notifications/user.
func (c *Client) EmployeeFeed(ctx context.Context) (*EmployeeFeed, error) {
	var feed EmployeeFeed
	if err := c.do(ctx, http.MethodGet, "/notifications/user", nil, &feed); err != nil {
		return nil, fmt.Errorf("employee feed: %w", err)
	}
	return &feed, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
