// Package client is a typed client for the portal's HTTP API.
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

	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/response"
)

// ErrSignedOut is returned when an authenticated call is made without an identity.
var ErrSignedOut = errors.New("not signed in")

// APIError is a non-2xx reply decoded from the error envelope.
type APIError struct {
	Status  int
	Code    response.ErrCode
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// TokenSource supplies the identity token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the portal API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// New creates a Client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithTokens returns a copy of the client that authenticates with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, auth bool) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if auth {
		if c.tokens == nil {
			return ErrSignedOut
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// ─── Auth ─────────────────────────────────────────────────────────────

// Login signs in with the local identity provider.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		model.LoginRequest{Email: email, Password: password}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session behind token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.WithTokens(staticToken(token)).do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, true)
}

// VerifyToken asks the verification endpoint for the principal behind token.
func (c *Client) VerifyToken(ctx context.Context, token string) (*model.Principal, error) {
	var out model.Principal
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-token", url.Values{"token": {token}}, nil, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Dashboards ───────────────────────────────────────────────────────

// StudentDashboard fetches a student's dashboard.
func (c *Client) StudentDashboard(ctx context.Context, studentID string) (*model.StudentDashboard, error) {
	var out model.StudentDashboard
	if err := c.do(ctx, http.MethodGet, "/api/student/dashboard/"+url.PathEscape(studentID), nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// TeacherDashboard fetches a teacher's dashboard.
func (c *Client) TeacherDashboard(ctx context.Context, teacherID string) (*model.TeacherDashboard, error) {
	var out model.TeacherDashboard
	if err := c.do(ctx, http.MethodGet, "/api/teacher/dashboard/"+url.PathEscape(teacherID), nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ParentDashboard fetches a parent's dashboard.
func (c *Client) ParentDashboard(ctx context.Context, parentID string) (*model.ParentDashboard, error) {
	var out model.ParentDashboard
	if err := c.do(ctx, http.MethodGet, "/api/parent/dashboard/"+url.PathEscape(parentID), nil, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Messages ─────────────────────────────────────────────────────────

// FetchMessages returns the newest messages of a class, newest first.
func (c *Client) FetchMessages(ctx context.Context, classID string, limit int) ([]model.ChatMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []model.ChatMessage
	if err := c.do(ctx, http.MethodGet, "/api/messages/class/"+url.PathEscape(classID), q, nil, &out, true); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.ChatMessage{}
	}
	return out, nil
}

// SendMessage posts a message to a class.
func (c *Client) SendMessage(ctx context.Context, req *model.SendMessageRequest) (*model.ChatMessage, error) {
	var out model.ChatMessage
	if err := c.do(ctx, http.MethodPost, "/api/messages/send", nil, req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage deletes one of the caller's own messages.
func (c *Client) DeleteMessage(ctx context.Context, messageID, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(messageID),
		url.Values{"user_id": {userID}}, nil, nil, true)
}

type staticToken string

func (t staticToken) Token(context.Context) (string, error) {
	return string(t), nil
}
