package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/muslimbek77/tanlov-ai/internal/platform/errors"
	"github.com/muslimbek77/tanlov-ai/internal/platform/logging"
)

const (
	loginPath   = "/auth/login/"
	refreshPath = "/auth/token/refresh/"
	logoutPath  = "/auth/simple-logout/"
	mePath      = "/auth/me/"

	maxErrorBody = 4 << 10
)

// User is the account summary returned with a session.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	RoleDisplay string `json:"role_display"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsAdmin     bool   `json:"is_admin"`
	CanAnalyze  bool   `json:"can_analyze"`
}

// TokenPair holds the bearer credentials of a session.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Session is the result of a successful login.
type Session struct {
	Tokens TokenPair
	User   User
}

// Client calls the auth endpoints under a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the service rooted at baseURL
// (for example "https://host/api"). A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
		logger:  logging.OrNop(logger),
	}
}

// Bearer formats token as an Authorization header value.
func Bearer(token string) string {
	return "Bearer " + token
}

type loginResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Session{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "username and password are required", map[string]string{"Field": "username"})
	}

	var out loginResponse
	status, err := c.postJSON(ctx, loginPath, "", map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return Session{}, err
	}
	if status != http.StatusOK || !out.Success || out.Access == "" {
		reason := out.Error
		if reason == "" {
			reason = http.StatusText(status)
		}
		c.logger.Info("login rejected", zap.String("username", username), zap.Int("status", status))
		return Session{}, apperrors.WithMetadata(apperrors.CodeLoginFailed, "login rejected: "+reason, map[string]string{"Reason": reason})
	}
	return Session{
		Tokens: TokenPair{Access: out.Access, Refresh: out.Refresh},
		User:   out.User,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. When the service
// does not rotate the refresh token, the given one is kept.
func (c *Client) Refresh(ctx context.Context, refresh string) (TokenPair, error) {
	if strings.TrimSpace(refresh) == "" {
		return TokenPair{}, apperrors.New(apperrors.CodeNoRefreshToken, "no refresh token")
	}

	var out TokenPair
	status, err := c.postJSON(ctx, refreshPath, "", map[string]string{"refresh": refresh}, &out)
	if err != nil {
		return TokenPair{}, err
	}
	if status != http.StatusOK || out.Access == "" {
		return TokenPair{}, apperrors.WithMetadata(apperrors.CodeRefreshFailed, fmt.Sprintf("refresh returned %d", status), map[string]string{"Status": strconv.Itoa(status)})
	}
	if out.Refresh == "" {
		out.Refresh = refresh
	}
	return out, nil
}

// Logout revokes the refresh token of tokens.
func (c *Client) Logout(ctx context.Context, tokens TokenPair) error {
	if tokens.Access == "" {
		return apperrors.New(apperrors.CodeUnauthenticated, "no access token")
	}
	status, err := c.postJSON(ctx, logoutPath, tokens.Access, map[string]string{"refresh": tokens.Refresh}, nil)
	if err != nil {
		return err
	}
	return statusError("logout", status)
}

type meResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// Me returns the user that owns access.
func (c *Client) Me(ctx context.Context, access string) (User, error) {
	if access == "" {
		return User{}, apperrors.New(apperrors.CodeUnauthenticated, "no access token")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, nil)
	if err != nil {
		return User{}, fmt.Errorf("build me request: %w", err)
	}
	req.Header.Set("Authorization", Bearer(access))
	req.Header.Set("Accept", "application/json")

	var out meResponse
	status, err := c.do(req, &out)
	if err != nil {
		return User{}, err
	}
	if err := statusError("me", status); err != nil {
		return User{}, err
	}
	return out.User, nil
}

func (c *Client) postJSON(ctx context.Context, path, access string, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if access != "" {
		req.Header.Set("Authorization", Bearer(access))
	}
	return c.do(req, out)
}

// do sends req and decodes a JSON body into out when present. Decoding
// failures on error statuses are ignored; the status carries the outcome.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("auth response", zap.String("path", req.URL.Path), zap.Int("status", resp.StatusCode))

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.StatusCode < 300 {
		return resp.StatusCode, apperrors.Wrap(apperrors.CodeUpstreamRejected, "decode "+req.URL.Path+" response", err)
	}
	return resp.StatusCode, nil
}

func statusError(op string, status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	code := apperrors.FromStatus(status)
	if code == apperrors.CodeInvalidArgument || code == apperrors.CodeNotFound {
		code = apperrors.CodeUpstreamRejected
	}
	return apperrors.WithMetadata(code, fmt.Sprintf("%s returned %d", op, status), map[string]string{"Status": strconv.Itoa(status)})
}
