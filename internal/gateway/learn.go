package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gradebook-extract/internal/config"
	"gradebook-extract/internal/logger"
	"gradebook-extract/internal/model"
	"gradebook-extract/pkg/errors"

	"github.com/rs/zerolog"
)

// Client is the Learn REST implementation of Gateway. One Client holds
// at most one live session; a rotated-out Client is logged out and
// discarded, never reused.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	token      string
	log        zerolog.Logger
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.Learn.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.Get(),
	}
}

type authTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

func (c *Client) Login(ctx context.Context) error {
	authData := map[string]string{
		"username": c.cfg.Learn.Username,
		"password": c.cfg.Learn.Password,
	}

	jsonData, err := json.Marshal(authData)
	if err != nil {
		return fmt.Errorf("failed to marshal auth data: %w", err)
	}

	authURL := c.cfg.Learn.BaseURL + c.cfg.Learn.AuthEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: auth endpoint returned status %d", errors.ErrAuthenticationFailed, resp.StatusCode)
	}

	var tokenResp authTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tokenResp.Token == "" {
		return fmt.Errorf("%w: auth endpoint returned empty token", errors.ErrAuthenticationFailed)
	}

	c.token = tokenResp.Token
	c.log.Debug().Msg("Gateway session established")
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}

	logoutURL := c.cfg.Learn.BaseURL + c.cfg.Learn.LogoutEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, logoutURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	// The local session is gone regardless of what the server says.
	c.token = ""

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.RemoteError{Op: "logout", StatusCode: resp.StatusCode}
	}

	c.log.Debug().Msg("Gateway session closed")
	return nil
}

func (c *Client) AllCourses(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	if err := c.getJSON(ctx, "courses", "/learn/api/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) CoursesContaining(ctx context.Context, courseID string) ([]model.Course, error) {
	query := url.Values{}
	query.Set("courseId", courseID)
	query.Set("match", "contains")

	courses := []model.Course{}
	if err := c.getJSON(ctx, "course search", "/learn/api/courses", query, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) Enrollments(ctx context.Context, courseID string, roles []string) ([]model.Enrollment, error) {
	query := url.Values{}
	for _, role := range roles {
		query.Add("role", role)
	}

	enrollments := []model.Enrollment{}
	path := fmt.Sprintf("/learn/api/courses/%s/memberships", url.PathEscape(courseID))
	if err := c.getJSON(ctx, "memberships", path, query, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (c *Client) Columns(ctx context.Context, courseID string) ([]model.GradebookColumn, error) {
	columns := []model.GradebookColumn{}
	path := fmt.Sprintf("/learn/api/courses/%s/gradebook/columns", url.PathEscape(courseID))
	if err := c.getJSON(ctx, "gradebook columns", path, nil, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (c *Client) ExternalGradeColumn(ctx context.Context, courseID string) (model.GradebookColumn, error) {
	var column model.GradebookColumn
	path := fmt.Sprintf("/learn/api/courses/%s/gradebook/columns/external", url.PathEscape(courseID))
	if err := c.getJSON(ctx, "external grade column", path, nil, &column); err != nil {
		return model.GradebookColumn{}, err
	}
	return column, nil
}

func (c *Client) Users(ctx context.Context, courseID string) ([]model.User, error) {
	users := []model.User{}
	path := fmt.Sprintf("/learn/api/courses/%s/users", url.PathEscape(courseID))
	if err := c.getJSON(ctx, "course users", path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Scores(ctx context.Context, courseID string) ([]model.Score, error) {
	scores := []model.Score{}
	path := fmt.Sprintf("/learn/api/courses/%s/gradebook/scores", url.PathEscape(courseID))
	if err := c.getJSON(ctx, "gradebook scores", path, nil, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// getJSON performs one authenticated GET and decodes the JSON body
// into out. Slices decoded from an empty body or JSON null stay as the
// caller initialized them, which keeps list results non-nil.
func (c *Client) getJSON(ctx context.Context, op string, path string, query url.Values, out any) error {
	if c.token == "" {
		return errors.ErrNoSession
	}

	reqURL := c.cfg.Learn.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.RemoteError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
