// Package client issues the two authenticated HTTP operations against the
// Advent of Code judge: fetching a day's puzzle input and submitting an
// answer. It performs no retries and no caching; those policies belong to
// the caller.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aocd/session"
)

// DefaultBaseURL is the judge endpoint.
const DefaultBaseURL = "https://adventofcode.com"

// userAgent identifies this tool to the judge, as its maintainers request.
const userAgent = "aocd"

// AuthError indicates the session credential was rejected by the judge.
// It is distinct from StatusError so callers can abort instead of retrying.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("session credential rejected (HTTP %d)", e.StatusCode)
}

// StatusError indicates a non-2xx response that is not an auth failure.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.Status)
}

// Client talks to the judge. Fields may be adjusted before first use;
// the zero HTTPClient and BaseURL are filled in by New.
type Client struct {
	// BaseURL is the judge endpoint, overridable for testing.
	BaseURL string

	// Token is the session credential attached to every request.
	Token session.Token

	// HTTPClient performs the requests. Its timeout is the only
	// cancellation mechanism beyond the per-call context.
	HTTPClient *http.Client
}

// New creates a judge client using the given session credential.
func New(token session.Token) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchInput retrieves the puzzle input for (year, day).
// The body is returned verbatim, trailing newline included.
func (c *Client) FetchInput(ctx context.Context, year, day int) (string, error) {
	endpoint := fmt.Sprintf("%s/%d/day/%d/input", c.BaseURL, year, day)

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch input for %d day %d: %w", year, day, err)
	}

	return body, nil
}

// SubmitAnswer posts answer for (year, day, part) and returns the raw
// response body, an HTML page containing the judge's verdict sentence.
func (c *Client) SubmitAnswer(ctx context.Context, year, day, part int, answer string) (string, error) {
	endpoint := fmt.Sprintf("%s/%d/day/%d/answer", c.BaseURL, year, day)

	form := url.Values{
		"level":  {strconv.Itoa(part)},
		"answer": {answer},
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit answer for %d day %d part %d: %w", year, day, part, err)
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.AddCookie(&http.Cookie{Name: "session", Value: c.Token.String()})

	return req, nil
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// The judge answers 400 to requests with a missing or stale session
	// cookie rather than 401.
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return "", &AuthError{StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return string(data), nil
}
