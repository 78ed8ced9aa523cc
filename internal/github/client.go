// Package github is a small client for the GitHub repository contents API,
// used both as a document store and as a blob store.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"
	apiVersion    = "2022-11-28"
	rawMediaType  = "application/vnd.github.raw"
)

var (
	ErrNotFound = errors.New("github: file not found")
	ErrConflict = errors.New("github: sha does not match")
)

// Client talks to the contents API of a single repository branch.
type Client struct {
	http    *retryablehttp.Client
	apiURL  string
	rawURL  string
	token   string
	repo    string // "owner/name"
	branch  string
	timeout time.Duration
}

// Options configures a Client. Repo is "owner/name".
type Options struct {
	Token  string
	Repo   string
	Branch string
	APIURL string
	RawURL string
	// RetryMax bounds transport-level retries (5xx, 429, connection errors).
	RetryMax int
}

// NewClient creates a contents API client.
func NewClient(opts Options) (*Client, error) {
	if opts.Repo == "" || !strings.Contains(opts.Repo, "/") {
		return nil, fmt.Errorf("github: repo must be owner/name, got %q", opts.Repo)
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.RawURL == "" {
		opts.RawURL = DefaultRawURL
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    rc,
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		rawURL:  strings.TrimRight(opts.RawURL, "/"),
		token:   opts.Token,
		repo:    opts.Repo,
		branch:  opts.Branch,
		timeout: 60 * time.Second,
	}, nil
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA  string `json:"sha"`
		Path string `json:"path"`
	} `json:"content"`
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.apiURL, c.repo, escapePath(path))
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body any) (*retryablehttp.Request, error) {
	var payload any
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = b
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// GetFile returns the decoded content of path and its blob sha.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, c.contentsURL(path)+"?ref="+url.QueryEscape(c.branch), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("github GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, "", ErrNotFound
	default:
		return nil, "", statusError("GET", path, resp)
	}

	var body contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("github GET %s: decode: %w", path, err)
	}
	switch body.Encoding {
	case "", "base64":
	case "none":
		// files over 1 MB come back without inline content
		content, err := c.getRaw(ctx, path)
		if err != nil {
			return nil, "", err
		}
		return content, body.SHA, nil
	default:
		return nil, "", fmt.Errorf("github GET %s: unsupported encoding %q", path, body.Encoding)
	}
	// The API wraps base64 content at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("github GET %s: decode content: %w", path, err)
	}
	return decoded, body.SHA, nil
}

// getRaw fetches the content of path through the raw media type.
func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.contentsURL(path)+"?ref="+url.QueryEscape(c.branch), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", rawMediaType)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github GET %s (raw): %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, statusError("GET", path, resp)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github GET %s (raw): read: %w", path, err)
	}
	return content, nil
}

// PutFile creates (sha == "") or updates path and returns the new blob sha.
func (c *Client) PutFile(ctx context.Context, path string, content []byte, message, sha string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPut, c.contentsURL(path), putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     sha,
	})
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("github PUT %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// 422 is returned when a file exists and no sha was supplied.
		io.Copy(io.Discard, resp.Body)
		return "", ErrConflict
	default:
		return "", statusError("PUT", path, resp)
	}

	var body putResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("github PUT %s: decode: %w", path, err)
	}
	return body.Content.SHA, nil
}

// DeleteFile removes path. A missing file is not an error.
func (c *Client) DeleteFile(ctx context.Context, path, message string) error {
	_, sha, err := c.GetFile(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := c.newRequest(ctx, http.MethodDelete, c.contentsURL(path), map[string]string{
		"message": message,
		"sha":     sha,
		"branch":  c.branch,
	})
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github DELETE %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return statusError("DELETE", path, resp)
}

// RawURL returns the public raw URL of path on the configured branch.
func (c *Client) RawURL(path string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.rawURL, c.repo, c.branch, escapePath(path))
}

func statusError(method, path string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 160))
	err := fmt.Errorf("github %s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(snippet))
	log.Printf("WARN: %v", err)
	return err
}
