package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client wraps HTTP operations with per-request time limits.
//
// Client provides:
//   - Configured User-Agent header
//   - A bounded timeout for API calls and a separate one for media downloads
//   - File download with progress tracking and atomic rename
//
// Example usage:
//
//	client := NewClient(30*time.Second, 10*time.Minute)
//
//	// Call an API endpoint
//	resp, err := client.Get(ctx, "https://api.example.com/users?login=foo", header)
//
//	// Download file with progress
//	n, err := client.DownloadFile(ctx, videoURL, "/clips/foo/AbC123.mp4", nil)
type Client struct {
	httpClient      *http.Client
	userAgent       string
	requestTimeout  time.Duration
	downloadTimeout time.Duration
}

// NewClient creates a new HTTP client.
//
// requestTimeout bounds Get and PostForm; downloadTimeout bounds
// DownloadFile and DownloadBytes. A zero value disables the limit.
func NewClient(requestTimeout, downloadTimeout time.Duration) *Client {
	return &Client{
		httpClient:      &http.Client{},
		userAgent:       "twitch-clips",
		requestTimeout:  requestTimeout,
		downloadTimeout: downloadTimeout,
	}
}

// Response is a fully read HTTP response. The status code is not checked;
// callers decide what a failure looks like.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// -1 when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request with the given extra headers and returns the
// whole response.
//
// Returns an error only if the request cannot be sent, times out, or the
// body cannot be read.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.do(req)
}

// PostForm performs a form-encoded POST and returns the whole response.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// DownloadFile downloads a file to destPath with optional progress callback
// and returns the number of bytes written.
//
// The content is streamed to destPath+".part" and renamed into place only
// after the body has been fully written, so a failed download never leaves
// a truncated file at destPath. An existing file at destPath is replaced.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) (int64, error) {
	ctx, cancel := withTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	partPath := destPath + ".part"
	file, err := os.Create(partPath)
	if err != nil {
		return 0, err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	n, err := io.Copy(writer, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partPath)
		return n, err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return n, err
	}
	return n, nil
}

// DownloadBytes downloads a small file (a thumbnail) into memory.
func (c *Client) DownloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
