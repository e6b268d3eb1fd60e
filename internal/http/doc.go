// Package http provides the HTTP client used for platform API calls and
// media downloads.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Separate time limits for API requests and media downloads
//   - File downloads with progress tracking
//   - Writing to a ".part" file and renaming on success
//
// # Basic Usage
//
//	client := http.NewClient(30*time.Second, 10*time.Minute)
//
//	// Call an endpoint; the caller inspects the status
//	resp, err := client.Get(ctx, endpoint, header)
//	if err == nil && !resp.OK() {
//	    // handle API failure
//	}
//
//	// Download a clip
//	n, err := client.DownloadFile(ctx, videoURL, "/clips/foo/AbC123.mp4", nil)
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
