package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClient_GetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Client-Id") != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("User-Agent") != "twitch-clips" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := NewClient(time.Second, time.Second)
	resp, err := c.Get(context.Background(), srv.URL, http.Header{"Client-Id": {"abc"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.OK() || string(resp.Body) != `{"ok":true}` {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
}

func TestClient_GetReturnsNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "nope")
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second, time.Second).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("non-success status should not be a transport error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}

func TestClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		r.ParseForm()
		io.WriteString(w, r.PostForm.Get("grant_type"))
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second, time.Second).PostForm(context.Background(), srv.URL, url.Values{"grant_type": {"client_credentials"}})
	if err != nil {
		t.Fatalf("PostForm: %v", err)
	}
	if string(resp.Body) != "client_credentials" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(50*time.Millisecond, time.Second).Get(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClient_DownloadFile(t *testing.T) {
	payload := strings.Repeat("x", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "clip.mp4")
	var last int64
	n, err := NewClient(time.Second, time.Second).DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		last = written
	})
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}
	if n != int64(len(payload)) || last != n {
		t.Errorf("n = %d, last progress = %d", n, last)
	}

	data, err := os.ReadFile(dest)
	if err != nil || string(data) != payload {
		t.Errorf("file content mismatch: %v", err)
	}
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error(".part file should be gone after success")
	}
}

func TestClient_DownloadFileFailureLeavesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "clip.mp4")
	if _, err := NewClient(time.Second, time.Second).DownloadFile(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected error for 403")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination should not exist after failed download")
	}
}
