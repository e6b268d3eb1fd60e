// Package twitchtest provides an in-process fake of the identity, API and
// media hosts for tests.
package twitchtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Token is the access token the fake identity host hands out.
const Token = "test-token"

// Clip is a clip served by the fake API. VideoBody is what the media host
// returns for the derived video URL; an empty body makes the media host
// answer 404.
type Clip struct {
	ID        string
	Title     string
	CreatedAt time.Time
	VideoBody string

	// ThumbnailURL overrides the generated thumbnail url when set.
	ThumbnailURL string
}

// Server is a fake platform. Zero-value fields give a working server with
// no channels.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// Users maps login -> broadcaster id.
	Users map[string]string

	// Clips maps broadcaster id -> clips in API order.
	Clips map[string][]Clip

	// FailClips maps broadcaster id -> status code to fail the clips call with.
	FailClips map[string]int

	// RejectToken makes the identity host answer 400.
	RejectToken bool

	// OmitData makes the clips endpoint answer 200 without a data field.
	OmitData bool

	requests  map[string]int
	lastQuery map[string]string
}

// NewServer starts a fake platform. Call Close when done.
func NewServer() *Server {
	s := &Server{
		Users:     map[string]string{},
		Clips:     map[string][]Clip{},
		FailClips: map[string]int{},
		requests:  map[string]int{},
		lastQuery: map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", s.handleToken)
	mux.HandleFunc("/helix/users", s.handleUsers)
	mux.HandleFunc("/helix/clips", s.handleClips)
	mux.HandleFunc("/media/", s.handleMedia)

	s.Server = httptest.NewServer(mux)
	return s
}

// IDBaseURL is the identity host base url.
func (s *Server) IDBaseURL() string { return s.URL }

// APIBaseURL is the API base url.
func (s *Server) APIBaseURL() string { return s.URL + "/helix" }

// ThumbnailURL is the thumbnail url the fake returns for a clip id.
func (s *Server) ThumbnailURL(clipID string) string {
	return fmt.Sprintf("%s/media/clip-%s-preview-480x272.jpg", s.URL, clipID)
}

// Requests returns how many times path was requested.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// LastQuery returns the raw query string of the last request to path.
func (s *Server) LastQuery(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[path]
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.URL.Path]++
	s.lastQuery[r.URL.Path] = r.URL.RawQuery
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+Token || r.Header.Get("Client-Id") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized", "status": 401, "message": "Invalid OAuth token"})
		return false
	}
	return true
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	r.ParseForm()
	if s.RejectToken || r.PostForm.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "invalid client secret"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": Token, "expires_in": 5000000, "token_type": "bearer"})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if !s.authorized(w, r) {
		return
	}

	s.mu.Lock()
	id, ok := s.Users[r.URL.Query().Get("login")]
	s.mu.Unlock()

	data := []map[string]any{}
	if ok {
		data = append(data, map[string]any{"id": id, "login": r.URL.Query().Get("login")})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handleClips(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	if !s.authorized(w, r) {
		return
	}

	q := r.URL.Query()
	id := q.Get("broadcaster_id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, ok := s.FailClips[id]; ok {
		writeJSON(w, status, map[string]any{"error": http.StatusText(status), "status": status, "message": "clips unavailable"})
		return
	}
	if s.OmitData {
		writeJSON(w, http.StatusOK, map[string]any{"pagination": map[string]any{}})
		return
	}

	limit, _ := strconv.Atoi(q.Get("first"))
	data := []map[string]any{}
	for _, c := range s.Clips[id] {
		if limit > 0 && len(data) >= limit {
			break
		}
		thumb := c.ThumbnailURL
		if thumb == "" {
			thumb = s.ThumbnailURL(c.ID)
		}
		data = append(data, map[string]any{
			"id":             c.ID,
			"title":          c.Title,
			"broadcaster_id": id,
			"created_at":     c.CreatedAt.UTC().Format(time.RFC3339),
			"thumbnail_url":  thumb,
			"duration":       30.5,
			"view_count":     7,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "pagination": map[string]any{}})
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	name := strings.TrimPrefix(r.URL.Path, "/media/")

	if strings.HasSuffix(name, ".jpg") {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(ThumbnailJPEG)
		return
	}

	id := strings.TrimSuffix(name, ".mp4")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, clips := range s.Clips {
		for _, c := range clips {
			if c.ID == id && c.VideoBody != "" {
				w.Header().Set("Content-Type", "video/mp4")
				w.Write([]byte(c.VideoBody))
				return
			}
		}
	}
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
