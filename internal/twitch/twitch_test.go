package twitch

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	apphttp "github.com/handiism/twitch-clips/internal/http"
	"github.com/handiism/twitch-clips/internal/model"
	"github.com/handiism/twitch-clips/internal/twitch/twitchtest"
)

func newTestClient() *apphttp.Client {
	return apphttp.NewClient(2*time.Second, 2*time.Second)
}

func TestTokenManager_Acquire(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()

	cred, err := NewTokenManager(newTestClient(), srv.IDBaseURL()).Acquire(context.Background(), "id", "secret")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if cred.AccessToken != twitchtest.Token {
		t.Errorf("AccessToken = %q", cred.AccessToken)
	}
	if cred.ExpiresIn <= 0 {
		t.Errorf("ExpiresIn = %v", cred.ExpiresIn)
	}
}

func TestTokenManager_Rejected(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()
	srv.RejectToken = true

	_, err := NewTokenManager(newTestClient(), srv.IDBaseURL()).Acquire(context.Background(), "id", "bad")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Status != 400 || !strings.Contains(authErr.Message, "invalid client secret") {
		t.Errorf("AuthError = %+v", authErr)
	}
}

func TestTokenManager_Unreachable(t *testing.T) {
	srv := twitchtest.NewServer()
	base := srv.IDBaseURL()
	srv.Close()

	_, err := NewTokenManager(newTestClient(), base).Acquire(context.Background(), "id", "secret")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestAPI_ResolveBroadcaster(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()
	srv.Users["foo"] = "1001"

	api := NewAPI(newTestClient(), srv.APIBaseURL(), "id")
	cred := Credential{AccessToken: twitchtest.Token}

	b, err := api.ResolveBroadcaster(context.Background(), "foo", cred)
	if err != nil {
		t.Fatalf("ResolveBroadcaster: %v", err)
	}
	if b.ID != "1001" || b.ChannelName != "foo" {
		t.Errorf("broadcaster = %+v", b)
	}

	_, err = api.ResolveBroadcaster(context.Background(), "missing", cred)
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Channel != "missing" {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestAPI_ExpiredCredential(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()
	srv.Users["foo"] = "1001"

	api := NewAPI(newTestClient(), srv.APIBaseURL(), "id")
	_, err := api.ResolveBroadcaster(context.Background(), "foo", Credential{AccessToken: "expired"})

	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Status != 401 {
		t.Fatalf("expected 401 AuthError, got %v", err)
	}
}

func TestAPI_DiscoverClips(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()

	created := time.Date(2024, 3, 9, 11, 0, 0, 0, time.UTC)
	srv.Clips["1001"] = []twitchtest.Clip{
		{ID: "A", Title: "first", CreatedAt: created},
		{ID: "B", Title: "second", CreatedAt: created.Add(-time.Hour)},
		{ID: "C", Title: "third", CreatedAt: created.Add(-2 * time.Hour)},
	}

	api := NewAPI(newTestClient(), srv.APIBaseURL(), "id")
	window := model.DownloadWindow{
		StartedAt: time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
	}

	clips, err := api.DiscoverClips(context.Background(), "1001", window, 2, Credential{AccessToken: twitchtest.Token})
	if err != nil {
		t.Fatalf("DiscoverClips: %v", err)
	}
	if len(clips) != 2 || clips[0].ID != "A" || clips[1].ID != "B" {
		t.Fatalf("clips = %+v", clips)
	}
	if !clips[0].CreatedAt.Equal(created) || clips[0].ThumbnailURL != srv.ThumbnailURL("A") {
		t.Errorf("clip fields not mapped: %+v", clips[0])
	}

	q, _ := url.ParseQuery(srv.LastQuery("/helix/clips"))
	if q.Get("broadcaster_id") != "1001" || q.Get("first") != "2" {
		t.Errorf("query = %v", q)
	}
	if q.Get("started_at") != "2024-03-08T12:00:00Z" || q.Get("ended_at") != "2024-03-09T12:00:00Z" {
		t.Errorf("window params = %q .. %q", q.Get("started_at"), q.Get("ended_at"))
	}
}

func TestAPI_DiscoverClipsEmpty(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()

	api := NewAPI(newTestClient(), srv.APIBaseURL(), "id")
	clips, err := api.DiscoverClips(context.Background(), "1001", model.DownloadWindow{}, 5, Credential{AccessToken: twitchtest.Token})
	if err != nil {
		t.Fatalf("zero clips should not be an error: %v", err)
	}
	if len(clips) != 0 {
		t.Errorf("clips = %v", clips)
	}
}

func TestAPI_DiscoverClipsErrors(t *testing.T) {
	srv := twitchtest.NewServer()
	defer srv.Close()
	api := NewAPI(newTestClient(), srv.APIBaseURL(), "id")
	cred := Credential{AccessToken: twitchtest.Token}

	srv.FailClips["1001"] = 503
	_, err := api.DiscoverClips(context.Background(), "1001", model.DownloadWindow{}, 5, cred)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 503 || !strings.Contains(apiErr.Message, "clips unavailable") {
		t.Errorf("expected 503 APIError with message, got %v", err)
	}

	srv.OmitData = true
	_, err = api.DiscoverClips(context.Background(), "2002", model.DownloadWindow{}, 5, cred)
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "no data") {
		t.Errorf("expected missing-data APIError, got %v", err)
	}
}

func TestDeriveVideoURL(t *testing.T) {
	tests := []struct {
		name    string
		thumb   string
		want    string
		wantErr bool
	}{
		{
			name:  "standard thumbnail",
			thumb: "https://clips-media-assets2.twitch.tv/clip-AbC123-preview-480x272.jpg",
			want:  "https://clips-media-assets2.twitch.tv/AbC123.mp4",
		},
		{
			name:  "nested path",
			thumb: "https://cdn.example.com/a/b/clip-Xy_9-offset-preview-480x272.jpg",
			want:  "https://cdn.example.com/a/b/Xy_9.mp4",
		},
		{
			name:  "query string dropped",
			thumb: "https://cdn.example.com/clip-AbC123-preview-480x272.jpg?sig=1",
			want:  "https://cdn.example.com/AbC123.mp4",
		},
		{name: "empty", thumb: "", wantErr: true},
		{name: "no marker", thumb: "https://static-cdn.example.com/cf_vods/preview-480x272.jpg", wantErr: true},
		{name: "empty token", thumb: "https://cdn.example.com/clip--preview-480x272.jpg", wantErr: true},
		{name: "relative", thumb: "/clip-AbC123-preview-480x272.jpg", wantErr: true},
		{name: "token with extension", thumb: "https://cdn.example.com/clip-AbC123.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveVideoURL(tt.thumb)
			if tt.wantErr {
				var derr *URLDerivationError
				if !errors.As(err, &derr) {
					t.Errorf("expected URLDerivationError, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveVideoURL = %q, want %q", got, tt.want)
			}
			if !strings.HasSuffix(got, model.VideoExtension) {
				t.Errorf("derived url %q lacks extension", got)
			}
		})
	}
}
