package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apphttp "github.com/handiism/twitch-clips/internal/http"
	"github.com/handiism/twitch-clips/internal/model"
)

// API issues authenticated requests against the platform API.
type API struct {
	httpClient *apphttp.Client
	baseURL    string
	clientID   string
}

// NewAPI creates an API client for baseURL (e.g.
// "https://api.twitch.tv/helix"). clientID is sent with every request.
func NewAPI(httpClient *apphttp.Client, baseURL, clientID string) *API {
	return &API{
		httpClient: httpClient,
		baseURL:    baseURL,
		clientID:   clientID,
	}
}

// ResolveBroadcaster maps a channel login to its broadcaster id.
//
// Returns *NotFoundError when the lookup returns no users, *APIError on a
// non-success status or malformed payload, and *AuthError when the
// credential is rejected. The first match is never guessed at.
func (a *API) ResolveBroadcaster(ctx context.Context, channel model.Channel, cred Credential) (model.Broadcaster, error) {
	query := url.Values{"login": {string(channel)}}

	var users []userDTO
	if err := a.getData(ctx, "users", query, cred, &users); err != nil {
		return model.Broadcaster{}, err
	}
	if len(users) == 0 {
		return model.Broadcaster{}, &NotFoundError{Channel: string(channel)}
	}
	if users[0].ID == "" {
		return model.Broadcaster{}, &APIError{Endpoint: "users", Message: "user without id in response"}
	}

	return model.Broadcaster{ChannelName: string(channel), ID: users[0].ID}, nil
}

// DiscoverClips lists clips created inside window for a broadcaster. Only
// the first page is read, so at most limit clips come back, in the order
// the API returns them. Zero clips is not an error.
func (a *API) DiscoverClips(ctx context.Context, broadcasterID string, window model.DownloadWindow, limit int, cred Credential) ([]model.Clip, error) {
	query := url.Values{
		"broadcaster_id": {broadcasterID},
		"first":          {strconv.Itoa(limit)},
		"started_at":     {formatTimestamp(window.StartedAt)},
		"ended_at":       {formatTimestamp(window.EndedAt)},
	}

	var dtos []clipDTO
	if err := a.getData(ctx, "clips", query, cred, &dtos); err != nil {
		return nil, err
	}

	clips := make([]model.Clip, 0, len(dtos))
	for _, d := range dtos {
		clips = append(clips, model.Clip{
			ID:           d.ID,
			Title:        d.Title,
			ThumbnailURL: d.ThumbnailURL,
			CreatedAt:    d.CreatedAt,
			URL:          d.URL,
			CreatorName:  d.CreatorName,
			ViewCount:    d.ViewCount,
			Duration:     d.Duration,
		})
	}
	return clips, nil
}

// getData performs an authenticated GET and decodes the "data" field of
// the response into out.
func (a *API) getData(ctx context.Context, endpoint string, query url.Values, cred Credential, out any) error {
	header := http.Header{}
	header.Set("Client-Id", a.clientID)
	header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := a.httpClient.Get(ctx, a.baseURL+"/"+endpoint+"?"+query.Encode(), header)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}

	if !resp.OK() {
		var apiErr errorResponse
		_ = json.Unmarshal(resp.Body, &apiErr)
		msg := apiErr.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{Status: resp.StatusCode, Message: msg}
		}
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	var envelope dataResponse
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return &APIError{Endpoint: endpoint, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if envelope.Data == nil {
		return &APIError{Endpoint: endpoint, Message: "no data in response"}
	}
	if err := json.Unmarshal(*envelope.Data, out); err != nil {
		return &APIError{Endpoint: endpoint, Err: fmt.Errorf("malformed data: %w", err)}
	}
	return nil
}

// formatTimestamp renders t as UTC ISO-8601 with a trailing Z.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
