package twitch

import (
	"encoding/json"
	"time"
)

// tokenResponse is the body of the client-credentials exchange.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// errorResponse is the error body shared by the identity and API hosts.
type errorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// text returns the most useful message in the payload.
func (e errorResponse) text() string {
	switch {
	case e.Message != "" && e.Error != "":
		return e.Error + ": " + e.Message
	case e.Message != "":
		return e.Message
	default:
		return e.Error
	}
}

// dataResponse is the envelope of every API response. Data stays nil when
// the field is absent or null.
type dataResponse struct {
	Data *json.RawMessage `json:"data"`
}

type userDTO struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type clipDTO struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	BroadcasterID   string    `json:"broadcaster_id"`
	BroadcasterName string    `json:"broadcaster_name"`
	CreatorName     string    `json:"creator_name"`
	Title           string    `json:"title"`
	ViewCount       int       `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Duration        float64   `json:"duration"`
}
