package twitch

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	apphttp "github.com/handiism/twitch-clips/internal/http"
)

// Credential is the bearer token for one run. It is never persisted and
// never refreshed; expiry is enforced by the API.
type Credential struct {
	AccessToken string
	TokenType   string

	// ExpiresIn is what the identity endpoint reported. Informational.
	ExpiresIn time.Duration
}

// TokenManager obtains the session credential from the identity host.
type TokenManager struct {
	httpClient *apphttp.Client
	baseURL    string
}

// NewTokenManager creates a TokenManager for the identity host at baseURL
// (e.g. "https://id.twitch.tv").
func NewTokenManager(httpClient *apphttp.Client, baseURL string) *TokenManager {
	return &TokenManager{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Acquire exchanges client credentials for a bearer token.
//
// Returns *AuthError if the request fails, the status is not 2xx, or the
// body has no access_token.
func (tm *TokenManager) Acquire(ctx context.Context, clientID, clientSecret string) (Credential, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"grant_type":    {"client_credentials"},
	}

	resp, err := tm.httpClient.PostForm(ctx, tm.baseURL+"/oauth2/token", form)
	if err != nil {
		return Credential{}, &AuthError{Message: "token request failed", Err: err}
	}

	if !resp.OK() {
		var apiErr errorResponse
		_ = json.Unmarshal(resp.Body, &apiErr)
		msg := apiErr.text()
		if msg == "" {
			msg = "token request rejected"
		}
		return Credential{}, &AuthError{Status: resp.StatusCode, Message: msg}
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body, &tok); err != nil {
		return Credential{}, &AuthError{Message: "malformed token response", Err: err}
	}
	if tok.AccessToken == "" {
		return Credential{}, &AuthError{Message: "no access token in response"}
	}

	return Credential{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   time.Duration(tok.ExpiresIn) * time.Second,
	}, nil
}
