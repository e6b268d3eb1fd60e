package twitch

import "fmt"

// AuthError means the credential could not be obtained or was rejected.
// Without a credential no channel can be processed.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("auth: %s: %v", e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("auth: HTTP %d: %s", e.Status, e.Message)
	default:
		return "auth: " + e.Message
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// NotFoundError means a channel login did not match any user.
type NotFoundError struct {
	Channel string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("channel %q not found", e.Channel)
}

// APIError is a non-success status, a transport failure, or a malformed
// payload from an API endpoint. Message carries the API's own error text
// when the response had one.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api %s: %v", e.Endpoint, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("api %s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	default:
		return fmt.Sprintf("api %s: %s", e.Endpoint, e.Message)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// URLDerivationError means a playable video URL could not be derived
// from a clip's thumbnail URL.
type URLDerivationError struct {
	ThumbnailURL string
	Reason       string
}

func (e *URLDerivationError) Error() string {
	return fmt.Sprintf("derive video url from %q: %s", e.ThumbnailURL, e.Reason)
}
