package twitch

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/handiism/twitch-clips/internal/model"
)

const (
	// previewSuffix is the fixed tail of clip thumbnail URLs.
	previewSuffix = "-preview-480x272.jpg"

	// clipMarker precedes the video token in the thumbnail path.
	clipMarker = "clip-"
)

var videoToken = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DeriveVideoURL turns a clip thumbnail URL into the URL of the clip's
// video file.
//
// The preview suffix is stripped, the token between "clip-" and the next
// hyphen is extracted and ".mp4" is appended, keeping the thumbnail's
// scheme, host and directory:
//
//	DeriveVideoURL("https://clips-media-assets2.twitch.tv/clip-AbC123-preview-480x272.jpg")
//	// "https://clips-media-assets2.twitch.tv/AbC123.mp4"
//
// This is a string transform over an undocumented URL scheme. Anything
// that does not look like it (no marker, empty or odd token, relative
// URL) returns *URLDerivationError instead of a guess.
func DeriveVideoURL(thumbnailURL string) (string, error) {
	fail := func(reason string) (string, error) {
		return "", &URLDerivationError{ThumbnailURL: thumbnailURL, Reason: reason}
	}

	if thumbnailURL == "" {
		return fail("empty thumbnail url")
	}
	u, err := url.Parse(thumbnailURL)
	if err != nil {
		return fail(err.Error())
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail("not an absolute http(s) url")
	}

	path := strings.TrimSuffix(u.Path, previewSuffix)

	idx := strings.Index(path, clipMarker)
	if idx < 0 {
		return fail("no " + clipMarker + " marker")
	}
	token := path[idx+len(clipMarker):]
	if cut := strings.IndexByte(token, '-'); cut >= 0 {
		token = token[:cut]
	}
	if token == "" {
		return fail("empty video token")
	}
	if !videoToken.MatchString(token) {
		return fail("malformed video token " + strconv.Quote(token))
	}

	video := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   path[:idx] + token + model.VideoExtension,
	}
	return video.String(), nil
}
