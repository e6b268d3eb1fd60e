package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// VideoExtension is the file extension of every downloaded clip.
const VideoExtension = ".mp4"

// Channel is a channel login name as it appears in configuration.
type Channel string

// Broadcaster is the platform identity behind a channel.
type Broadcaster struct {
	ChannelName string
	ID          string
}

// Clip is a single clip record as returned by clip discovery.
//
// Clip values are read-only once produced; the orchestrator derives the
// video URL and the local file name from them.
type Clip struct {
	// ID is the platform-assigned clip identifier (globally unique).
	ID string

	// Title is the human-entered clip title. Free text.
	Title string

	// ThumbnailURL is the preview image URL the video URL is derived from.
	ThumbnailURL string

	// CreatedAt is when the clip was created on the platform.
	CreatedAt time.Time

	// Informational fields, used in playlists and status output.
	URL         string
	CreatorName string
	ViewCount   int
	Duration    float64 // seconds
}

// NamingScheme decides how a clip's local file name is built.
type NamingScheme int

const (
	// NameByID names files after the clip id. Names never collide.
	NameByID NamingScheme = iota

	// NameByTitle names files after the sanitized clip title, falling
	// back to the id when the title sanitizes to nothing. Two titles that
	// sanitize identically overwrite each other.
	NameByTitle
)

// ParseNamingScheme maps a configuration value to a NamingScheme.
func ParseNamingScheme(s string) (NamingScheme, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return NameByID, true
	case "title":
		return NameByTitle, true
	default:
		return NameByID, false
	}
}

// String returns the configuration spelling of the scheme.
func (n NamingScheme) String() string {
	if n == NameByTitle {
		return "title"
	}
	return "id"
}

// FileName returns the clip's base file name (with extension) under the
// given naming scheme.
//
// Example:
//
//	clip := Clip{ID: "AbC123", Title: "My Clip!!"}
//	clip.FileName(NameByTitle) // "My_Clip.mp4"
//	clip.FileName(NameByID)    // "AbC123.mp4"
func (c Clip) FileName(scheme NamingScheme) string {
	base := ""
	if scheme == NameByTitle {
		base = SanitizeFileName(c.Title)
	}
	if base == "" {
		base = SanitizeFileName(c.ID)
	}
	return base + VideoExtension
}

// Path returns the clip's file path inside the channel directory dir.
func (c Clip) Path(dir string, scheme NamingScheme) string {
	return filepath.Join(dir, c.FileName(scheme))
}

// ThumbnailPath returns the path the clip's preview image is saved to,
// alongside the video.
func (c Clip) ThumbnailPath(dir string, scheme NamingScheme) string {
	name := strings.TrimSuffix(c.FileName(scheme), VideoExtension)
	return filepath.Join(dir, name+".jpg")
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9_.] with an
// underscore and trims leading and trailing underscores.
//
// The mapping is deterministic and idempotent:
//
//	SanitizeFileName("My Clip!!.mp4") // "My_Clip__.mp4"
//	SanitizeFileName(SanitizeFileName(x)) == SanitizeFileName(x)
//
// Non-ASCII characters are replaced rune by rune, so "café" becomes "caf".
func SanitizeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}
