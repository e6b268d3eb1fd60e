package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/twitch-clips/internal/model"
	"github.com/joho/godotenv"
)

// Keys understood in the settings file.
const (
	KeyClientID              = "CLIENT_ID"
	KeyClientSecret          = "CLIENT_SECRET"
	KeyChannelNames          = "CHANNEL_NAMES"
	KeyClipCount             = "CLIP_COUNT"
	KeyLookBackDays          = "LOOK_BACK_DAYS"
	KeyClipsDir              = "CLIPS_DIR"
	KeyHistoryFile           = "HISTORY_FILE"
	KeyFileNaming            = "FILE_NAMING"
	KeyMaxConcurrentChannels = "MAX_CONCURRENT_CHANNELS"
	KeyRequestTimeout        = "REQUEST_TIMEOUT_SECONDS"
	KeyDownloadTimeout       = "DOWNLOAD_TIMEOUT_SECONDS"
	KeySaveThumbnails        = "SAVE_THUMBNAILS"
	KeyThumbnailMaxSize      = "THUMBNAIL_MAX_SIZE"
	KeyCreatePlaylist        = "CREATE_PLAYLIST"
	KeyPlaylistFormat        = "PLAYLIST_FORMAT"
	KeyM3UExtended           = "M3U_EXTENDED"
	KeyAPIBaseURL            = "API_BASE_URL"
	KeyIDBaseURL             = "ID_BASE_URL"
)

// MaxClipCount is the largest page size the clips endpoint accepts.
const MaxClipCount = 100

// ConfigError reports a missing or malformed settings key. It is fatal:
// nothing touches the network once one is returned.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// Settings holds all configuration options for one run.
type Settings struct {
	// Credentials
	ClientID     string
	ClientSecret string

	// Discovery
	Channels     []model.Channel
	ClipCount    int
	LookBackDays int

	// Output
	ClipsDir    string
	HistoryFile string
	FileNaming  model.NamingScheme

	// Concurrency and timeouts
	MaxConcurrentChannels int
	RequestTimeout        time.Duration
	DownloadTimeout       time.Duration

	// Thumbnails
	SaveThumbnails   bool
	ThumbnailMaxSize int

	// Playlist settings
	CreatePlaylist bool
	PlaylistFormat string // m3u, pls
	M3UExtended    bool

	// Endpoints
	APIBaseURL string
	IDBaseURL  string
}

// DefaultSettings returns settings with default values. Credentials and
// channels have no defaults.
func DefaultSettings() *Settings {
	return &Settings{
		ClipCount:             20,
		LookBackDays:          1,
		ClipsDir:              "clips",
		HistoryFile:           "history.txt",
		FileNaming:            model.NameByID,
		MaxConcurrentChannels: 1,
		RequestTimeout:        30 * time.Second,
		DownloadTimeout:       10 * time.Minute,
		ThumbnailMaxSize:      480,
		PlaylistFormat:        "m3u",
		M3UExtended:           true,
		APIBaseURL:            "https://api.twitch.tv/helix",
		IDBaseURL:             "https://id.twitch.tv",
	}
}

// LookBack returns the look-back window length.
func (s *Settings) LookBack() time.Duration {
	return time.Duration(s.LookBackDays) * 24 * time.Hour
}

// Load reads settings from a key-value file. Keys missing from the file
// are looked up in the process environment. A missing file is not an
// error on its own; the required keys must then come from the
// environment.
func Load(path string) (*Settings, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Key: path, Reason: err.Error()}
		}
		values = map[string]string{}
	}
	return FromMap(values, os.LookupEnv)
}

// FromMap builds settings from parsed key-value pairs. fallback, if not
// nil, is consulted for keys absent from values.
func FromMap(values map[string]string, fallback func(string) (string, bool)) (*Settings, error) {
	r := reader{values: values, fallback: fallback}
	s := DefaultSettings()

	s.ClientID = r.required(KeyClientID)
	s.ClientSecret = r.required(KeyClientSecret)
	s.Channels = ParseChannels(r.required(KeyChannelNames))
	s.ClipCount = r.requiredInt(KeyClipCount)
	s.LookBackDays = r.requiredInt(KeyLookBackDays)

	s.ClipsDir = r.strOr(KeyClipsDir, s.ClipsDir)
	s.HistoryFile = r.strOr(KeyHistoryFile, s.HistoryFile)
	if raw, ok := r.lookup(KeyFileNaming); ok {
		scheme, valid := model.ParseNamingScheme(raw)
		if !valid {
			r.fail(KeyFileNaming, fmt.Sprintf("unknown naming scheme %q (want id or title)", raw))
		}
		s.FileNaming = scheme
	}
	s.MaxConcurrentChannels = r.intOr(KeyMaxConcurrentChannels, s.MaxConcurrentChannels)
	s.RequestTimeout = r.seconds(KeyRequestTimeout, s.RequestTimeout)
	s.DownloadTimeout = r.seconds(KeyDownloadTimeout, s.DownloadTimeout)
	s.SaveThumbnails = r.boolOr(KeySaveThumbnails, s.SaveThumbnails)
	s.ThumbnailMaxSize = r.intOr(KeyThumbnailMaxSize, s.ThumbnailMaxSize)
	s.CreatePlaylist = r.boolOr(KeyCreatePlaylist, s.CreatePlaylist)
	s.PlaylistFormat = strings.ToLower(r.strOr(KeyPlaylistFormat, s.PlaylistFormat))
	s.M3UExtended = r.boolOr(KeyM3UExtended, s.M3UExtended)
	s.APIBaseURL = strings.TrimRight(r.strOr(KeyAPIBaseURL, s.APIBaseURL), "/")
	s.IDBaseURL = strings.TrimRight(r.strOr(KeyIDBaseURL, s.IDBaseURL), "/")

	if r.err != nil {
		return nil, r.err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks value ranges. It is called by Load and must be called
// again after flags override fields.
func (s *Settings) Validate() error {
	switch {
	case s.ClientID == "":
		return &ConfigError{Key: KeyClientID, Reason: "must not be empty"}
	case s.ClientSecret == "":
		return &ConfigError{Key: KeyClientSecret, Reason: "must not be empty"}
	case len(s.Channels) == 0:
		return &ConfigError{Key: KeyChannelNames, Reason: "no channels listed"}
	case s.ClipCount < 1 || s.ClipCount > MaxClipCount:
		return &ConfigError{Key: KeyClipCount, Reason: fmt.Sprintf("must be between 1 and %d", MaxClipCount)}
	case s.LookBackDays < 1:
		return &ConfigError{Key: KeyLookBackDays, Reason: "must be at least 1"}
	case s.MaxConcurrentChannels < 1:
		return &ConfigError{Key: KeyMaxConcurrentChannels, Reason: "must be at least 1"}
	case s.RequestTimeout <= 0:
		return &ConfigError{Key: KeyRequestTimeout, Reason: "must be positive"}
	case s.DownloadTimeout <= 0:
		return &ConfigError{Key: KeyDownloadTimeout, Reason: "must be positive"}
	case s.ThumbnailMaxSize < 1:
		return &ConfigError{Key: KeyThumbnailMaxSize, Reason: "must be positive"}
	case s.PlaylistFormat != "m3u" && s.PlaylistFormat != "pls":
		return &ConfigError{Key: KeyPlaylistFormat, Reason: fmt.Sprintf("unknown format %q (want m3u or pls)", s.PlaylistFormat)}
	case s.ClipsDir == "":
		return &ConfigError{Key: KeyClipsDir, Reason: "must not be empty"}
	case s.HistoryFile == "":
		return &ConfigError{Key: KeyHistoryFile, Reason: "must not be empty"}
	}
	return nil
}

// Save writes settings to a key-value file that Load can read back.
func (s *Settings) Save(path string) error {
	names := make([]string, len(s.Channels))
	for i, ch := range s.Channels {
		names[i] = string(ch)
	}

	values := map[string]string{
		KeyClientID:              s.ClientID,
		KeyClientSecret:          s.ClientSecret,
		KeyChannelNames:          strings.Join(names, ","),
		KeyClipCount:             strconv.Itoa(s.ClipCount),
		KeyLookBackDays:          strconv.Itoa(s.LookBackDays),
		KeyClipsDir:              s.ClipsDir,
		KeyHistoryFile:           s.HistoryFile,
		KeyFileNaming:            s.FileNaming.String(),
		KeyMaxConcurrentChannels: strconv.Itoa(s.MaxConcurrentChannels),
		KeyRequestTimeout:        strconv.Itoa(int(s.RequestTimeout / time.Second)),
		KeyDownloadTimeout:       strconv.Itoa(int(s.DownloadTimeout / time.Second)),
		KeySaveThumbnails:        strconv.FormatBool(s.SaveThumbnails),
		KeyThumbnailMaxSize:      strconv.Itoa(s.ThumbnailMaxSize),
		KeyCreatePlaylist:        strconv.FormatBool(s.CreatePlaylist),
		KeyPlaylistFormat:        s.PlaylistFormat,
		KeyM3UExtended:           strconv.FormatBool(s.M3UExtended),
		KeyAPIBaseURL:            s.APIBaseURL,
		KeyIDBaseURL:             s.IDBaseURL,
	}
	return godotenv.Write(values, path)
}

// ParseChannels splits a comma-separated channel list. Names are trimmed
// and lower-cased; empties and duplicates are dropped, first occurrence
// wins.
func ParseChannels(list string) []model.Channel {
	var channels []model.Channel
	seen := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		channels = append(channels, model.Channel(name))
	}
	return channels
}

// reader collects the first error while pulling typed values.
type reader struct {
	values   map[string]string
	fallback func(string) (string, bool)
	err      error
}

func (r *reader) lookup(key string) (string, bool) {
	if v, ok := r.values[key]; ok {
		return strings.TrimSpace(v), true
	}
	if r.fallback != nil {
		if v, ok := r.fallback(key); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func (r *reader) fail(key, reason string) {
	if r.err == nil {
		r.err = &ConfigError{Key: key, Reason: reason}
	}
}

func (r *reader) required(key string) string {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		r.fail(key, "required key is missing")
	}
	return v
}

func (r *reader) requiredInt(key string) int {
	v := r.required(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, fmt.Sprintf("not an integer: %q", v))
	}
	return n
}

func (r *reader) strOr(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r *reader) intOr(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, fmt.Sprintf("not an integer: %q", v))
		return def
	}
	return n
}

func (r *reader) seconds(key string, def time.Duration) time.Duration {
	n := r.intOr(key, int(def/time.Second))
	return time.Duration(n) * time.Second
}

func (r *reader) boolOr(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, fmt.Sprintf("not a boolean: %q", v))
		return def
	}
	return b
}
