package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/twitch-clips/internal/config"
	"github.com/handiism/twitch-clips/internal/model"
	"github.com/handiism/twitch-clips/internal/twitch"
)

// IOError is a clip-scoped failure to fetch, write or record a clip.
type IOError struct {
	Op   string // "download", "record", "mkdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Kind names the failure class of err for reports: ConfigError,
// AuthError, NotFoundError, ApiError, UrlDerivationError, IoError,
// Cancelled or Error.
func Kind(err error) string {
	var (
		cfgErr  *config.ConfigError
		authErr *twitch.AuthError
		nfErr   *twitch.NotFoundError
		apiErr  *twitch.APIError
		urlErr  *twitch.URLDerivationError
		ioErr   *IOError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "ConfigError"
	case errors.As(err, &authErr):
		return "AuthError"
	case errors.As(err, &nfErr):
		return "NotFoundError"
	case errors.As(err, &urlErr):
		return "UrlDerivationError"
	case errors.As(err, &ioErr):
		return "IoError"
	case errors.As(err, &apiErr):
		return "ApiError"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Cancelled"
	default:
		return "Error"
	}
}

// ClipStatus is the outcome of one discovered clip.
type ClipStatus int

const (
	// ClipDownloaded means the file was written and recorded.
	ClipDownloaded ClipStatus = iota

	// ClipSkipped means the clip was already in the ledger.
	ClipSkipped

	// ClipFailed means the clip could not be derived, fetched, written or
	// recorded. Err says why.
	ClipFailed

	// ClipPlanned means the clip would have been downloaded (dry run).
	ClipPlanned
)

func (s ClipStatus) String() string {
	switch s {
	case ClipDownloaded:
		return "downloaded"
	case ClipSkipped:
		return "skipped"
	case ClipFailed:
		return "failed"
	case ClipPlanned:
		return "planned"
	default:
		return "unknown"
	}
}

// ClipOutcome is what happened to one clip.
type ClipOutcome struct {
	Clip   model.Clip
	Status ClipStatus
	Path   string
	Bytes  int64
	Err    error
}

// ChannelReport is the result for one channel. Err is set when the
// channel could not be processed at all (resolution or discovery
// failed); Clips is then empty.
type ChannelReport struct {
	Channel     model.Channel
	Broadcaster model.Broadcaster
	Err         error
	Clips       []ClipOutcome

	// LastClip is the channel's most recent ledger entry after the run.
	LastClip *model.HistoryEntry
}

// Count returns how many clips ended with status.
func (c *ChannelReport) Count(status ClipStatus) int {
	n := 0
	for _, o := range c.Clips {
		if o.Status == status {
			n++
		}
	}
	return n
}

// OK reports whether the channel had no channel- or clip-level failure.
func (c *ChannelReport) OK() bool {
	return c.Err == nil && c.Count(ClipFailed) == 0
}

// Report aggregates every channel's result for one run. Channels keeps
// the configured channel order regardless of parallelism.
type Report struct {
	RunID      uuid.UUID
	Window     model.DownloadWindow
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Channels   []ChannelReport
}

// Totals sums the clip outcomes across channels.
type Totals struct {
	Channels       int
	FailedChannels int
	Downloaded     int
	Skipped        int
	Failed         int
	Planned        int
	Bytes          int64
}

// Totals returns the run totals.
func (r *Report) Totals() Totals {
	var t Totals
	t.Channels = len(r.Channels)
	for i := range r.Channels {
		ch := &r.Channels[i]
		if ch.Err != nil {
			t.FailedChannels++
		}
		for _, o := range ch.Clips {
			switch o.Status {
			case ClipDownloaded:
				t.Downloaded++
				t.Bytes += o.Bytes
			case ClipSkipped:
				t.Skipped++
			case ClipFailed:
				t.Failed++
			case ClipPlanned:
				t.Planned++
			}
		}
	}
	return t
}

// OK reports whether every channel succeeded.
func (r *Report) OK() bool {
	for i := range r.Channels {
		if !r.Channels[i].OK() {
			return false
		}
	}
	return true
}
