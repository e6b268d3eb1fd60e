package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/twitch-clips/internal/config"
	"github.com/handiism/twitch-clips/internal/http"
	ioutils "github.com/handiism/twitch-clips/internal/io"
	"github.com/handiism/twitch-clips/internal/model"
	"github.com/handiism/twitch-clips/internal/playlist"
	"github.com/handiism/twitch-clips/internal/twitch"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Channel model.Channel
}

// Ledger is the part of the history store the Manager needs.
type Ledger interface {
	IsDownloaded(clipID string) bool
	LastClipFor(channel string) (model.HistoryEntry, bool)
	Append(entry model.HistoryEntry) error
}

// errAlreadyDownloaded ends a download flight whose clip was recorded by
// another channel in the meantime.
var errAlreadyDownloaded = errors.New("already downloaded")

// Manager runs the clip ingestion pipeline: one credential for the run,
// then for every channel resolve, discover, filter against the ledger,
// download and record.
//
// Failures never cross scope: a failing clip is recorded and the next clip
// runs; a failing channel is recorded and the next channel runs.
type Manager struct {
	settings   *config.Settings
	httpClient *http.Client
	tokens     *twitch.TokenManager
	api        *twitch.API
	ledger     Ledger

	images   *ioutils.ImageService
	playlist *playlist.Creator

	now    func() time.Time
	dryRun bool

	// flights collapses concurrent downloads of one clip id.
	flights singleflight.Group

	receivedBytes   int64
	discoveredClips int32
	downloadedClips int32

	onProgress func(ProgressEvent)
	progressMu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for the download window and ledger
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDryRun makes the Manager resolve and discover without writing
// anything.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) { m.dryRun = dryRun }
}

// NewManager creates a new Manager. settings must already be validated;
// ledger is usually a *history.Store.
func NewManager(settings *config.Settings, ledger Ledger, onProgress func(ProgressEvent), opts ...Option) *Manager {
	httpClient := http.NewClient(settings.RequestTimeout, settings.DownloadTimeout)

	m := &Manager{
		settings:   settings,
		httpClient: httpClient,
		tokens:     twitch.NewTokenManager(httpClient, settings.IDBaseURL),
		api:        twitch.NewAPI(httpClient, settings.APIBaseURL, settings.ClientID),
		ledger:     ledger,
		images:     ioutils.NewImageService(),
		now:        time.Now,
		onProgress: onProgress,
	}

	if settings.CreatePlaylist {
		format, err := playlist.ParseFormat(settings.PlaylistFormat)
		if err != nil {
			format = playlist.FormatM3U
		}
		m.playlist = playlist.NewCreator(format, settings.M3UExtended, settings.FileNaming)
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run processes channels and returns the report.
//
// The only error Run returns is a failed credential exchange (an
// *twitch.AuthError); nothing else is attempted in that case. Every other
// failure is recorded in the report.
func (m *Manager) Run(ctx context.Context, channels []model.Channel) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		Window:    model.NewDownloadWindow(m.now(), m.settings.LookBack()),
		DryRun:    m.dryRun,
		StartedAt: m.now(),
		Channels:  make([]ChannelReport, len(channels)),
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Run %s, clips created %s", report.RunID, report.Window), Level: LevelVerbose})

	cred, err := m.tokens.Acquire(ctx, m.settings.ClientID, m.settings.ClientSecret)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Could not obtain token: %v", err), Level: LevelError})
		report.FinishedAt = m.now()
		return report, err
	}
	m.progress(ProgressEvent{Message: "Obtained access token", Level: LevelVerbose})

	var g errgroup.Group
	g.SetLimit(m.settings.MaxConcurrentChannels)

	for i, channel := range channels {
		i, channel := i, channel
		g.Go(func() error {
			report.Channels[i] = m.runChannel(ctx, channel, report.Window, cred)
			return nil
		})
	}
	g.Wait()

	report.FinishedAt = m.now()
	return report, nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, downloaded, discovered int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.downloadedClips), atomic.LoadInt32(&m.discoveredClips)
}

func (m *Manager) runChannel(ctx context.Context, channel model.Channel, window model.DownloadWindow, cred twitch.Credential) (rep ChannelReport) {
	rep.Channel = channel
	defer func() {
		if last, ok := m.ledger.LastClipFor(string(channel)); ok {
			rep.LastClip = &last
		}
	}()

	if err := ctx.Err(); err != nil {
		rep.Err = err
		return rep
	}

	broadcaster, err := m.api.ResolveBroadcaster(ctx, channel, cred)
	if err != nil {
		rep.Err = err
		m.channelEvent(channel, LevelError, "Error resolving %s: %v", channel, err)
		return rep
	}
	rep.Broadcaster = broadcaster

	clips, err := m.api.DiscoverClips(ctx, broadcaster.ID, window, m.settings.ClipCount, cred)
	if err != nil {
		rep.Err = err
		m.channelEvent(channel, LevelError, "Error listing clips for %s: %v", channel, err)
		return rep
	}
	atomic.AddInt32(&m.discoveredClips, int32(len(clips)))
	m.channelEvent(channel, LevelInfo, "Found %d clip(s) for %s", len(clips), channel)

	dir := ioutils.ChannelDir(m.settings.ClipsDir, channel)
	if !m.dryRun && len(clips) > 0 {
		if err := ioutils.EnsureDir(dir); err != nil {
			rep.Err = &IOError{Op: "mkdir", Path: dir, Err: err}
			m.channelEvent(channel, LevelError, "Error creating directory: %v", err)
			return rep
		}
	}

	var fresh []model.Clip
	for _, clip := range clips {
		outcome := m.processClip(ctx, channel, dir, clip)
		rep.Clips = append(rep.Clips, outcome)
		if outcome.Status == ClipDownloaded {
			fresh = append(fresh, clip)
		}
	}

	m.writePlaylist(ctx, channel, dir, fresh)

	if rep.OK() {
		m.channelEvent(channel, LevelSuccess, "Finished %s: %d new, %d skipped", channel, rep.Count(ClipDownloaded), rep.Count(ClipSkipped))
	} else {
		m.channelEvent(channel, LevelWarning, "Finished %s, %d clip(s) failed", channel, rep.Count(ClipFailed))
	}
	return rep
}

func (m *Manager) processClip(ctx context.Context, channel model.Channel, dir string, clip model.Clip) ClipOutcome {
	outcome := ClipOutcome{Clip: clip, Path: clip.Path(dir, m.settings.FileNaming)}

	if m.ledger.IsDownloaded(clip.ID) {
		outcome.Status = ClipSkipped
		m.channelEvent(channel, LevelVerbose, "Skipping already downloaded: %s", clip.ID)
		return outcome
	}

	videoURL, err := twitch.DeriveVideoURL(clip.ThumbnailURL)
	if err != nil {
		return m.clipFailed(channel, outcome, err)
	}

	if m.dryRun {
		outcome.Status = ClipPlanned
		m.channelEvent(channel, LevelInfo, "Would download %q to %s", clip.Title, outcome.Path)
		return outcome
	}

	executed := false
	v, err, _ := m.flights.Do(clip.ID, func() (any, error) {
		executed = true
		n, err := m.fetchAndRecord(ctx, channel, clip, videoURL, outcome.Path)
		return n, err
	})
	if errors.Is(err, errAlreadyDownloaded) || (err == nil && !executed) {
		outcome.Status = ClipSkipped
		m.channelEvent(channel, LevelVerbose, "Skipping clip downloaded by another channel: %s", clip.ID)
		return outcome
	}
	if err != nil {
		return m.clipFailed(channel, outcome, err)
	}

	outcome.Status = ClipDownloaded
	outcome.Bytes = v.(int64)
	atomic.AddInt32(&m.downloadedClips, 1)
	m.channelEvent(channel, LevelSuccess, "Downloaded clip %q to %s", clip.Title, outcome.Path)

	if m.settings.SaveThumbnails {
		m.saveThumbnail(ctx, channel, dir, clip)
	}
	return outcome
}

// fetchAndRecord downloads the video and appends its ledger entry. It
// runs at most once per clip id at a time.
func (m *Manager) fetchAndRecord(ctx context.Context, channel model.Channel, clip model.Clip, videoURL, path string) (int64, error) {
	if m.ledger.IsDownloaded(clip.ID) {
		return 0, errAlreadyDownloaded
	}

	var last int64
	n, err := m.httpClient.DownloadFile(ctx, videoURL, path, func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-last)
		last = written
	})
	if err != nil {
		atomic.AddInt64(&m.receivedBytes, -last)
		return 0, &IOError{Op: "download", Path: videoURL, Err: err}
	}

	entry := model.HistoryEntry{
		ClipID:       clip.ID,
		DownloadedAt: m.now().UTC(),
		ChannelName:  string(channel),
	}
	if err := m.ledger.Append(entry); err != nil {
		return 0, &IOError{Op: "record", Path: path, Err: err}
	}
	return n, nil
}

func (m *Manager) clipFailed(channel model.Channel, outcome ClipOutcome, err error) ClipOutcome {
	outcome.Status = ClipFailed
	outcome.Err = err
	m.channelEvent(channel, LevelError, "Error downloading %s: %v", outcome.Clip.ID, err)
	return outcome
}

// saveThumbnail stores the clip's preview image next to the video. Any
// failure is only a warning.
func (m *Manager) saveThumbnail(ctx context.Context, channel model.Channel, dir string, clip model.Clip) {
	data, err := m.httpClient.DownloadBytes(ctx, clip.ThumbnailURL)
	if err == nil {
		data, err = m.images.Thumbnail(ctx, data, m.settings.ThumbnailMaxSize)
	}
	if err == nil {
		err = ioutils.WriteFile(ctx, clip.ThumbnailPath(dir, m.settings.FileNaming), data)
	}
	if err != nil {
		m.channelEvent(channel, LevelWarning, "Error saving thumbnail for %s: %v", clip.ID, err)
		return
	}
	m.channelEvent(channel, LevelVerbose, "Saved thumbnail for %s", clip.ID)
}

func (m *Manager) writePlaylist(ctx context.Context, channel model.Channel, dir string, clips []model.Clip) {
	if m.playlist == nil || m.dryRun || len(clips) == 0 {
		return
	}

	content := m.playlist.Create(string(channel), clips)
	path := filepath.Join(dir, m.playlist.FileName())
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		m.channelEvent(channel, LevelWarning, "Error creating playlist: %v", err)
		return
	}
	m.channelEvent(channel, LevelVerbose, "Created playlist %s", path)
}

func (m *Manager) channelEvent(channel model.Channel, level ProgressLevel, format string, args ...any) {
	m.progress(ProgressEvent{Message: fmt.Sprintf(format, args...), Level: level, Channel: channel})
}

// progress delivers events one at a time, whatever the parallelism.
func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.progressMu.Lock()
	defer m.progressMu.Unlock()
	m.onProgress(event)
}
