// Package tui provides a Bubble Tea terminal user interface for twitch-clips.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/twitch-clips/internal/config"
	"github.com/handiism/twitch-clips/internal/download"
	"github.com/handiism/twitch-clips/internal/history"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9146FF")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9146FF")).
			Padding(1, 2)

	channelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many log lines the UI keeps on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	report    *download.Report
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	// Run progress
	discoveredClips int32
	downloadedClips int32
	receivedBytes   int64

	// Options
	thumbnails bool
	playlist   bool
	dryRun     bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model from loaded settings. The channel
// input starts with the configured channel list.
func NewModel(settings *config.Settings) Model {
	names := make([]string, len(settings.Channels))
	for i, ch := range settings.Channels {
		names[i] = string(ch)
	}

	ti := textinput.New()
	ti.Placeholder = "channel_one,channel_two"
	ti.SetValue(strings.Join(names, ","))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9146FF"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		textInput:  ti,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		logs:       make([]LogEntry, 0),
		ctx:        ctx,
		cancel:     cancel,
		thumbnails: settings.SaveThumbnails,
		playlist:   settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the manager reports an event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the run completes.
	RunDoneMsg struct {
		Report *download.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				return m.start()
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.thumbnails = !m.thumbnails
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		}
		if m.events != nil {
			cmds = append(cmds, waitForEvent(m.events))
		}

	case RunDoneMsg:
		m.report = msg.Report
		if m.manager != nil {
			m.receivedBytes, m.downloadedClips, m.discoveredClips = m.manager.GetProgress()
		}
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.receivedBytes, m.downloadedClips, m.discoveredClips = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start applies the options to a copy of the settings, opens the history
// ledger and launches the run in the background.
func (m Model) start() (tea.Model, tea.Cmd) {
	settings := *m.settings
	settings.Channels = config.ParseChannels(m.textInput.Value())
	settings.SaveThumbnails = m.thumbnails
	settings.CreatePlaylist = m.playlist

	if err := settings.Validate(); err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	store, err := history.Open(settings.HistoryFile)
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}

	events := make(chan download.ProgressEvent, 64)
	ctx := m.ctx
	m.events = events
	m.manager = download.NewManager(&settings, store, func(event download.ProgressEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}, download.WithDryRun(m.dryRun))
	m.state = StateRunning

	manager := m.manager
	run := func() tea.Msg {
		defer store.Close()
		report, err := manager.Run(ctx, settings.Channels)
		close(events)
		return RunDoneMsg{Report: report, Err: err}
	}

	return m, tea.Batch(run, waitForEvent(events), tickProgress(), m.spinner.Tick)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.report = nil
	m.err = nil
	m.manager = nil
	m.events = nil
	m.discoveredClips = 0
	m.downloadedClips = 0
	m.receivedBytes = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.Focus()
}

func (m Model) percent() float64 {
	if m.discoveredClips == 0 {
		return 0
	}
	return float64(m.downloadedClips) / float64(m.discoveredClips)
}

// waitForEvent returns a command that delivers the next manager event,
// or nothing once the run has closed the channel.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Twitch Clips"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download recent clips of your channels"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Channels (comma-separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Save thumbnails (ctrl+t)\n", check(m.thumbnails))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+l)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Dry run (ctrl+r)\n", check(m.dryRun))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+o)\n", check(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Clips: %s | History: %s | Last %d day(s), up to %d per channel",
		m.settings.ClipsDir, m.settings.HistoryFile, m.settings.LookBackDays, m.settings.ClipCount)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.dryRun {
		b.WriteString(subtitleStyle.Render("Checking channels (dry run)..."))
	} else {
		b.WriteString(subtitleStyle.Render("Downloading clips..."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Clips: %d/%d | Downloaded: %.2f MB",
		m.downloadedClips,
		m.discoveredClips,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.report == nil {
		return boxStyle.Render("Nothing to do")
	}

	totals := m.report.Totals()
	var body strings.Builder
	if m.report.DryRun {
		fmt.Fprintf(&body, "Dry run complete\n\nChannels: %d\nWould download: %d\nSkipped: %d\n",
			totals.Channels, totals.Planned, totals.Skipped)
	} else {
		fmt.Fprintf(&body, "Run complete\n\nChannels: %d\nDownloaded: %d\nSkipped: %d\nFailed: %d\nSize: %.2f MB\n",
			totals.Channels, totals.Downloaded, totals.Skipped, totals.Failed, float64(totals.Bytes)/1024/1024)
	}
	b.WriteString(boxStyle.Render(strings.TrimSuffix(body.String(), "\n")))
	b.WriteString("\n\n")

	for _, ch := range m.report.Channels {
		b.WriteString(channelStyle.Render(string(ch.Channel)))
		switch {
		case ch.Err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("  %s: %v", download.Kind(ch.Err), ch.Err)))
		default:
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %d new, %d skipped, %d failed",
				ch.Count(download.ClipDownloaded), ch.Count(download.ClipSkipped), ch.Count(download.ClipFailed))))
		}
		if ch.LastClip != nil {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  last %s at %s", ch.LastClip.ClipID, ch.LastClip.DownloadedAt.Local().Format(time.DateTime))))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s: %s\n", download.Kind(m.err), m.err.Error())
	}
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+t: thumbnails • ctrl+l: playlist • ctrl+r: dry run • ctrl+o: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run loads settings from envPath and starts the TUI application.
func Run(envPath string) error {
	settings, err := config.Load(envPath)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
