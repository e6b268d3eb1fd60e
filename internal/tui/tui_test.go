package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/twitch-clips/internal/config"
	"github.com/handiism/twitch-clips/internal/download"
	"github.com/handiism/twitch-clips/internal/model"
)

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.ClientID = "id"
	s.ClientSecret = "secret"
	s.Channels = []model.Channel{"foo", "bar"}
	return s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModel_PrefillsChannels(t *testing.T) {
	m := NewModel(testSettings())
	if got := m.textInput.Value(); got != "foo,bar" {
		t.Errorf("input = %q", got)
	}
	if m.state != StateInput {
		t.Errorf("state = %v", m.state)
	}
}

func TestUpdate_TogglesOptions(t *testing.T) {
	m := NewModel(testSettings())
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	if !m.thumbnails || !m.playlist || !m.dryRun {
		t.Errorf("options not toggled: thumbnails=%v playlist=%v dryRun=%v", m.thumbnails, m.playlist, m.dryRun)
	}
	if !strings.Contains(m.View(), "[x] Dry run") {
		t.Error("view does not show the dry run option")
	}
}

func TestUpdate_InvalidChannelsShowError(t *testing.T) {
	m := NewModel(testSettings())
	m.textInput.SetValue(" , ,")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.state != StateError {
		t.Fatalf("state = %v", m.state)
	}
	var cfgErr *config.ConfigError
	if !errors.As(m.err, &cfgErr) || cfgErr.Key != config.KeyChannelNames {
		t.Errorf("err = %v", m.err)
	}
}

func TestUpdate_VerboseEventsFiltered(t *testing.T) {
	m := NewModel(testSettings())
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "hidden", Level: download.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "shown", Level: download.LevelInfo}})

	if len(m.logs) != 1 || m.logs[0].Message != "shown" {
		t.Errorf("logs = %+v", m.logs)
	}
}

func TestUpdate_RunDone(t *testing.T) {
	m := NewModel(testSettings())
	m.state = StateRunning

	report := &download.Report{Channels: []download.ChannelReport{{Channel: "foo"}}}
	m = update(t, m, RunDoneMsg{Report: report})

	if m.state != StateComplete {
		t.Fatalf("state = %v", m.state)
	}
	if !strings.Contains(m.View(), "foo") {
		t.Error("summary does not list the channel")
	}
}
