package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/handiism/twitch-clips/internal/model"
)

func validValues() map[string]string {
	return map[string]string{
		KeyClientID:     "id",
		KeyClientSecret: "secret",
		KeyChannelNames: "Foo, bar,,foo ,baz",
		KeyClipCount:    "5",
		KeyLookBackDays: "2",
	}
}

func TestFromMap_Defaults(t *testing.T) {
	s, err := FromMap(validValues(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.Channel{"foo", "bar", "baz"}
	if len(s.Channels) != len(want) {
		t.Fatalf("Channels = %v, want %v", s.Channels, want)
	}
	for i := range want {
		if s.Channels[i] != want[i] {
			t.Errorf("Channels[%d] = %q, want %q", i, s.Channels[i], want[i])
		}
	}

	if s.ClipCount != 5 || s.LookBackDays != 2 {
		t.Errorf("ClipCount=%d LookBackDays=%d", s.ClipCount, s.LookBackDays)
	}
	if s.LookBack() != 48*time.Hour {
		t.Errorf("LookBack() = %v", s.LookBack())
	}
	if s.FileNaming != model.NameByID {
		t.Errorf("FileNaming = %v, want id", s.FileNaming)
	}
	if s.ClipsDir != "clips" || s.HistoryFile != "history.txt" {
		t.Errorf("ClipsDir=%q HistoryFile=%q", s.ClipsDir, s.HistoryFile)
	}
	if s.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", s.RequestTimeout)
	}
}

func TestFromMap_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantKey string
	}{
		{"missing client id", func(m map[string]string) { delete(m, KeyClientID) }, KeyClientID},
		{"missing secret", func(m map[string]string) { m[KeyClientSecret] = "" }, KeyClientSecret},
		{"no channels", func(m map[string]string) { m[KeyChannelNames] = " , ," }, KeyChannelNames},
		{"clip count not int", func(m map[string]string) { m[KeyClipCount] = "ten" }, KeyClipCount},
		{"clip count too large", func(m map[string]string) { m[KeyClipCount] = "101" }, KeyClipCount},
		{"zero look back", func(m map[string]string) { m[KeyLookBackDays] = "0" }, KeyLookBackDays},
		{"bad naming", func(m map[string]string) { m[KeyFileNaming] = "hash" }, KeyFileNaming},
		{"bad bool", func(m map[string]string) { m[KeySaveThumbnails] = "sometimes" }, KeySaveThumbnails},
		{"bad playlist", func(m map[string]string) { m[KeyPlaylistFormat] = "wpl" }, KeyPlaylistFormat},
		{"zero parallel", func(m map[string]string) { m[KeyMaxConcurrentChannels] = "0" }, KeyMaxConcurrentChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validValues()
			tt.mutate(values)

			_, err := FromMap(values, nil)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("ConfigError.Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestFromMap_Fallback(t *testing.T) {
	values := validValues()
	delete(values, KeyClientSecret)

	env := map[string]string{KeyClientSecret: "from-env", KeyFileNaming: "title"}
	s, err := FromMap(values, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ClientSecret != "from-env" {
		t.Errorf("ClientSecret = %q", s.ClientSecret)
	}
	if s.FileNaming != model.NameByTitle {
		t.Errorf("FileNaming = %v", s.FileNaming)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# credentials\nCLIENT_ID=abc\nCLIENT_SECRET=def\nCHANNEL_NAMES=gordox\nCLIP_COUNT=3\nLOOK_BACK_DAYS=7\nAPI_BASE_URL=http://localhost:1234/helix/\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ClientID != "abc" || len(s.Channels) != 1 || s.Channels[0] != "gordox" {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.APIBaseURL != "http://localhost:1234/helix" {
		t.Errorf("APIBaseURL = %q, trailing slash should be trimmed", s.APIBaseURL)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	s, err := FromMap(validValues(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveThumbnails = true
	s.PlaylistFormat = "pls"

	path := filepath.Join(t.TempDir(), "saved.env")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.SaveThumbnails || loaded.PlaylistFormat != "pls" || len(loaded.Channels) != 3 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
