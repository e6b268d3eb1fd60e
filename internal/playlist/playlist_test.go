package playlist

import (
	"strings"
	"testing"

	"github.com/handiism/twitch-clips/internal/model"
)

func testClips() []model.Clip {
	return []model.Clip{
		{ID: "AbC123", Title: "Big Play", Duration: 30.4},
		{ID: "Zz9", Title: "multi\nline  title", Duration: 12},
	}
}

func TestCreator_M3U(t *testing.T) {
	content := NewCreator(FormatM3U, false, model.NameByID).Create("gordox", testClips())

	if content != "AbC123.mp4\nZz9.mp4\n" {
		t.Errorf("M3U content = %q", content)
	}
}

func TestCreator_M3UExtended(t *testing.T) {
	content := NewCreator(FormatM3U, true, model.NameByTitle).Create("gordox", testClips())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:30,gordox - Big Play\nBig_Play.mp4\n") {
		t.Errorf("missing EXTINF entry in %q", content)
	}
	if !strings.Contains(content, "gordox - multi line title\n") {
		t.Errorf("title newlines not collapsed: %q", content)
	}
}

func TestCreator_PLS(t *testing.T) {
	creator := NewCreator(FormatPLS, true, model.NameByID)
	content := creator.Create("gordox", testClips())

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	for _, want := range []string{"File1=AbC123.mp4", "Title2=gordox - multi line title", "Length1=30", "NumberOfEntries=2", "Version=2"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q", want)
		}
	}
	if creator.FileName() != "latest.pls" {
		t.Errorf("FileName = %q", creator.FileName())
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("PLS"); err != nil || f != FormatPLS {
		t.Errorf("ParseFormat(PLS) = %v, %v", f, err)
	}
	if _, err := ParseFormat("wpl"); err == nil {
		t.Error("expected error for wpl")
	}
}
