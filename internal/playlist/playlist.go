package playlist

import (
	"fmt"
	"strings"

	"github.com/handiism/twitch-clips/internal/model"
)

// Format represents supported playlist file formats.
type Format int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U Format = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// ParseFormat maps a configuration value ("m3u", "pls") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "m3u":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	default:
		return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// Creator generates a playlist for the clips one run downloaded for a
// channel. Entries are bare file names, so the playlist belongs in the
// channel directory.
//
// Example:
//
//	creator := NewCreator(FormatM3U, true, model.NameByID)
//	content := creator.Create("gordox", clips)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:30,gordox - Big Play
//	// AbC123.mp4
type Creator struct {
	format   Format
	extended bool // For M3U: include EXTINF lines with duration/title
	naming   model.NamingScheme
}

// NewCreator creates a new Creator. extended is ignored for PLS.
func NewCreator(format Format, extended bool, naming model.NamingScheme) *Creator {
	return &Creator{
		format:   format,
		extended: extended,
		naming:   naming,
	}
}

// FileName is the playlist file name inside the channel directory.
func (c *Creator) FileName() string {
	return "latest" + c.format.Extension()
}

// Create renders the playlist for clips, in the order given.
func (c *Creator) Create(channel string, clips []model.Clip) string {
	if c.format == FormatPLS {
		return c.createPLS(channel, clips)
	}
	return c.createM3U(channel, clips)
}

func (c *Creator) createM3U(channel string, clips []model.Clip) string {
	var sb strings.Builder

	if c.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, clip := range clips {
		if c.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(clip.Duration), channel, oneLine(clip.Title))
		}
		sb.WriteString(clip.FileName(c.naming) + "\n")
	}
	return sb.String()
}

func (c *Creator) createPLS(channel string, clips []model.Clip) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, clip := range clips {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, clip.FileName(c.naming))
		fmt.Fprintf(&sb, "Title%d=%s - %s\n", idx, channel, oneLine(clip.Title))
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(clip.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(clips))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// oneLine keeps free-text titles from breaking the line-oriented formats.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
