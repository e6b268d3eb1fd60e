package model

import (
	"fmt"
	"strings"
	"time"
)

// legacyTimestampLayout is the timestamp layout of ledgers written by
// earlier releases ("2006-01-02 15:04:05", local time).
const legacyTimestampLayout = "2006-01-02 15:04:05"

// HistoryEntry is one line of the download ledger: a clip that was
// downloaded successfully.
type HistoryEntry struct {
	ClipID       string
	DownloadedAt time.Time
	ChannelName  string
}

// MarshalLine renders the entry as a ledger line without the trailing
// newline: "clipId,isoTimestamp,channelName".
func (e HistoryEntry) MarshalLine() string {
	return fmt.Sprintf("%s,%s,%s", e.ClipID, e.DownloadedAt.UTC().Format(time.RFC3339), e.ChannelName)
}

// ParseHistoryLine parses a single ledger line. Both RFC 3339 and the
// legacy "YYYY-MM-DD HH:MM:SS" timestamps are accepted.
func ParseHistoryLine(line string) (HistoryEntry, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return HistoryEntry{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	if fields[0] == "" {
		return HistoryEntry{}, fmt.Errorf("empty clip id")
	}

	ts, err := time.Parse(time.RFC3339, fields[1])
	if err != nil {
		ts, err = time.ParseInLocation(legacyTimestampLayout, fields[1], time.Local)
		if err != nil {
			return HistoryEntry{}, fmt.Errorf("bad timestamp %q", fields[1])
		}
	}

	return HistoryEntry{
		ClipID:       fields[0],
		DownloadedAt: ts,
		ChannelName:  fields[2],
	}, nil
}

// DownloadWindow is the look-back range clips are discovered in.
type DownloadWindow struct {
	StartedAt time.Time
	EndedAt   time.Time
}

// NewDownloadWindow returns the window ending at now and reaching back
// lookBack.
func NewDownloadWindow(now time.Time, lookBack time.Duration) DownloadWindow {
	now = now.UTC()
	return DownloadWindow{
		StartedAt: now.Add(-lookBack),
		EndedAt:   now,
	}
}

// Contains reports whether t falls inside the window (inclusive).
func (w DownloadWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartedAt) && !t.After(w.EndedAt)
}

// String formats the window for status output.
func (w DownloadWindow) String() string {
	return fmt.Sprintf("%s .. %s", w.StartedAt.Format(time.RFC3339), w.EndedAt.Format(time.RFC3339))
}
