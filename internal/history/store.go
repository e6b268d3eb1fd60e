package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/handiism/twitch-clips/internal/model"
)

// Store is the append-only ledger of downloaded clips, backed by a text
// file with one "clipId,timestamp,channel" line per entry.
//
// The file is the source of truth. Open streams it once to build an
// in-memory index (the set of seen clip ids and the last entry per
// channel); Append writes the line durably before updating the index.
//
// Store is safe for concurrent use. Appends are serialised, and a lookup
// sees every append that returned before the lookup started.
type Store struct {
	path string
	file *os.File

	mu      sync.RWMutex
	entries []model.HistoryEntry
	seen    map[string]int                // clip id -> index of first entry
	last    map[string]model.HistoryEntry // channel -> last appended entry

	skipped int
}

// Open opens (creating if needed) the ledger at path and rebuilds the
// index from it.
//
// A trailing line without a newline is the remains of an interrupted
// append; it is truncated away so the next append starts on a clean line.
// Complete lines that fail to parse are skipped and counted, never
// rewritten.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	s := &Store{
		path: path,
		file: file,
		seen: make(map[string]int),
		last: make(map[string]model.HistoryEntry),
	}

	good, err := s.load(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read history: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() != good {
		if err := file.Truncate(good); err != nil {
			file.Close()
			return nil, fmt.Errorf("discard partial history line: %w", err)
		}
	}

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// load streams the ledger and returns the offset just past the last
// newline-terminated line.
func (s *Store) load(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var offset int64

	for {
		line, err := br.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			// Anything left over was never terminated.
			return offset, nil
		}
		if err != nil {
			return offset, err
		}
		offset += int64(len(line))

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		entry, perr := model.ParseHistoryLine(string(line))
		if perr != nil {
			s.skipped++
			continue
		}
		s.index(entry)
	}
}

// index records entry in memory. Callers hold mu for writing or own s
// exclusively.
func (s *Store) index(entry model.HistoryEntry) {
	if _, ok := s.seen[entry.ClipID]; !ok {
		s.seen[entry.ClipID] = len(s.entries)
	}
	s.last[entry.ChannelName] = entry
	s.entries = append(s.entries, entry)
}

// IsDownloaded reports whether any entry has clipID.
func (s *Store) IsDownloaded(clipID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[clipID]
	return ok
}

// First returns the authoritative (first) entry for clipID.
func (s *Store) First(clipID string) (model.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.seen[clipID]
	if !ok {
		return model.HistoryEntry{}, false
	}
	return s.entries[i], true
}

// LastClipFor returns the most recently appended entry for channel.
func (s *Store) LastClipFor(channel string) (model.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.last[channel]
	return e, ok
}

// Append durably adds entry to the end of the ledger. The line is written
// and synced before the in-memory index changes, so a failed append leaves
// no trace in lookups.
func (s *Store) Append(entry model.HistoryEntry) error {
	if entry.ClipID == "" {
		return errors.New("history: empty clip id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("history: store is closed")
	}

	if _, err := s.file.WriteString(entry.MarshalLine() + "\n"); err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("history: sync: %w", err)
	}

	s.index(entry)
	return nil
}

// Entries returns a copy of every entry in append order.
func (s *Store) Entries() []model.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntriesFor returns channel's entries in append order.
func (s *Store) EntriesFor(channel string) []model.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.HistoryEntry
	for _, e := range s.entries {
		if e.ChannelName == channel {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Skipped returns how many complete but malformed lines Open ignored.
func (s *Store) Skipped() int {
	return s.skipped
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the ledger file. Further appends fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
