package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/twitch-clips/internal/model"
)

// ChannelDir returns the directory a channel's clips are written to: one
// directory per channel under root. The channel name is sanitized so a
// configured name can never escape root.
//
// Example:
//
//	ChannelDir("/data/clips", "gordox") // "/data/clips/gordox"
func ChannelDir(root string, channel model.Channel) string {
	name := model.SanitizeFileName(string(channel))
	if strings.Trim(name, ".") == "" {
		name = "_"
	}
	return filepath.Join(root, name)
}

// WriteFile writes data to path atomically: the bytes go to a temporary
// sibling first and are renamed into place.
//
// The file is created with mode 0644. If it already exists it is replaced.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
