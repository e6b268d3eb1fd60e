// Package ioutils provides the file system and image helpers used when
// writing clips to disk.
//
// # File Operations
//
//	dir := ioutils.ChannelDir("clips", "gordox") // "clips/gordox"
//	err := ioutils.EnsureDir(dir)
//	err = ioutils.WriteFile(ctx, filepath.Join(dir, "latest.m3u"), content)
//
// WriteFile goes through a temporary ".part" file so readers never see a
// half-written file.
//
// # Thumbnails
//
//	svc := ioutils.NewImageService()
//	jpeg, err := svc.Thumbnail(ctx, previewBytes, 480)
package ioutils
