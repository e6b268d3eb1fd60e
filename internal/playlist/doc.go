// Package playlist writes a playlist of the clips a run downloaded for a
// channel, so the newest clips can be played in one go.
//
//	creator := playlist.NewCreator(playlist.FormatM3U, true, model.NameByID)
//	content := creator.Create("gordox", newClips)
//	os.WriteFile(filepath.Join(channelDir, creator.FileName()), []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package playlist
