// Package model defines the data structures shared by the clip
// ingestion pipeline.
//
// # Clip
//
// Clip is a clip record as returned by discovery. Its local file name is
// derived from a NamingScheme:
//
//	clip := model.Clip{ID: "AbC123", Title: "Big Play"}
//	path := clip.Path("/clips/foo", model.NameByID) // "/clips/foo/AbC123.mp4"
//
// # HistoryEntry
//
// HistoryEntry is one ledger line, serialised as "clipId,timestamp,channel":
//
//	line := entry.MarshalLine()
//	entry, err := model.ParseHistoryLine(line)
//
// # DownloadWindow
//
// DownloadWindow is recomputed on every run from the current time and the
// configured look-back:
//
//	window := model.NewDownloadWindow(time.Now(), 24*time.Hour)
package model
