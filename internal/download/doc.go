// Package download provides the orchestration logic for fetching new
// clips of the configured channels.
//
// # Manager
//
// The Manager coordinates the entire run:
//
//  1. Obtain one access token
//  2. Resolve each channel to its broadcaster
//  3. List the clips created inside the look-back window
//  4. Skip clips already in the history ledger
//  5. Derive each video URL, download it and append a ledger entry
//  6. Save thumbnails and write a playlist (optional)
//
// # Basic Usage
//
//	store, _ := history.Open(settings.HistoryFile)
//	manager := download.NewManager(settings, store, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	report, err := manager.Run(ctx, settings.Channels)
//	if err != nil {
//	    log.Fatal(err) // token exchange failed
//	}
//
// # Failure Isolation
//
// Only the token exchange aborts a run. A channel that cannot be resolved
// or listed becomes ChannelReport.Err; a clip that cannot be derived,
// fetched, written or recorded becomes a ClipOutcome with ClipFailed. Use
// Kind to classify either.
//
// # Concurrency
//
// settings.MaxConcurrentChannels channels run in parallel; clips inside a
// channel always run one after another in discovery order. Concurrent
// downloads of the same clip id collapse into one.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent.
// Events are delivered one at a time.
package download
