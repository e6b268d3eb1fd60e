// Package history implements the download ledger used to skip clips that
// were already fetched.
//
// The ledger is a plain text file, one line per downloaded clip:
//
//	AbC123,2024-03-09T14:05:00Z,gordox
//
// Lines are only ever appended. Lookups follow two rules when a clip id
// occurs more than once: the first occurrence decides "already
// downloaded", and the last line for a channel is its most recent clip.
//
//	store, err := history.Open("history.txt")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if !store.IsDownloaded(clip.ID) {
//	    // download, then:
//	    store.Append(model.HistoryEntry{ClipID: clip.ID, DownloadedAt: time.Now(), ChannelName: "gordox"})
//	}
package history
