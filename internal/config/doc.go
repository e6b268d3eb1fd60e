// Package config provides configuration management for twitch-clips.
//
// This package handles:
//   - Loading settings from a key-value (.env style) file
//   - Falling back to process environment variables
//   - Default values and range validation
//   - Writing a settings file back out
//
// # Loading from File
//
//	settings, err := config.Load(".env")
//	if err != nil {
//	    var cfgErr *config.ConfigError
//	    if errors.As(err, &cfgErr) {
//	        fmt.Println("bad key:", cfgErr.Key)
//	    }
//	}
//
// # Required Keys
//
//	CLIENT_ID=...
//	CLIENT_SECRET=...
//	CHANNEL_NAMES=gordox,foo,bar
//	CLIP_COUNT=20
//	LOOK_BACK_DAYS=1
//
// Everything else (output directory, history file, naming scheme,
// concurrency, timeouts, thumbnails, playlists, endpoints) is optional.
//
// Settings are passed explicitly to the components that need them; there
// is no package-level configuration state.
package config
