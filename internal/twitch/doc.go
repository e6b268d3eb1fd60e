// Package twitch talks to the video platform: it acquires the session
// credential, resolves channel logins to broadcaster ids, lists clips in a
// time window and derives video URLs from clip thumbnails.
//
// # Credential
//
//	tm := twitch.NewTokenManager(httpClient, "https://id.twitch.tv")
//	cred, err := tm.Acquire(ctx, clientID, clientSecret)
//
// There is no refresh. A credential that expires mid-run makes later calls
// return *AuthError.
//
// # Lookups
//
//	api := twitch.NewAPI(httpClient, "https://api.twitch.tv/helix", clientID)
//	b, err := api.ResolveBroadcaster(ctx, "gordox", cred)
//	clips, err := api.DiscoverClips(ctx, b.ID, window, 20, cred)
//
// # Errors
//
//   - *AuthError: token exchange failed or a call was answered 401
//   - *NotFoundError: channel login matched no user
//   - *APIError: other non-success statuses, transport failures, bad payloads
//   - *URLDerivationError: thumbnail URL did not have the expected shape
package twitch
