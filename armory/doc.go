// Package armory is the rate-limited, caching client for the external
// game-data API. It is the sole path for outbound API calls in the
// checklist tool: every request is served from the two-tier cache when
// possible, throttled by the global and per-caller token buckets when not,
// fetched with retry on transient failures, and negative-cached when the
// endpoint turns out not to exist for the requested data variant.
//
//	client, err := armory.New(armory.Config{CacheDir: dir})
//	if err != nil {
//	    return err
//	}
//
//	profile, err := armory.GetCached[CharacterProfile](ctx, client,
//	    "https://eu.api.example.com/profile/wow/character/silvermoon/aeryn",
//	    time.Hour,
//	    armory.Options{
//	        Namespace:   "profile-eu",
//	        Locale:      "en_GB",
//	        TokenUserID: session.UserID,
//	        AccessToken: session.Token,
//	    })
//	if armory.IsEndpointUnavailable(err) {
//	    // this data does not exist for the character's game variant
//	}
package armory
