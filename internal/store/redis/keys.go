package redis

const (
	// KeyPrefixBookmarks is the prefix for per-profile bookmark collections
	KeyPrefixBookmarks = "brightfeed:bookmarks:"
	// KeySuffixVersion is appended to a collection key to get its version counter
	KeySuffixVersion = ":version"
	// KeyNewsListing holds the last upstream news listing
	KeyNewsListing = "brightfeed:news:listing"
	// ChannelEvents is the pub/sub channel carrying bookmark change signals
	ChannelEvents = "brightfeed:events"
)

// BookmarkCollectionKey returns the Redis key holding a profile's serialized collection
func BookmarkCollectionKey(profile string) string {
	return KeyPrefixBookmarks + profile
}

// BookmarkVersionKey returns the Redis key holding a profile's collection version
func BookmarkVersionKey(profile string) string {
	return KeyPrefixBookmarks + profile + KeySuffixVersion
}

// NewsListingKey returns the Redis key for the cached news listing
func NewsListingKey() string {
	return KeyNewsListing
}
