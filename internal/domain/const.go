package domain

const (
	CallerCtxKey = "roastit-caller"
)

const (
	SessionCookieDefault = "roastit_session"
	AuthorizationHeader  = "authorization"
)

// UploadTag marks every object the service writes to the media store, so
// unreferenced uploads can be found and swept later.
const UploadTag = "roastit-uploads"

const (
	MaxTitleLength = 200
	MaxRoastLength = 500
)

const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 100
)

// FeedSort selects the order of the post feed.
type FeedSort string

const (
	FeedSortRecent   FeedSort = "recent"
	FeedSortTrending FeedSort = "trending"
)

func ParseFeedSort(s string) (FeedSort, bool) {
	switch FeedSort(s) {
	case "", FeedSortRecent:
		return FeedSortRecent, true
	case FeedSortTrending:
		return FeedSortTrending, true
	default:
		return "", false
	}
}

const (
	EventPostCreated  = "post.created"
	EventRoastCreated = "roast.created"
)

const (
	PostsChannel      = "roastit:posts"
	PostChannelPrefix = "roastit:post:"
)

func PostChannel(postID string) string {
	return PostChannelPrefix + postID
}
