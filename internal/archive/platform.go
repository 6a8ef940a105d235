package archive

import "strings"

// Platform identifies the social network that produced an export.
type Platform string

const (
	// PlatformUnknown marks a file set that carries no recognizable export layout.
	PlatformUnknown Platform = ""
	// PlatformInstagram marks an Instagram "download your information" export.
	PlatformInstagram Platform = "instagram"
	// PlatformTwitter marks a Twitter/X archive.
	PlatformTwitter Platform = "twitter"

	instagramActivityMarker = "your_instagram_activity"
)

var twitterMarkerFileNames = map[string]struct{}{
	"tweets.js":    {},
	"tweet.js":     {},
	"like.js":      {},
	"account.js":   {},
	"follower.js":  {},
	"following.js": {},
	"manifest.js":  {},
}

// DetectPlatform inspects path signatures to decide which export produced the file set.
// Instagram markers take precedence over Twitter/X markers.
func DetectPlatform(files FileSet) Platform {
	twitterDetected := false
	for filePath := range files {
		if strings.Contains(filePath, instagramActivityMarker) {
			return PlatformInstagram
		}
		if _, isMarker := twitterMarkerFileNames[BaseName(filePath)]; isMarker {
			twitterDetected = true
		}
	}
	if twitterDetected {
		return PlatformTwitter
	}
	return PlatformUnknown
}
