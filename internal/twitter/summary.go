package twitter

import (
	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/frequency"
)

const (
	summaryRecentLikesLimit = 10
	summaryHashtagsLimit    = 5
)

// Summary is the flat dashboard projection of a Result. Every field has a zero default.
type Summary struct {
	Username              string            `json:"username"`
	DisplayName           string            `json:"displayName"`
	AccountAgeDays        int               `json:"accountAgeDays"`
	TotalTweets           int               `json:"totalTweets"`
	TotalFavorites        int               `json:"totalFavorites"`
	TotalRetweets         int               `json:"totalRetweets"`
	TotalLikes            int               `json:"totalLikes"`
	FollowersCount        int               `json:"followersCount"`
	FollowingCount        int               `json:"followingCount"`
	MutualsCount          int               `json:"mutualsCount"`
	NotFollowingBackCount int               `json:"notFollowingBackCount"`
	YouDontFollowCount    int               `json:"youDontFollowCount"`
	Ratio                 float64           `json:"ratio"`
	DominantActivity      activity.Bucket   `json:"dominantActivity"`
	InterestCount         int               `json:"interestCount"`
	BlockCount            int               `json:"blockCount"`
	MuteCount             int               `json:"muteCount"`
	ScreenNameChangeCount int               `json:"screenNameChangeCount"`
	ConversationCount     int               `json:"conversationCount"`
	MessagesSent          int               `json:"messagesSent"`
	MessagesReceived      int               `json:"messagesReceived"`
	LoginCount            int               `json:"loginCount"`
	UniqueLoginIPs        int               `json:"uniqueLoginIps"`
	ErrorCount            int               `json:"errorCount"`
	RecentLikes           []Like            `json:"recentLikes"`
	TopHashtags           []frequency.Entry `json:"topHashtags"`
}

// Summarize projects the already computed sub-results; absent datasets contribute zeros.
func Summarize(result Result) Summary {
	summary := Summary{
		RecentLikes: []Like{},
		TopHashtags: []frequency.Entry{},
		ErrorCount:  len(result.Metadata.Errors),
	}
	if result.Account != nil {
		summary.Username = result.Account.Username
		summary.DisplayName = result.Account.DisplayName
		if result.Account.Age != nil {
			summary.AccountAgeDays = result.Account.Age.TotalDays
		}
	}
	if result.Tweets != nil {
		summary.TotalTweets = result.Tweets.Total
		summary.TotalFavorites = result.Tweets.Engagement.TotalFavorites
		summary.TotalRetweets = result.Tweets.Engagement.TotalRetweets
		if result.Tweets.Activity != nil {
			summary.DominantActivity = result.Tweets.Activity.Dominant.Bucket
		}
		hashtags := result.Tweets.TopHashtags.Entries
		if len(hashtags) > summaryHashtagsLimit {
			hashtags = hashtags[:summaryHashtagsLimit]
		}
		summary.TopHashtags = append(summary.TopHashtags, hashtags...)
	}
	if result.Likes != nil {
		summary.TotalLikes = result.Likes.Total
		recent := result.Likes.RecentLikes
		if len(recent) > summaryRecentLikesLimit {
			recent = recent[:summaryRecentLikesLimit]
		}
		summary.RecentLikes = append(summary.RecentLikes, recent...)
	}
	if result.Followers != nil {
		stats := result.Followers.Stats
		summary.FollowersCount = stats.Followers
		summary.FollowingCount = stats.Following
		summary.MutualsCount = stats.Mutuals
		summary.NotFollowingBackCount = stats.NotFollowingBack
		summary.YouDontFollowCount = stats.YouDontFollow
		summary.Ratio = stats.Ratio
	}
	if result.Interests != nil {
		summary.InterestCount = result.Interests.Total
	}
	if result.Blocks != nil {
		summary.BlockCount = result.Blocks.Total
	}
	if result.Mutes != nil {
		summary.MuteCount = result.Mutes.Total
	}
	if result.ScreenNameChanges != nil {
		summary.ScreenNameChangeCount = result.ScreenNameChanges.Total
	}
	if result.DirectMessages != nil {
		summary.ConversationCount = result.DirectMessages.Totals.Conversations
		summary.MessagesSent = result.DirectMessages.Totals.Sent
		summary.MessagesReceived = result.DirectMessages.Totals.Received
	}
	if result.IPAudit != nil {
		summary.LoginCount = result.IPAudit.Total
		summary.UniqueLoginIPs = result.IPAudit.UniqueIPs
	}
	return summary
}
