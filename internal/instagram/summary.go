package instagram

import (
	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/frequency"
)

const summaryTopAccountsLimit = 5

// Summary is the flat dashboard projection of a Result. Every field has a zero default.
type Summary struct {
	TotalLikes            int               `json:"totalLikes"`
	TotalLikedComments    int               `json:"totalLikedComments"`
	TotalComments         int               `json:"totalComments"`
	FollowersCount        int               `json:"followersCount"`
	FollowingCount        int               `json:"followingCount"`
	MutualsCount          int               `json:"mutualsCount"`
	NotFollowingBackCount int               `json:"notFollowingBackCount"`
	YouDontFollowCount    int               `json:"youDontFollowCount"`
	RecentFollowersCount  int               `json:"recentFollowersCount"`
	Ratio                 float64           `json:"ratio"`
	DominantActivity      activity.Bucket   `json:"dominantActivity"`
	LoginCount            int               `json:"loginCount"`
	UniqueLoginIPs        int               `json:"uniqueLoginIps"`
	TopicCount            int               `json:"topicCount"`
	SavedPostCount        int               `json:"savedPostCount"`
	ConversationCount     int               `json:"conversationCount"`
	MessagesSent          int               `json:"messagesSent"`
	MessagesReceived      int               `json:"messagesReceived"`
	CloseFriendsCount     int               `json:"closeFriendsCount"`
	UnfollowedCount       int               `json:"unfollowedCount"`
	SearchCount           int               `json:"searchCount"`
	StoryLikeCount        int               `json:"storyLikeCount"`
	ErrorCount            int               `json:"errorCount"`
	TopLikedAccounts      []frequency.Entry `json:"topLikedAccounts"`
	TopCommentedAccounts  []frequency.Entry `json:"topCommentedAccounts"`
}

// Summarize projects the already computed sub-results; absent datasets contribute zeros.
func Summarize(result Result) Summary {
	summary := Summary{
		TopLikedAccounts:     []frequency.Entry{},
		TopCommentedAccounts: []frequency.Entry{},
		ErrorCount:           len(result.Metadata.Errors),
	}
	if result.Likes != nil {
		summary.TotalLikes = result.Likes.Total
		summary.TopLikedAccounts = headEntries(result.Likes.TopAccounts.Entries, summaryTopAccountsLimit)
	}
	if result.LikedComments != nil {
		summary.TotalLikedComments = result.LikedComments.Total
	}
	if result.Comments != nil {
		summary.TotalComments += result.Comments.Total
		summary.TopCommentedAccounts = headEntries(result.Comments.TopCommentedAccounts.Entries, summaryTopAccountsLimit)
	}
	if result.ReelsComments != nil {
		summary.TotalComments += result.ReelsComments.Total
	}
	if result.Followers != nil {
		stats := result.Followers.Stats
		summary.FollowersCount = stats.Followers
		summary.FollowingCount = stats.Following
		summary.MutualsCount = stats.Mutuals
		summary.NotFollowingBackCount = stats.NotFollowingBack
		summary.YouDontFollowCount = stats.YouDontFollow
		summary.Ratio = stats.Ratio
		summary.RecentFollowersCount = len(result.Followers.RecentFollowers)
	}
	if result.Activity != nil {
		summary.DominantActivity = result.Activity.Dominant.Bucket
	}
	if result.LoginActivity != nil {
		summary.LoginCount = result.LoginActivity.Total
		summary.UniqueLoginIPs = result.LoginActivity.UniqueIPs
	}
	if result.Topics != nil {
		summary.TopicCount = result.Topics.Total
	}
	if result.SavedPosts != nil {
		summary.SavedPostCount = result.SavedPosts.Total
	}
	if result.Messages != nil {
		summary.ConversationCount = result.Messages.Totals.Conversations
		summary.MessagesSent = result.Messages.Totals.Sent
		summary.MessagesReceived = result.Messages.Totals.Received
	}
	if result.CloseFriends != nil {
		summary.CloseFriendsCount = result.CloseFriends.Total
	}
	if result.RecentlyUnfollowed != nil {
		summary.UnfollowedCount = result.RecentlyUnfollowed.Total
	}
	if result.Searches != nil {
		summary.SearchCount = result.Searches.Total
	}
	if result.StoryLikes != nil {
		summary.StoryLikeCount = result.StoryLikes.Total
	}
	return summary
}

func headEntries(entries []frequency.Entry, limit int) []frequency.Entry {
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return append([]frequency.Entry{}, entries...)
}
