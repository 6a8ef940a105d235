package twitter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/frequency"
	"github.com/f-sync/socialstats/internal/relationships"
	"github.com/f-sync/socialstats/internal/twitter"
)

const archiveRoot = "twitter-2024/data/"

var fixedNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

func assigned(dataset string, payload string) string {
	return "window.YTD." + dataset + ".part0 = " + payload
}

func completeArchive() map[string]string {
	return map[string]string{
		archiveRoot + "account.js": assigned("account", `[{"account":{
			"email":"ozge@example.com","username":"ozge","accountId":"100",
			"createdAt":"2020-03-15T10:00:00.000Z","accountDisplayName":"Ã–zge"}}]`),
		archiveRoot + "tweets.js": assigned("tweets", `[
			{"tweet":{"id_str":"1","full_text":"Merhaba #golang @bob","source":"<a href=\"https://mobile.twitter.com\" rel=\"nofollow\">Twitter for Android</a>",
				"created_at":"Sat Jun 01 07:15:00 +0000 2024","favorite_count":"10","retweet_count":"2","lang":"tr",
				"entities":{"hashtags":[{"text":"golang"}],"user_mentions":[{"screen_name":"bob","name":"Bob"}]}}},
			{"tweet":{"id_str":"2","full_text":"RT @alice: hi","source":"<a href=\"https://mobile.twitter.com\" rel=\"nofollow\">Twitter Web App</a>",
				"created_at":"Sun Jun 02 19:45:00 +0000 2024","favorite_count":"0","retweet_count":"5","lang":"en",
				"entities":{"hashtags":[],"user_mentions":[{"screen_name":"alice","name":"Alice"}]}}},
			{"id_str":"3","full_text":"@bob reply #golang","source":"<a href=\"https://mobile.twitter.com\">Twitter for Android</a>",
				"created_at":"Mon May 20 21:00:00 +0000 2024","favorite_count":3,"retweet_count":"1","lang":"tr",
				"in_reply_to_status_id":"99",
				"entities":{"hashtags":[{"text":"golang"}],"user_mentions":[{"screen_name":"bob"}]}}
		]`),
		archiveRoot + "like.js": assigned("like", `[
			{"like":{"tweetId":"10","fullText":"first","expandedUrl":"https://twitter.com/i/web/status/10"}},
			{"like":{"tweetId":"11","fullText":"gÃ¼zel","expandedUrl":"https://twitter.com/i/web/status/11"}}
		]`),
		archiveRoot + "follower.js": assigned("follower", `[
			{"follower":{"accountId":"200","userLink":"https://twitter.com/intent/user?user_id=200"}},
			{"follower":{"accountId":"300","userLink":"https://twitter.com/intent/user?user_id=300"}}
		]`),
		archiveRoot + "following.js": assigned("following", `[
			{"following":{"accountId":"200","userLink":"https://twitter.com/intent/user?user_id=200"}},
			{"following":{"accountId":"400","userLink":"https://twitter.com/intent/user?user_id=400"}}
		]`),
		archiveRoot + "personalization.js": assigned("personalization", `[{"p13nData":{
			"interests":{"interests":[
				{"name":"Football","isDisabled":false},
				{"name":"Cooking","isDisabled":false},
				{"name":"Netflix","isDisabled":true},
				{"name":"Bitcoin crypto","isDisabled":false}
			]},
			"demographics":{"languages":[{"language":"Turkish","isDisabled":false}],"genderInfo":{"gender":"female"}}
		}}]`),
		archiveRoot + "block.js": assigned("block", `[{"blocking":{"accountId":"500","userLink":"https://twitter.com/intent/user?user_id=500"}}]`),
		archiveRoot + "mute.js": assigned("mute", `[
			{"muting":{"accountId":"600","userLink":"https://twitter.com/intent/user?user_id=600"}},
			{"muting":{"userLink":"https://twitter.com/intent/user?user_id="}}
		]`),
		archiveRoot + "screen-name-change.js": assigned("screenNameChange", `[
			{"screenNameChange":{"accountId":"100","screenNameChange":{"changedAt":"2023-01-01T00:00:00.000Z","changedFrom":"b","changedTo":"c"}}},
			{"screenNameChange":{"accountId":"100","screenNameChange":{"changedAt":"2021-01-01T00:00:00.000Z","changedFrom":"a","changedTo":"b"}}},
			{"screenNameChange":{"accountId":"100","screenNameChange":{"changedAt":"2022-01-01T00:00:00.000Z","changedFrom":"x"}}}
		]`),
		archiveRoot + "direct-messages.js": assigned("direct_messages", `[{"dmConversation":{"conversationId":"100-200","messages":[
			{"messageCreate":{"id":"m1","senderId":"200","recipientId":"100","text":"selam","createdAt":"2024-06-01T10:00:00.000Z",
				"mediaUrls":[],"urls":[],"reactions":[{"senderId":"100","reactionKey":"like","createdAt":"2024-06-01T10:05:00.000Z"}]}},
			{"messageCreate":{"id":"m2","senderId":"100","recipientId":"200","text":"https://t.co/x","createdAt":"2024-06-01T11:00:00.000Z",
				"mediaUrls":[],"urls":[{"url":"https://t.co/x","expanded":"https://example.com","display":"example.com"}]}},
			{"messageCreate":{"id":"m3","senderId":"100","recipientId":"200","text":"","createdAt":"2024-06-01T12:00:00.000Z",
				"mediaUrls":["https://ton.twitter.com/1.jpg"],"urls":[]}},
			{"joinConversation":{"initiatingUserId":"200"}}
		]}}]`),
		archiveRoot + "ip-audit.js": assigned("ipAudit", `[
			{"ipAudit":{"accountId":"100","createdAt":"2024-06-01T07:00:00.000Z","loginIp":"1.1.1.1"}},
			{"ipAudit":{"accountId":"100","createdAt":"2024-06-03T13:00:00.000Z","loginIp":"1.1.1.1"}},
			{"ipAudit":{"accountId":"100","loginIp":"2.2.2.2"}},
			{"ipAudit":{"accountId":"100","createdAt":"2024-06-04T13:00:00.000Z"}}
		]`),
		"twitter-2024/Your archive.html": "<html></html>",
	}
}

func newTestParser(logger *zap.Logger) *twitter.Parser {
	return twitter.NewParser(twitter.Options{
		Logger:   logger,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
}

func identityKeys(identities []relationships.Identity) []string {
	keys := make([]string, 0, len(identities))
	for _, identity := range identities {
		keys = append(keys, identity.Key)
	}
	return keys
}

func TestParseCompleteArchive(t *testing.T) {
	var progress []int
	result := newTestParser(nil).Parse(archive.FromContents(completeArchive()), func(percent int) {
		progress = append(progress, percent)
	})

	assert.Empty(t, result.Metadata.Errors)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, progress)

	require.NotNil(t, result.Account)
	assert.Equal(t, "ozge", result.Account.Username)
	assert.Equal(t, "Özge", result.Account.DisplayName)
	require.NotNil(t, result.Account.Age)
	assert.Equal(t, twitter.AccountAge{Years: 4, Months: 3, Days: 15, TotalDays: 1568}, *result.Account.Age)

	require.NotNil(t, result.Tweets)
	tweets := result.Tweets
	assert.Equal(t, 3, tweets.Total)
	assert.Equal(t, []frequency.Share{
		{Key: "Twitter for Android", Count: 2, Percentage: 66.7},
		{Key: "Twitter Web App", Count: 1, Percentage: 33.3},
	}, tweets.SourceDistribution)
	assert.Equal(t, []frequency.Entry{{Key: "golang", Count: 2}}, tweets.TopHashtags.Entries)
	assert.Equal(t, []frequency.Entry{{Key: "bob", Count: 2}, {Key: "alice", Count: 1}}, tweets.TopMentions.Entries)
	assert.Equal(t, []frequency.Entry{{Key: "tr", Count: 2}, {Key: "en", Count: 1}}, tweets.LanguageDistribution.Entries)
	assert.Equal(t, []activity.TimelinePoint{{Date: "2024-05", Count: 1}, {Date: "2024-06", Count: 2}}, tweets.Timeline)
	assert.Equal(t, twitter.TweetTypes{Original: 1, Replies: 1, Retweets: 1}, tweets.TweetTypes)
	require.Len(t, tweets.TopTweets, 2)
	assert.Equal(t, twitter.TopTweet{ID: "1", Text: "Merhaba #golang @bob", FavoriteCount: 10, RetweetCount: 2, Date: "2024-06-01"}, tweets.TopTweets[0])
	assert.Equal(t, "3", tweets.TopTweets[1].ID)
	assert.Equal(t, twitter.Engagement{TotalFavorites: 13, TotalRetweets: 8, AvgFavorites: 4.3, AvgRetweets: 2.7}, tweets.Engagement)
	require.NotNil(t, tweets.Activity)
	assert.Equal(t, activity.BucketEvening, tweets.Activity.Dominant.Bucket)

	require.NotNil(t, result.Likes)
	assert.Equal(t, 2, result.Likes.Total)
	assert.Equal(t, "güzel", result.Likes.RecentLikes[1].FullText)

	require.NotNil(t, result.Followers)
	assert.Equal(t, []string{"200"}, identityKeys(result.Followers.Mutuals))
	assert.Equal(t, []string{"400"}, identityKeys(result.Followers.NotFollowingBack))
	assert.Equal(t, []string{"300"}, identityKeys(result.Followers.YouDontFollow))
	assert.InDelta(t, 1.0, result.Followers.Stats.Ratio, 1e-9)

	require.NotNil(t, result.Interests)
	assert.Equal(t, []string{"Football", "Cooking", "Bitcoin crypto"}, result.Interests.Interests)
	assert.Equal(t, []string{"Spor", "İş & Finans", "Diğer"}, result.Interests.Categories.Names())
	assert.Equal(t, twitter.Demographics{Languages: []string{"Turkish"}, Gender: "female"}, result.Interests.Demographics)

	require.NotNil(t, result.Blocks)
	assert.Equal(t, []string{"500"}, identityKeys(result.Blocks.Accounts))
	require.NotNil(t, result.Mutes)
	assert.Equal(t, 1, result.Mutes.Total)

	require.NotNil(t, result.ScreenNameChanges)
	require.Len(t, result.ScreenNameChanges.History, 2)
	assert.Equal(t, "a", result.ScreenNameChanges.History[0].From)
	assert.Equal(t, "c", result.ScreenNameChanges.History[1].To)

	require.NotNil(t, result.DirectMessages)
	messages := result.DirectMessages
	assert.Equal(t, "100", messages.OwnerName)
	assert.False(t, messages.OwnerInferred)
	require.Len(t, messages.Conversations, 1)
	conversation := messages.Conversations[0]
	assert.Equal(t, "200", conversation.Partner)
	assert.Equal(t, 3, conversation.TotalMessages)
	assert.Equal(t, 2, conversation.Sent.Total)
	assert.Equal(t, 1, conversation.Sent.Shares)
	assert.Equal(t, 1, conversation.Sent.Media)
	assert.Equal(t, 1, conversation.Received.Text)
	assert.Equal(t, 1, conversation.ReactionsSent)
	assert.Equal(t, time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC), conversation.LastMessage)

	require.NotNil(t, result.IPAudit)
	assert.Equal(t, 3, result.IPAudit.Total)
	assert.Equal(t, 2, result.IPAudit.UniqueIPs)
	assert.Equal(t, frequency.Entry{Key: "1.1.1.1", Count: 2}, result.IPAudit.TopIPs.Entries[0])
	assert.Equal(t, 1, result.IPAudit.LoginsByHour[7])
	assert.Equal(t, 1, result.IPAudit.LoginsByHour[13])
	require.Len(t, result.IPAudit.RecentLogins, 3)
	assert.Equal(t, time.Date(2024, time.June, 3, 13, 0, 0, 0, time.UTC), result.IPAudit.RecentLogins[0].At)
	assert.Equal(t, "2.2.2.2", result.IPAudit.RecentLogins[2].IP)

	summary := twitter.Summarize(result)
	assert.Equal(t, "ozge", summary.Username)
	assert.Equal(t, 1568, summary.AccountAgeDays)
	assert.Equal(t, 3, summary.TotalTweets)
	assert.Equal(t, 2, summary.TotalLikes)
	assert.Equal(t, 1, summary.MutualsCount)
	assert.Equal(t, activity.BucketEvening, summary.DominantActivity)
	assert.Equal(t, 2, summary.MessagesSent)
	assert.Equal(t, 1, summary.MessagesReceived)
	assert.Len(t, summary.RecentLikes, 2)
	assert.Equal(t, []frequency.Entry{{Key: "golang", Count: 2}}, summary.TopHashtags)
}

func TestParseLegacyTweetFileAndMissingRelationships(t *testing.T) {
	files := archive.FromContents(map[string]string{
		archiveRoot + "tweet.js": assigned("tweet", `[{"tweet":{"id_str":"1","full_text":"hello","created_at":"Sat Jun 01 07:15:00 +0000 2024"}}]`),
		archiveRoot + "direct-messages.js": assigned("direct_messages", `[
			{"dmConversation":{"conversationId":"100-200","messages":[
				{"messageCreate":{"senderId":"100","text":"a","createdAt":"2024-06-01T10:00:00.000Z"}},
				{"messageCreate":{"senderId":"200","text":"b","createdAt":"2024-06-01T11:00:00.000Z"}}
			]}},
			{"dmConversation":{"conversationId":"100-300","messages":[
				{"messageCreate":{"senderId":"100","text":"c","createdAt":"2024-06-02T10:00:00.000Z"}}
			]}}
		]`),
	})

	result := newTestParser(nil).Parse(files, nil)

	require.NotNil(t, result.Tweets)
	assert.Equal(t, 1, result.Tweets.Total)
	assert.Equal(t, "Unknown", result.Tweets.Tweets[0].Source)

	assert.Nil(t, result.Followers)
	require.Len(t, result.Metadata.Errors, 2)
	assert.Equal(t, "follower.js", result.Metadata.Errors[0].Path)
	assert.Equal(t, "following.js", result.Metadata.Errors[1].Path)
	for _, fileError := range result.Metadata.Errors {
		assert.ErrorIs(t, fileError.Err, archive.ErrFileNotFound)
	}

	assert.Nil(t, result.Account)
	require.NotNil(t, result.DirectMessages)
	assert.Equal(t, "100", result.DirectMessages.OwnerName)
	assert.True(t, result.DirectMessages.OwnerInferred)
	assert.Equal(t, 3, result.DirectMessages.Totals.Messages)
}

func TestParseDiffsFollowersWithoutFollowingFile(t *testing.T) {
	files := archive.FromContents(map[string]string{
		archiveRoot + "follower.js": assigned("follower", `[
			{"follower":{"accountId":"200","userLink":"https://twitter.com/intent/user?user_id=200"}},
			{"follower":{"accountId":"300","userLink":"https://twitter.com/intent/user?user_id=300"}}
		]`),
	})

	result := newTestParser(nil).Parse(files, nil)

	require.NotNil(t, result.Followers)
	assert.Equal(t, []string{"200", "300"}, identityKeys(result.Followers.YouDontFollow))
	assert.Empty(t, result.Followers.Mutuals)
	assert.Empty(t, result.Followers.NotFollowingBack)
	assert.Equal(t, 2, result.Followers.Stats.Followers)
	assert.Equal(t, 0, result.Followers.Stats.Following)
	require.Len(t, result.Metadata.Errors, 1)
	assert.Equal(t, "following.js", result.Metadata.Errors[0].Path)
	assert.ErrorIs(t, result.Metadata.Errors[0].Err, archive.ErrFileNotFound)
	assert.Equal(t, 2, twitter.Summarize(result).YouDontFollowCount)
}

func TestParseRecordsBrokenFiles(t *testing.T) {
	core, observedLogs := observer.New(zapcore.WarnLevel)
	contents := completeArchive()
	contents[archiveRoot+"like.js"] = `[{"like":{"tweetId":"1"}}]`
	contents[archiveRoot+"tweets.js"] = assigned("tweets", `[{"tweet":{"id_str":"1","favorite_count":"many"}}]`)
	contents[archiveRoot+"account.js"] = assigned("account", `[]`)

	result := newTestParser(zap.New(core)).Parse(archive.FromContents(contents), nil)

	require.Len(t, result.Metadata.Errors, 3)
	assert.Equal(t, archiveRoot+"account.js", result.Metadata.Errors[0].Path)
	assert.ErrorIs(t, result.Metadata.Errors[0].Err, archive.ErrUnexpectedShape)
	assert.Equal(t, archiveRoot+"tweets.js", result.Metadata.Errors[1].Path)
	assert.ErrorIs(t, result.Metadata.Errors[1].Err, archive.ErrUnexpectedShape)
	assert.Equal(t, archiveRoot+"like.js", result.Metadata.Errors[2].Path)
	assert.ErrorIs(t, result.Metadata.Errors[2].Err, archive.ErrMissingAssignment)
	assert.Equal(t, 3, observedLogs.Len())

	assert.Nil(t, result.Account)
	assert.Nil(t, result.Tweets)
	assert.Nil(t, result.Likes)
	require.NotNil(t, result.DirectMessages)
	assert.True(t, result.DirectMessages.OwnerInferred)
	require.NotNil(t, result.IPAudit)
	assert.Equal(t, 3, twitter.Summarize(result).ErrorCount)
}

func TestCalculateAge(t *testing.T) {
	testCases := []struct {
		name     string
		created  time.Time
		now      time.Time
		expected twitter.AccountAge
	}{
		{
			name:     "same day",
			created:  time.Date(2024, time.June, 30, 8, 0, 0, 0, time.UTC),
			now:      time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC),
			expected: twitter.AccountAge{},
		},
		{
			name:     "month end does not overflow into a full month",
			created:  time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC),
			now:      time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
			expected: twitter.AccountAge{Days: 29, TotalDays: 29},
		},
		{
			name:     "borrows months from the previous year",
			created:  time.Date(2020, time.November, 10, 0, 0, 0, 0, time.UTC),
			now:      time.Date(2022, time.February, 10, 0, 0, 0, 0, time.UTC),
			expected: twitter.AccountAge{Years: 1, Months: 3, Days: 0, TotalDays: 457},
		},
		{
			name:     "creation in the future",
			created:  time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
			now:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			expected: twitter.AccountAge{},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, twitter.CalculateAge(testCase.created, testCase.now, time.UTC))
		})
	}
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "Twitter for iPhone", twitter.SourceName(`<a href="http://twitter.com/download/iphone" rel="nofollow">Twitter for iPhone</a>`))
	assert.Equal(t, "Unknown", twitter.SourceName(""))
	assert.Equal(t, "Unknown", twitter.SourceName("plain"))
}

func TestConversationParticipants(t *testing.T) {
	assert.Equal(t, []string{"100", "200"}, twitter.ConversationParticipants("100-200"))
	assert.Equal(t, []string{"100"}, twitter.ConversationParticipants("100-"))
	assert.Equal(t, []string{}, twitter.ConversationParticipants(""))
}

func TestSummarizeEmptyResult(t *testing.T) {
	summary := twitter.Summarize(twitter.Result{})
	assert.Equal(t, 0, summary.TotalTweets)
	assert.Equal(t, "", summary.Username)
	assert.NotNil(t, summary.RecentLikes)
	assert.NotNil(t, summary.TopHashtags)
}
