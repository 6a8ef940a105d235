package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/conversations"
	"github.com/f-sync/socialstats/internal/engine"
	"github.com/f-sync/socialstats/internal/frequency"
	"github.com/f-sync/socialstats/internal/instagram"
	"github.com/f-sync/socialstats/internal/twitter"
)

const (
	headerFormat          = "%s export"
	sourceFormat          = "source: %s"
	filesFormat           = "files: %d total, %d json, %d js"
	parsedAtFormat        = "parsed at: %s"
	parsedAtLayout        = "2006-01-02 15:04:05 MST"
	rowFormat             = "  %-26s %s\n"
	rankedRowFormat       = "  %2d. %s (%d)\n"
	conversationRowFormat = "  %2d. %s: %d messages, %d sent, %d received\n"
	errorRowFormat        = "  %s: %s\n"
	errorsHeadingFormat   = "Errors (%d)"
	ratioFormat           = "%.2f"
	percentFormat         = "%s (%d%%)"
	displayHandleFormat   = "%s (%s%s)"
	accountHandlePrefix   = "@"
	unknownLabelText      = "unknown"
	groupConversationMark = " [group]"
	accountAgeFormat      = "%dy %dm %dd"
	likeIndent            = "  "
	likeTextLimit         = 60
	ellipsis              = "..."
)

const (
	headingOverview          = "Overview"
	headingActivity          = "Activity"
	headingTopLikedAccounts  = "Top liked accounts"
	headingTopCommented      = "Top commented accounts"
	headingTopHashtags       = "Top hashtags"
	headingTopConversations  = "Top conversations"
	headingTopicCategories   = "Topic categories"
	headingInterestCategory  = "Interest categories"
	headingRecentLikes       = "Recent likes"
	labelAccount             = "Account"
	labelAccountAge          = "Account age"
	labelTweets              = "Tweets"
	labelFavorites           = "Favorites received"
	labelRetweets            = "Retweets received"
	labelLikes               = "Likes"
	labelLikedComments       = "Liked comments"
	labelComments            = "Comments"
	labelFollowers           = "Followers"
	labelFollowing           = "Following"
	labelMutuals             = "Mutuals"
	labelNotFollowingBack    = "Not following back"
	labelYouDontFollow       = "You don't follow"
	labelRecentFollowers     = "New followers (30 days)"
	labelRatio               = "Follower ratio"
	labelLogins              = "Logins"
	labelUniqueIPs           = "Unique login IPs"
	labelTopics              = "Recommended topics"
	labelInterests           = "Interests"
	labelSavedPosts          = "Saved posts"
	labelConversations       = "Conversations"
	labelMessagesSent        = "Messages sent"
	labelMessagesReceived    = "Messages received"
	labelCloseFriends        = "Close friends"
	labelUnfollowed          = "Recently unfollowed"
	labelSearches            = "Searches"
	labelStoryLikes          = "Story likes"
	labelBlocks              = "Blocked accounts"
	labelMutes               = "Muted accounts"
	labelScreenNameChanges   = "Screen name changes"
	labelDominantActivity    = "Most active part of day"
	labelSecondaryActivity   = "Second most active"
	labelMostActiveDay       = "Most active day"
	labelMostActiveHour      = "Most active hour"
	labelWeekdayWeekend      = "Weekday / weekend"
	weekdayWeekendFormat     = "%d%% / %d%%"
	mostActiveHourFormat     = "%02d:00"
	conversationsListedLimit = 5
)

type textWriter struct {
	builder strings.Builder
	heading *color.Color
	value   *color.Color
	warning *color.Color
}

func newTextWriter(options Options) *textWriter {
	writer := &textWriter{
		heading: color.New(color.FgCyan, color.Bold),
		value:   color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
	}
	for _, palette := range []*color.Color{writer.heading, writer.value, writer.warning} {
		if options.Color {
			palette.EnableColor()
		} else {
			palette.DisableColor()
		}
	}
	return writer
}

// WriteText renders a human readable summary of report.
func WriteText(writer io.Writer, report engine.Report, options Options) error {
	text := newTextWriter(options)
	text.header(report, options.Source)
	switch {
	case report.Instagram != nil && report.InstagramSummary != nil:
		text.instagram(*report.Instagram, *report.InstagramSummary)
	case report.Twitter != nil && report.TwitterSummary != nil:
		text.twitter(*report.Twitter, *report.TwitterSummary)
	}
	text.errors(report)
	_, err := io.WriteString(writer, text.builder.String())
	return err
}

func (text *textWriter) header(report engine.Report, source string) {
	platform := string(report.Platform)
	if report.Platform == archive.PlatformUnknown {
		platform = unknownLabelText
	}
	text.line(text.heading.Sprintf(headerFormat, platform))
	if source != "" {
		text.line(fmt.Sprintf(sourceFormat, source))
	}
	text.line(fmt.Sprintf(filesFormat, report.Stats.TotalFiles, report.Stats.JSONFiles, report.Stats.ScriptFiles))
	metadata := report.Metadata()
	if !metadata.ParsedAt.IsZero() {
		text.line(fmt.Sprintf(parsedAtFormat, metadata.ParsedAt.Format(parsedAtLayout)))
	}
}

func (text *textWriter) instagram(result instagram.Result, summary instagram.Summary) {
	text.section(headingOverview)
	text.row(labelLikes, strconv.Itoa(summary.TotalLikes))
	text.row(labelLikedComments, strconv.Itoa(summary.TotalLikedComments))
	text.row(labelComments, strconv.Itoa(summary.TotalComments))
	text.relationshipRows(summary.FollowersCount, summary.FollowingCount, summary.MutualsCount, summary.NotFollowingBackCount, summary.YouDontFollowCount, summary.Ratio)
	text.row(labelRecentFollowers, strconv.Itoa(summary.RecentFollowersCount))
	text.row(labelCloseFriends, strconv.Itoa(summary.CloseFriendsCount))
	text.row(labelUnfollowed, strconv.Itoa(summary.UnfollowedCount))
	text.row(labelLogins, strconv.Itoa(summary.LoginCount))
	text.row(labelUniqueIPs, strconv.Itoa(summary.UniqueLoginIPs))
	text.row(labelTopics, strconv.Itoa(summary.TopicCount))
	text.row(labelSavedPosts, strconv.Itoa(summary.SavedPostCount))
	text.row(labelSearches, strconv.Itoa(summary.SearchCount))
	text.row(labelStoryLikes, strconv.Itoa(summary.StoryLikeCount))
	text.row(labelConversations, strconv.Itoa(summary.ConversationCount))
	text.row(labelMessagesSent, strconv.Itoa(summary.MessagesSent))
	text.row(labelMessagesReceived, strconv.Itoa(summary.MessagesReceived))

	text.activity(result.Activity)
	text.ranking(headingTopLikedAccounts, summary.TopLikedAccounts)
	text.ranking(headingTopCommented, summary.TopCommentedAccounts)
	if result.Topics != nil {
		text.categories(headingTopicCategories, result.Topics.Categories)
	}
	text.conversations(result.Messages)
}

func (text *textWriter) twitter(result twitter.Result, summary twitter.Summary) {
	text.section(headingOverview)
	if result.Account != nil {
		text.row(labelAccount, identityLabel(summary.DisplayName, summary.Username))
		if result.Account.Age != nil {
			age := result.Account.Age
			text.row(labelAccountAge, fmt.Sprintf(accountAgeFormat, age.Years, age.Months, age.Days))
		}
	}
	text.row(labelTweets, strconv.Itoa(summary.TotalTweets))
	text.row(labelFavorites, strconv.Itoa(summary.TotalFavorites))
	text.row(labelRetweets, strconv.Itoa(summary.TotalRetweets))
	text.row(labelLikes, strconv.Itoa(summary.TotalLikes))
	text.relationshipRows(summary.FollowersCount, summary.FollowingCount, summary.MutualsCount, summary.NotFollowingBackCount, summary.YouDontFollowCount, summary.Ratio)
	text.row(labelInterests, strconv.Itoa(summary.InterestCount))
	text.row(labelBlocks, strconv.Itoa(summary.BlockCount))
	text.row(labelMutes, strconv.Itoa(summary.MuteCount))
	text.row(labelScreenNameChanges, strconv.Itoa(summary.ScreenNameChangeCount))
	text.row(labelLogins, strconv.Itoa(summary.LoginCount))
	text.row(labelUniqueIPs, strconv.Itoa(summary.UniqueLoginIPs))
	text.row(labelConversations, strconv.Itoa(summary.ConversationCount))
	text.row(labelMessagesSent, strconv.Itoa(summary.MessagesSent))
	text.row(labelMessagesReceived, strconv.Itoa(summary.MessagesReceived))

	if result.Tweets != nil {
		text.activity(result.Tweets.Activity)
	}
	text.ranking(headingTopHashtags, summary.TopHashtags)
	if len(summary.RecentLikes) > 0 {
		text.section(headingRecentLikes)
		for _, like := range summary.RecentLikes {
			text.line(likeIndent + likeLabel(like))
		}
	}
	if result.Interests != nil {
		text.categories(headingInterestCategory, result.Interests.Categories)
	}
	text.conversations(result.DirectMessages)
}

func (text *textWriter) relationshipRows(followers, following, mutuals, notFollowingBack, youDontFollow int, ratio float64) {
	text.row(labelFollowers, strconv.Itoa(followers))
	text.row(labelFollowing, strconv.Itoa(following))
	text.row(labelMutuals, strconv.Itoa(mutuals))
	text.row(labelNotFollowingBack, strconv.Itoa(notFollowingBack))
	text.row(labelYouDontFollow, strconv.Itoa(youDontFollow))
	text.row(labelRatio, fmt.Sprintf(ratioFormat, ratio))
}

func (text *textWriter) activity(profile *activity.Profile) {
	if profile == nil || profile.Total == 0 {
		return
	}
	text.section(headingActivity)
	text.row(labelDominantActivity, fmt.Sprintf(percentFormat, profile.Dominant.Bucket, profile.Dominant.Percentage))
	text.row(labelSecondaryActivity, fmt.Sprintf(percentFormat, profile.Secondary.Bucket, profile.Secondary.Percentage))
	text.row(labelMostActiveDay, profile.MostActiveDay)
	text.row(labelMostActiveHour, fmt.Sprintf(mostActiveHourFormat, profile.MostActiveHour))
	text.row(labelWeekdayWeekend, fmt.Sprintf(weekdayWeekendFormat, profile.WeekdayVsWeekend.Weekday, profile.WeekdayVsWeekend.Weekend))
}

func (text *textWriter) ranking(heading string, entries []frequency.Entry) {
	if len(entries) == 0 {
		return
	}
	text.section(heading)
	for index, entry := range entries {
		text.builder.WriteString(fmt.Sprintf(rankedRowFormat, index+1, entry.Key, entry.Count))
	}
}

func (text *textWriter) categories(heading string, result categorize.Result) {
	if len(result) == 0 {
		return
	}
	text.section(heading)
	for _, category := range result {
		text.row(category.Name, strconv.Itoa(len(category.Labels)))
	}
}

func (text *textWriter) conversations(summary *conversations.Summary) {
	if summary == nil || len(summary.TopByTotal) == 0 {
		return
	}
	text.section(headingTopConversations)
	for index, conversation := range summary.TopByTotal {
		if index == conversationsListedLimit {
			break
		}
		partner := conversation.Partner
		if conversation.Group {
			partner += groupConversationMark
		}
		text.builder.WriteString(fmt.Sprintf(conversationRowFormat, index+1, partner, conversation.TotalMessages, conversation.Sent.Total, conversation.Received.Total))
	}
}

func (text *textWriter) errors(report engine.Report) {
	fileErrors := report.Metadata().Errors
	if len(fileErrors) == 0 {
		return
	}
	text.line("")
	text.line(text.warning.Sprintf(errorsHeadingFormat, len(fileErrors)))
	for _, fileError := range fileErrors {
		text.builder.WriteString(fmt.Sprintf(errorRowFormat, fileError.Path, fileError.Error))
	}
}

func (text *textWriter) section(heading string) {
	text.line("")
	text.line(text.heading.Sprint(heading))
}

func (text *textWriter) row(label string, value string) {
	text.builder.WriteString(fmt.Sprintf(rowFormat, label, text.value.Sprint(value)))
}

func (text *textWriter) line(content string) {
	text.builder.WriteString(content)
	text.builder.WriteByte('\n')
}

func likeLabel(like twitter.Like) string {
	text := strings.Join(strings.Fields(like.FullText), " ")
	if text == "" {
		if like.URL != "" {
			return like.URL
		}
		return like.TweetID
	}
	runes := []rune(text)
	if len(runes) > likeTextLimit {
		return string(runes[:likeTextLimit]) + ellipsis
	}
	return text
}

// identityLabel joins a display name and handle, falling back to whichever is present.
func identityLabel(displayName string, userName string) string {
	trimmedDisplayName := strings.TrimSpace(displayName)
	trimmedUserName := strings.TrimSpace(userName)
	switch {
	case trimmedDisplayName != "" && trimmedUserName != "":
		return fmt.Sprintf(displayHandleFormat, trimmedDisplayName, accountHandlePrefix, trimmedUserName)
	case trimmedDisplayName != "":
		return trimmedDisplayName
	case trimmedUserName != "":
		return accountHandlePrefix + trimmedUserName
	default:
		return unknownLabelText
	}
}
