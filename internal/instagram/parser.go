// Package instagram parses an Instagram "download your information" export into dataset results.
package instagram

import (
	"time"

	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/conversations"
	"github.com/f-sync/socialstats/internal/pipeline"
	"github.com/f-sync/socialstats/internal/relationships"
)

const (
	fileLikedPosts     = "liked_posts.json"
	fileLikedComments  = "liked_comments.json"
	fileFollowers      = "followers_1.json"
	fileFollowing      = "following.json"
	filePostComments   = "post_comments_1.json"
	fileReelsComments  = "reels_comments.json"
	fileLoginActivity  = "login_activity.json"
	fileTopics         = "recommended_topics.json"
	fileSavedPosts     = "saved_posts.json"
	fileCloseFriends   = "close_friends.json"
	fileUnfollowed     = "recently_unfollowed_profiles.json"
	fileSearches       = "word_or_phrase_searches.json"
	fileStoryLikes     = "story_likes.json"
	recentFollowerDays = 30

	stepLikedPosts     = "liked posts"
	stepLikedComments  = "liked comments"
	stepFollowers      = "followers and following"
	stepPostComments   = "post comments"
	stepReelsComments  = "reels comments"
	stepActivity       = "activity profile"
	stepLoginActivity  = "login activity"
	stepTopics         = "recommended topics"
	stepSavedPosts     = "saved posts"
	stepMessages       = "direct messages"
	stepCloseFriends   = "close friends"
	stepUnfollowed     = "recently unfollowed"
	stepSearches       = "searches"
	stepStoryLikes     = "story likes"
	logMessageParsing  = "parsing instagram export"
	logMessageParsed   = "parsed instagram export"
	logFieldFileCount  = "files"
	logFieldErrorCount = "errors"
)

// Options configures a Parser. Zero values select defaults: a no-op logger, the local time zone,
// conversations.DefaultTopN, time.Now and the built-in topic table.
type Options struct {
	Logger   *zap.Logger
	Location *time.Location
	TopN     int
	Now      func() time.Time
	Topics   *categorize.Table
}

// Parser turns Instagram export files into a Result.
type Parser struct {
	logger   *zap.Logger
	location *time.Location
	topN     int
	now      func() time.Time
	topics   categorize.Table
}

// Result holds one optional sub-result per dataset. A nil field means the dataset was absent or
// could not be read; failures are listed in Metadata.Errors.
type Result struct {
	Likes              *LikesResult           `json:"likes"`
	LikedComments      *LikedCommentsResult   `json:"likedComments"`
	Followers          *FollowersResult       `json:"followers"`
	Comments           *CommentsResult        `json:"comments"`
	ReelsComments      *CommentsResult        `json:"reelsComments"`
	Activity           *activity.Profile      `json:"activity"`
	LoginActivity      *LoginActivityResult   `json:"loginActivity"`
	Topics             *TopicsResult          `json:"topics"`
	SavedPosts         *SavedPostsResult      `json:"savedPosts"`
	Messages           *conversations.Summary `json:"messages"`
	CloseFriends       *ProfileListResult     `json:"closeFriends"`
	RecentlyUnfollowed *ProfileListResult     `json:"recentlyUnfollowed"`
	Searches           *SearchesResult        `json:"searches"`
	StoryLikes         *StoryLikesResult      `json:"storyLikes"`
	Metadata           pipeline.Metadata      `json:"metadata"`
}

// NewParser builds a Parser from options.
func NewParser(options Options) *Parser {
	parser := &Parser{
		logger:   options.Logger,
		location: options.Location,
		topN:     options.TopN,
		now:      options.Now,
	}
	if parser.logger == nil {
		parser.logger = zap.NewNop()
	}
	if parser.location == nil {
		parser.location = time.Local
	}
	if parser.topN <= 0 {
		parser.topN = conversations.DefaultTopN
	}
	if parser.now == nil {
		parser.now = time.Now
	}
	if options.Topics != nil {
		parser.topics = *options.Topics
	} else {
		parser.topics = categorize.InstagramTopics()
	}
	return parser
}

// Parse runs every dataset step in order. Missing or broken files never abort the run.
func (parser *Parser) Parse(files archive.FileSet, onProgress pipeline.ProgressFunc) Result {
	parser.logger.Info(logMessageParsing, zap.Int(logFieldFileCount, len(files)))
	collector := pipeline.NewCollector(files, parser.logger)
	result := Result{}

	steps := []pipeline.Step{
		{Name: stepLikedPosts, Run: func() {
			result.Likes = pipeline.Load(collector, fileLikedPosts, archive.DecodeJSON, parser.buildLikes)
		}},
		{Name: stepLikedComments, Run: func() {
			result.LikedComments = pipeline.Load(collector, fileLikedComments, archive.DecodeJSON, buildLikedComments)
		}},
		{Name: stepFollowers, Run: func() {
			result.Followers = parser.loadFollowers(collector)
		}},
		{Name: stepPostComments, Run: func() {
			result.Comments = pipeline.Load(collector, filePostComments, archive.DecodeJSON, parser.buildPostComments)
		}},
		{Name: stepReelsComments, Run: func() {
			result.ReelsComments = pipeline.Load(collector, fileReelsComments, archive.DecodeJSON, parser.buildReelsComments)
		}},
		{Name: stepActivity, Run: func() {
			result.Activity = parser.activityProfile(result)
		}},
		{Name: stepLoginActivity, Run: func() {
			result.LoginActivity = pipeline.Load(collector, fileLoginActivity, archive.DecodeJSON, parser.buildLoginActivity)
		}},
		{Name: stepTopics, Run: func() {
			result.Topics = pipeline.Load(collector, fileTopics, archive.DecodeJSON, parser.buildTopics)
		}},
		{Name: stepSavedPosts, Run: func() {
			result.SavedPosts = pipeline.Load(collector, fileSavedPosts, archive.DecodeJSON, buildSavedPosts)
		}},
		{Name: stepMessages, Run: func() {
			if threads, found := loadThreads(collector); found {
				result.Messages = conversations.Analyze(threads, conversations.Options{TopN: parser.topN})
			}
		}},
		{Name: stepCloseFriends, Run: func() {
			result.CloseFriends = pipeline.Load(collector, fileCloseFriends, archive.DecodeJSON, buildCloseFriends)
		}},
		{Name: stepUnfollowed, Run: func() {
			result.RecentlyUnfollowed = pipeline.Load(collector, fileUnfollowed, archive.DecodeJSON, buildUnfollowed)
		}},
		{Name: stepSearches, Run: func() {
			result.Searches = pipeline.Load(collector, fileSearches, archive.DecodeJSON, buildSearches)
		}},
		{Name: stepStoryLikes, Run: func() {
			result.StoryLikes = pipeline.Load(collector, fileStoryLikes, archive.DecodeJSON, buildStoryLikes)
		}},
	}
	pipeline.Run(parser.logger, steps, onProgress)

	result.Metadata = collector.Metadata(parser.now())
	parser.logger.Info(logMessageParsed, zap.Int(logFieldErrorCount, len(result.Metadata.Errors)))
	return result
}

// loadFollowers records each missing relationship file as an error and diffs the side that was read
// against an empty list. Only an export without either side yields nil.
func (parser *Parser) loadFollowers(collector *pipeline.Collector) *FollowersResult {
	followerItems, _, followersFound := pipeline.DecodeRequired[[]listItem](collector, fileFollowers, archive.DecodeJSON)
	followingData, followingPath, followingFound := pipeline.DecodeRequired[followingDocument](collector, fileFollowing, archive.DecodeJSON)
	if followingFound && followingData.Items == nil {
		collector.Record(followingPath, archive.MissingKey(keyFollowing))
		followingFound = false
	}
	if !followersFound && !followingFound {
		return nil
	}

	followers := followerIdentities(followerItems)
	following := []relationships.Identity{}
	if followingFound {
		following = followingIdentities(*followingData.Items)
	}
	cutoff := parser.now().AddDate(0, 0, -recentFollowerDays)
	return &FollowersResult{
		Result:          relationships.Diff(followers, following, relationships.UsernameKey),
		RecentFollowers: relationships.RecentSince(followers, cutoff),
	}
}

func (parser *Parser) activityProfile(result Result) *activity.Profile {
	var events []activity.Event
	if result.Likes != nil {
		events = append(events, likeEvents(result.Likes.Likes)...)
	}
	events = append(events, commentEvents(result.Comments)...)
	events = append(events, commentEvents(result.ReelsComments)...)
	return activity.Analyze(events, parser.location)
}
