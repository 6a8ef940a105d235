// Package twitter parses a Twitter/X archive into dataset results. Every data file is a
// JavaScript assignment such as "window.YTD.tweets.part0 = [...]".
package twitter

import (
	"time"

	"go.uber.org/zap"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/conversations"
	"github.com/f-sync/socialstats/internal/pipeline"
	"github.com/f-sync/socialstats/internal/relationships"
)

const (
	fileAccount          = "account.js"
	fileTweets           = "tweets.js"
	fileTweetsLegacy     = "tweet.js"
	fileLikes            = "like.js"
	fileFollowers        = "follower.js"
	fileFollowing        = "following.js"
	filePersonalization  = "personalization.js"
	fileBlocks           = "block.js"
	fileScreenNameChange = "screen-name-change.js"
	fileMutes            = "mute.js"
	fileDirectMessages   = "direct-messages.js"
	fileIPAudit          = "ip-audit.js"

	stepAccount          = "account"
	stepTweets           = "tweets"
	stepLikes            = "likes"
	stepFollowers        = "followers and following"
	stepPersonalization  = "personalization"
	stepBlocks           = "blocks"
	stepScreenNameChange = "screen name changes"
	stepMutes            = "mutes"
	stepDirectMessages   = "direct messages"
	stepIPAudit          = "ip audit"
	logMessageParsing    = "parsing twitter archive"
	logMessageParsed     = "parsed twitter archive"
	logFieldFileCount    = "files"
	logFieldErrorCount   = "errors"
)

// Options configures a Parser. Zero values select defaults: a no-op logger, the local time zone,
// conversations.DefaultTopN, time.Now and the built-in interest table.
type Options struct {
	Logger    *zap.Logger
	Location  *time.Location
	TopN      int
	Now       func() time.Time
	Interests *categorize.Table
}

// Parser turns Twitter/X archive files into a Result.
type Parser struct {
	logger    *zap.Logger
	location  *time.Location
	topN      int
	now       func() time.Time
	interests categorize.Table
}

// Result holds one optional sub-result per dataset. A nil field means the dataset was absent or
// could not be read; failures are listed in Metadata.Errors.
type Result struct {
	Account           *AccountResult           `json:"account"`
	Tweets            *TweetsResult            `json:"tweets"`
	Likes             *LikesResult             `json:"likes"`
	Followers         *relationships.Result    `json:"followers"`
	Interests         *InterestsResult         `json:"interests"`
	Blocks            *IdentityListResult      `json:"blocks"`
	ScreenNameChanges *ScreenNameChangesResult `json:"screenNameChanges"`
	Mutes             *IdentityListResult      `json:"mutes"`
	DirectMessages    *conversations.Summary   `json:"directMessages"`
	IPAudit           *IPAuditResult           `json:"ipAudit"`
	Metadata          pipeline.Metadata        `json:"metadata"`
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
	if options.Interests != nil {
		parser.interests = *options.Interests
	} else {
		parser.interests = categorize.TwitterInterests()
	}
	return parser
}

// Parse runs every dataset step in order. Missing or broken files never abort the run.
func (parser *Parser) Parse(files archive.FileSet, onProgress pipeline.ProgressFunc) Result {
	parser.logger.Info(logMessageParsing, zap.Int(logFieldFileCount, len(files)))
	collector := pipeline.NewCollector(files, parser.logger)
	result := Result{}

	steps := []pipeline.Step{
		{Name: stepAccount, Run: func() {
			result.Account = pipeline.Load(collector, fileAccount, archive.DecodeAssignedJSON, parser.buildAccount)
		}},
		{Name: stepTweets, Run: func() {
			result.Tweets = pipeline.Load(collector, tweetsFileName(files), archive.DecodeAssignedJSON, parser.buildTweets)
		}},
		{Name: stepLikes, Run: func() {
			result.Likes = pipeline.Load(collector, fileLikes, archive.DecodeAssignedJSON, buildLikes)
		}},
		{Name: stepFollowers, Run: func() {
			result.Followers = loadFollowers(collector)
		}},
		{Name: stepPersonalization, Run: func() {
			result.Interests = pipeline.Load(collector, filePersonalization, archive.DecodeAssignedJSON, parser.buildInterests)
		}},
		{Name: stepBlocks, Run: func() {
			result.Blocks = pipeline.Load(collector, fileBlocks, archive.DecodeAssignedJSON, buildBlocks)
		}},
		{Name: stepScreenNameChange, Run: func() {
			result.ScreenNameChanges = pipeline.Load(collector, fileScreenNameChange, archive.DecodeAssignedJSON, buildScreenNameChanges)
		}},
		{Name: stepMutes, Run: func() {
			result.Mutes = pipeline.Load(collector, fileMutes, archive.DecodeAssignedJSON, buildMutes)
		}},
		{Name: stepDirectMessages, Run: func() {
			result.DirectMessages = parser.loadDirectMessages(collector, result.Account)
		}},
		{Name: stepIPAudit, Run: func() {
			result.IPAudit = pipeline.Load(collector, fileIPAudit, archive.DecodeAssignedJSON, parser.buildIPAudit)
		}},
	}
	pipeline.Run(parser.logger, steps, onProgress)

	result.Metadata = collector.Metadata(parser.now())
	parser.logger.Info(logMessageParsed, zap.Int(logFieldErrorCount, len(result.Metadata.Errors)))
	return result
}

// tweetsFileName prefers tweets.js and falls back to the tweet.js name used by newer archives.
func tweetsFileName(files archive.FileSet) string {
	if _, _, found := archive.Resolve(files, fileTweets); found {
		return fileTweets
	}
	return fileTweetsLegacy
}

// loadFollowers diffs whichever relationship files were read, treating a missing one as empty.
// Accounts are compared by their opaque account id.
func loadFollowers(collector *pipeline.Collector) *relationships.Result {
	followerItems, _, followersFound := pipeline.DecodeRequired[[]followerItem](collector, fileFollowers, archive.DecodeAssignedJSON)
	followingItems, _, followingFound := pipeline.DecodeRequired[[]followingItem](collector, fileFollowing, archive.DecodeAssignedJSON)
	if !followersFound && !followingFound {
		return nil
	}

	followers := make([]relationships.Identity, 0, len(followerItems))
	for _, item := range followerItems {
		followers = append(followers, identityFromLink(item.Follower))
	}
	following := make([]relationships.Identity, 0, len(followingItems))
	for _, item := range followingItems {
		following = append(following, identityFromLink(item.Following))
	}
	diff := relationships.Diff(followers, following, relationships.AccountIDKey)
	return &diff
}

// loadDirectMessages pins the conversation owner to the archive account when account.js was read.
func (parser *Parser) loadDirectMessages(collector *pipeline.Collector, account *AccountResult) *conversations.Summary {
	items, _, found := pipeline.Decode[[]dmConversationItem](collector, fileDirectMessages, archive.DecodeAssignedJSON)
	if !found {
		return nil
	}
	options := conversations.Options{TopN: parser.topN}
	if account != nil {
		options.Owner = account.AccountID
	}
	return conversations.Analyze(dmThreads(items), options)
}
