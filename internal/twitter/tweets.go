package twitter

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/frequency"
	"github.com/f-sync/socialstats/internal/textfix"
)

const (
	sourcePattern      = `>([^<]+)<`
	unknownSource      = "Unknown"
	retweetPrefix      = "RT @"
	tweetDateLayout    = time.RubyDate
	topTweetDateLayout = "2006-01-02"
	topHashtagsLimit   = 20
	topMentionsLimit   = 20
	topLanguagesLimit  = 5
	topTweetsLimit     = 10
	averagePrecision   = 10
	recentLikesLimit   = 50
	tweetActivityActor = "self"
)

var reTweetSource = regexp.MustCompile(sourcePattern)

// Mention is a user mentioned in a tweet.
type Mention struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// Tweet is one authored tweet, retweet or reply.
type Tweet struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	FavoriteCount int       `json:"favoriteCount"`
	RetweetCount  int       `json:"retweetCount"`
	Language      string    `json:"language,omitempty"`
	IsReply       bool      `json:"isReply"`
	IsRetweet     bool      `json:"isRetweet"`
	Hashtags      []string  `json:"hashtags"`
	Mentions      []Mention `json:"mentions"`
}

// TweetTypes splits tweets into originals, replies and retweets. A retweet that is also a reply
// counts in both Replies and Retweets.
type TweetTypes struct {
	Original int `json:"original"`
	Replies  int `json:"replies"`
	Retweets int `json:"retweets"`
}

// TopTweet is a tweet ranked by favorites plus retweets.
type TopTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	FavoriteCount int    `json:"favoriteCount"`
	RetweetCount  int    `json:"retweetCount"`
	Date          string `json:"date,omitempty"`
}

// Engagement totals and per-tweet averages, rounded to one decimal.
type Engagement struct {
	TotalFavorites int     `json:"totalFavorites"`
	TotalRetweets  int     `json:"totalRetweets"`
	AvgFavorites   float64 `json:"avgFavorites"`
	AvgRetweets    float64 `json:"avgRetweets"`
}

// TweetsResult holds the tweets together with their analytics.
type TweetsResult struct {
	Total                int                      `json:"total"`
	Tweets               []Tweet                  `json:"tweets"`
	SourceDistribution   []frequency.Share        `json:"sourceDistribution"`
	TopHashtags          frequency.Table          `json:"topHashtags"`
	TopMentions          frequency.Table          `json:"topMentions"`
	LanguageDistribution frequency.Table          `json:"languageDistribution"`
	Timeline             []activity.TimelinePoint `json:"timeline"`
	TweetTypes           TweetTypes               `json:"tweetTypes"`
	TopTweets            []TopTweet               `json:"topTweets"`
	Engagement           Engagement               `json:"engagement"`
	Activity             *activity.Profile        `json:"activity"`
}

// Like is one liked tweet. The export carries no author for likes.
type Like struct {
	TweetID  string `json:"tweetId,omitempty"`
	FullText string `json:"fullText,omitempty"`
	URL      string `json:"url,omitempty"`
}

// LikesResult lists liked tweets; RecentLikes keeps the export order, newest first.
type LikesResult struct {
	Total       int    `json:"total"`
	Likes       []Like `json:"likes"`
	RecentLikes []Like `json:"recentLikes"`
}

// SourceName extracts the client name from a tweet source anchor such as
// `<a href="...">Twitter for Android</a>`.
func SourceName(source string) string {
	if match := reTweetSource.FindStringSubmatch(source); match != nil {
		return match[1]
	}
	return unknownSource
}

func parseTime(layout string, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func convertTweet(document tweetDocument) Tweet {
	text := textfix.Repair(document.FullText)
	tweet := Tweet{
		ID:            document.IDStr,
		Text:          text,
		Source:        SourceName(document.Source),
		CreatedAt:     parseTime(tweetDateLayout, document.CreatedAt),
		FavoriteCount: int(document.FavoriteCount),
		RetweetCount:  int(document.RetweetCount),
		Language:      document.Lang,
		IsReply:       document.InReplyToStatusID != "",
		IsRetweet:     strings.HasPrefix(text, retweetPrefix),
		Hashtags:      []string{},
		Mentions:      []Mention{},
	}
	for _, hashtag := range document.Entities.Hashtags {
		tweet.Hashtags = append(tweet.Hashtags, hashtag.Text)
	}
	for _, mention := range document.Entities.UserMentions {
		tweet.Mentions = append(tweet.Mentions, Mention{Username: mention.ScreenName, Name: mention.Name})
	}
	return tweet
}

func (parser *Parser) buildTweets(items []tweetItem) (TweetsResult, error) {
	tweets := make([]Tweet, 0, len(items))
	for _, item := range items {
		tweets = append(tweets, convertTweet(item.document()))
	}

	sources := make([]string, 0, len(tweets))
	hashtags := []string{}
	mentions := []string{}
	languages := []string{}
	events := make([]activity.Event, 0, len(tweets))
	types := TweetTypes{}
	engagement := Engagement{}
	for _, tweet := range tweets {
		sources = append(sources, tweet.Source)
		hashtags = append(hashtags, tweet.Hashtags...)
		for _, mention := range tweet.Mentions {
			mentions = append(mentions, mention.Username)
		}
		if tweet.Language != "" {
			languages = append(languages, tweet.Language)
		}
		events = append(events, activity.Event{Actor: tweetActivityActor, At: tweet.CreatedAt})
		if tweet.IsReply {
			types.Replies++
		}
		if tweet.IsRetweet {
			types.Retweets++
		}
		if !tweet.IsReply && !tweet.IsRetweet {
			types.Original++
		}
		engagement.TotalFavorites += tweet.FavoriteCount
		engagement.TotalRetweets += tweet.RetweetCount
	}
	engagement.AvgFavorites = average(engagement.TotalFavorites, len(tweets))
	engagement.AvgRetweets = average(engagement.TotalRetweets, len(tweets))

	return TweetsResult{
		Total:                len(tweets),
		Tweets:               tweets,
		SourceDistribution:   frequency.Rank(sources, 0).Distribution(),
		TopHashtags:          frequency.Rank(hashtags, topHashtagsLimit),
		TopMentions:          frequency.Rank(mentions, topMentionsLimit),
		LanguageDistribution: frequency.Rank(languages, topLanguagesLimit),
		Timeline:             activity.Timeline(events, parser.location, activity.Month),
		TweetTypes:           types,
		TopTweets:            parser.topTweets(tweets),
		Engagement:           engagement,
		Activity:             activity.Analyze(events, parser.location),
	}, nil
}

// topTweets ranks non-retweets by favorites plus retweets; ties keep export order.
func (parser *Parser) topTweets(tweets []Tweet) []TopTweet {
	candidates := []Tweet{}
	for _, tweet := range tweets {
		if !tweet.IsRetweet {
			candidates = append(candidates, tweet)
		}
	}
	sort.SliceStable(candidates, func(firstIndex, secondIndex int) bool {
		first := candidates[firstIndex]
		second := candidates[secondIndex]
		return first.FavoriteCount+first.RetweetCount > second.FavoriteCount+second.RetweetCount
	})
	if len(candidates) > topTweetsLimit {
		candidates = candidates[:topTweetsLimit]
	}

	top := make([]TopTweet, 0, len(candidates))
	for _, tweet := range candidates {
		topTweet := TopTweet{
			ID:            tweet.ID,
			Text:          tweet.Text,
			FavoriteCount: tweet.FavoriteCount,
			RetweetCount:  tweet.RetweetCount,
		}
		if !tweet.CreatedAt.IsZero() {
			topTweet.Date = tweet.CreatedAt.In(parser.location).Format(topTweetDateLayout)
		}
		top = append(top, topTweet)
	}
	return top
}

func average(total int, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(count)*averagePrecision) / averagePrecision
}

func buildLikes(items []likeItem) (LikesResult, error) {
	likes := make([]Like, 0, len(items))
	for _, item := range items {
		likes = append(likes, Like{
			TweetID:  item.Like.TweetID,
			FullText: textfix.Repair(item.Like.FullText),
			URL:      item.Like.ExpandedURL,
		})
	}
	recent := likes
	if len(recent) > recentLikesLimit {
		recent = recent[:recentLikesLimit]
	}
	return LikesResult{Total: len(likes), Likes: likes, RecentLikes: recent}, nil
}
