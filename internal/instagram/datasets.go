package instagram

import (
	"sort"
	"strings"
	"time"

	"github.com/f-sync/socialstats/internal/activity"
	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/categorize"
	"github.com/f-sync/socialstats/internal/frequency"
	"github.com/f-sync/socialstats/internal/relationships"
	"github.com/f-sync/socialstats/internal/textfix"
)

const (
	keyLikedPosts     = "likes_media_likes"
	keyLikedComments  = "likes_comment_likes"
	keyFollowing      = "relationships_following"
	keyCloseFriends   = "relationships_close_friends"
	keyUnfollowed     = "relationships_unfollowed_users"
	keyStoryLikes     = "story_activities_story_likes"
	keyLoginHistory   = "account_history_login_history"
	keyTopics         = "topics_your_topics"
	keySavedMedia     = "saved_saved_media"
	keySearches       = "searches_keyword"
	keyReelsComments  = "comments_reels_comments"
	keyThreadMessages = "messages"

	fieldComment       = "Comment"
	fieldMediaOwner    = "Media Owner"
	fieldTime          = "Time"
	fieldTimeTR        = "Zaman"
	fieldDate          = "Date"
	fieldDateTR        = "Tarih"
	fieldTopicName     = "Name"
	fieldTopicNameTR   = "Ad"
	fieldSavedOn       = "Saved on"
	fieldSavedOnTR     = "Kaydedilme tarihi"
	fieldSearch        = "Search"
	fieldSearchTR      = "Arama"
	reelPathFragment   = "/reel/"
	postPathFragment   = "/p/"
	unknownAccountName = "unknown"

	topLikedAccountsLimit     = 20
	topCommentedAccountsLimit = 20
	topSavedAccountsLimit     = 15
	recentSavesLimit          = 10
	topSearchesLimit          = 5
	topSearchWordsLimit       = 5
	searchWordMinLength       = 3
	recentSearchesLimit       = 10
	topStoryAccountsLimit     = 15
)

var errMissingReelsComments = archive.MissingKey(keyReelsComments)

// Like is one liked post or comment.
type Like struct {
	Account string    `json:"account"`
	Link    string    `json:"link,omitempty"`
	At      time.Time `json:"at,omitzero"`
}

// LikesResult summarizes liked posts.
type LikesResult struct {
	Total       int                      `json:"total"`
	Likes       []Like                   `json:"likes"`
	TopAccounts frequency.Table          `json:"topAccounts"`
	Timeline    []activity.TimelinePoint `json:"timeline"`
}

// LikedCommentsResult lists liked comments.
type LikedCommentsResult struct {
	Total    int    `json:"total"`
	Comments []Like `json:"comments"`
}

// FollowersResult is the relationship diff plus followers gained within the recent window.
type FollowersResult struct {
	relationships.Result
	RecentFollowers []relationships.Identity `json:"recentFollowers"`
}

// Comment is one comment left on a post or reel.
type Comment struct {
	Text       string    `json:"text,omitempty"`
	MediaOwner string    `json:"mediaOwner"`
	At         time.Time `json:"at,omitzero"`
	HasGIF     bool      `json:"hasGif"`
	GIFURL     string    `json:"gifUrl,omitempty"`
}

// CommentStats splits comments into text and GIF comments.
type CommentStats struct {
	TextComments int `json:"textComments"`
	GIFComments  int `json:"gifComments"`
}

// CommentsResult summarizes post or reel comments.
type CommentsResult struct {
	Total                int                      `json:"total"`
	Comments             []Comment                `json:"comments"`
	TopCommentedAccounts frequency.Table          `json:"topCommentedAccounts"`
	Timeline             []activity.TimelinePoint `json:"timeline"`
	Stats                CommentStats             `json:"stats"`
}

// TopicsResult holds the recommended topics and their categories.
type TopicsResult struct {
	Total      int               `json:"total"`
	Topics     []string          `json:"topics"`
	Categories categorize.Result `json:"categories"`
}

// SavedPost is one saved post or reel.
type SavedPost struct {
	Account string    `json:"account"`
	URL     string    `json:"url,omitempty"`
	At      time.Time `json:"at,omitzero"`
}

// ContentTypes counts saved reels and posts by URL shape.
type ContentTypes struct {
	Reels int `json:"reels"`
	Posts int `json:"posts"`
}

// SavedPostsResult summarizes saved media.
type SavedPostsResult struct {
	Total        int             `json:"total"`
	TopAccounts  frequency.Table `json:"topAccounts"`
	ContentTypes ContentTypes    `json:"contentTypes"`
	RecentSaves  []SavedPost     `json:"recentSaves"`
}

// ProfileListResult lists accounts such as close friends or recently unfollowed profiles.
type ProfileListResult struct {
	Total    int                      `json:"total"`
	Profiles []relationships.Identity `json:"profiles"`
}

// Search is one keyword search.
type Search struct {
	Query string    `json:"query"`
	At    time.Time `json:"at,omitzero"`
}

// SearchesResult summarizes keyword searches.
type SearchesResult struct {
	Total          int             `json:"total"`
	TopSearches    frequency.Table `json:"topSearches"`
	TopWords       frequency.Table `json:"topWords"`
	RecentSearches []Search        `json:"recentSearches"`
}

// StoryLikesResult summarizes liked stories.
type StoryLikesResult struct {
	Total          int             `json:"total"`
	TopAccounts    frequency.Table `json:"topAccounts"`
	UniqueAccounts int             `json:"uniqueAccounts"`
}

func repairedOr(value string, fallback string) string {
	repaired := textfix.Repair(strings.TrimSpace(value))
	if repaired == "" {
		return fallback
	}
	return repaired
}

func likesFromItems(items []listItem) []Like {
	likes := make([]Like, 0, len(items))
	for _, item := range items {
		entry := item.first()
		likes = append(likes, Like{
			Account: repairedOr(item.Title, unknownAccountName),
			Link:    entry.Href,
			At:      activity.UnixTime(entry.Timestamp),
		})
	}
	return likes
}

func likeEvents(likes []Like) []activity.Event {
	events := make([]activity.Event, 0, len(likes))
	for _, like := range likes {
		events = append(events, activity.Event{Actor: like.Account, At: like.At})
	}
	return events
}

func (parser *Parser) buildLikes(document likedPostsDocument) (LikesResult, error) {
	if document.Items == nil {
		return LikesResult{}, archive.MissingKey(keyLikedPosts)
	}
	likes := likesFromItems(*document.Items)
	accounts := make([]string, 0, len(likes))
	for _, like := range likes {
		accounts = append(accounts, like.Account)
	}
	return LikesResult{
		Total:       len(likes),
		Likes:       likes,
		TopAccounts: frequency.Rank(accounts, topLikedAccountsLimit),
		Timeline:    activity.Timeline(likeEvents(likes), parser.location, activity.Day),
	}, nil
}

func buildLikedComments(document likedCommentsDocument) (LikedCommentsResult, error) {
	if document.Items == nil {
		return LikedCommentsResult{}, archive.MissingKey(keyLikedComments)
	}
	comments := likesFromItems(*document.Items)
	return LikedCommentsResult{Total: len(comments), Comments: comments}, nil
}

// followerIdentities reads followers_1.json entries, keyed by string_list_data[0].value.
func followerIdentities(items []listItem) []relationships.Identity {
	identities := make([]relationships.Identity, 0, len(items))
	for _, item := range items {
		entry := item.first()
		identities = append(identities, relationships.Identity{
			Key:   repairedOr(entry.Value, unknownAccountName),
			Link:  entry.Href,
			Since: activity.UnixTime(entry.Timestamp),
		})
	}
	return identities
}

// followingIdentities reads following.json entries, keyed by title with the list value as fallback.
func followingIdentities(items []listItem) []relationships.Identity {
	identities := make([]relationships.Identity, 0, len(items))
	for _, item := range items {
		entry := item.first()
		key := strings.TrimSpace(item.Title)
		if key == "" {
			key = entry.Value
		}
		identities = append(identities, relationships.Identity{
			Key:   repairedOr(key, unknownAccountName),
			Link:  entry.Href,
			Since: activity.UnixTime(entry.Timestamp),
		})
	}
	return identities
}

func profileList(items []listItem) ProfileListResult {
	profiles := []relationships.Identity{}
	for _, item := range items {
		entry := item.first()
		name := textfix.Repair(strings.TrimSpace(entry.Value))
		if name == "" {
			continue
		}
		profiles = append(profiles, relationships.Identity{Key: name, Link: entry.Href, Since: activity.UnixTime(entry.Timestamp)})
	}
	return ProfileListResult{Total: len(profiles), Profiles: profiles}
}

func buildCloseFriends(document closeFriendsDocument) (ProfileListResult, error) {
	if document.Items == nil {
		return ProfileListResult{}, archive.MissingKey(keyCloseFriends)
	}
	return profileList(*document.Items), nil
}

func buildUnfollowed(document unfollowedDocument) (ProfileListResult, error) {
	if document.Items == nil {
		return ProfileListResult{}, archive.MissingKey(keyUnfollowed)
	}
	return profileList(*document.Items), nil
}

func (parser *Parser) buildComments(items []mapItem) CommentsResult {
	comments := make([]Comment, 0, len(items))
	owners := make([]string, 0, len(items))
	events := make([]activity.Event, 0, len(items))
	stats := CommentStats{}
	for _, item := range items {
		comment := Comment{
			Text:       textfix.Repair(item.lookup(fieldComment).Value),
			MediaOwner: repairedOr(item.lookup(fieldMediaOwner).Value, unknownAccountName),
			At:         activity.UnixTime(item.lookup(fieldTime).Timestamp),
		}
		if len(item.MediaListData) > 0 && item.MediaListData[0].URI != "" {
			comment.HasGIF = true
			comment.GIFURL = item.MediaListData[0].URI
			stats.GIFComments++
		}
		if comment.Text != "" {
			stats.TextComments++
		}
		comments = append(comments, comment)
		owners = append(owners, comment.MediaOwner)
		events = append(events, activity.Event{Actor: comment.MediaOwner, At: comment.At})
	}
	return CommentsResult{
		Total:                len(comments),
		Comments:             comments,
		TopCommentedAccounts: frequency.Rank(owners, topCommentedAccountsLimit),
		Timeline:             activity.Timeline(events, parser.location, activity.Day),
		Stats:                stats,
	}
}

func (parser *Parser) buildPostComments(items []mapItem) (CommentsResult, error) {
	return parser.buildComments(items), nil
}

func (parser *Parser) buildReelsComments(document reelsCommentsDocument) (CommentsResult, error) {
	return parser.buildComments(document.Items), nil
}

func commentEvents(result *CommentsResult) []activity.Event {
	if result == nil {
		return nil
	}
	events := make([]activity.Event, 0, len(result.Comments))
	for _, comment := range result.Comments {
		events = append(events, activity.Event{Actor: comment.MediaOwner, At: comment.At})
	}
	return events
}

func (parser *Parser) buildTopics(document topicsDocument) (TopicsResult, error) {
	if document.Items == nil {
		return TopicsResult{}, archive.MissingKey(keyTopics)
	}
	topics := []string{}
	for _, item := range *document.Items {
		name := textfix.Repair(strings.TrimSpace(item.lookup(fieldTopicNameTR, fieldTopicName).Value))
		if name != "" {
			topics = append(topics, name)
		}
	}
	return TopicsResult{
		Total:      len(topics),
		Topics:     topics,
		Categories: parser.topics.Categorize(topics),
	}, nil
}

func buildSavedPosts(document savedPostsDocument) (SavedPostsResult, error) {
	if document.Items == nil {
		return SavedPostsResult{}, archive.MissingKey(keySavedMedia)
	}
	saved := []SavedPost{}
	accounts := []string{}
	contentTypes := ContentTypes{}
	for _, item := range *document.Items {
		account := textfix.Repair(strings.TrimSpace(item.Title))
		if account == "" {
			continue
		}
		savedOn := item.lookup(fieldSavedOn, fieldSavedOnTR)
		switch {
		case strings.Contains(savedOn.Href, reelPathFragment):
			contentTypes.Reels++
		case strings.Contains(savedOn.Href, postPathFragment):
			contentTypes.Posts++
		}
		saved = append(saved, SavedPost{Account: account, URL: savedOn.Href, At: activity.UnixTime(savedOn.Timestamp)})
		accounts = append(accounts, account)
	}

	recent := append([]SavedPost(nil), saved...)
	sort.SliceStable(recent, func(firstIndex, secondIndex int) bool {
		return recent[firstIndex].At.After(recent[secondIndex].At)
	})
	if len(recent) > recentSavesLimit {
		recent = recent[:recentSavesLimit]
	}
	if recent == nil {
		recent = []SavedPost{}
	}

	return SavedPostsResult{
		Total:        len(saved),
		TopAccounts:  frequency.Rank(accounts, topSavedAccountsLimit),
		ContentTypes: contentTypes,
		RecentSaves:  recent,
	}, nil
}

func buildSearches(document searchesDocument) (SearchesResult, error) {
	if document.Items == nil {
		return SearchesResult{}, archive.MissingKey(keySearches)
	}
	searches := []Search{}
	queries := []string{}
	for _, item := range *document.Items {
		query := textfix.Repair(strings.TrimSpace(item.lookup(fieldSearchTR, fieldSearch).Value))
		if query == "" {
			continue
		}
		at := activity.UnixTime(item.lookup(fieldDateTR, fieldDate, fieldTime).Timestamp)
		searches = append(searches, Search{Query: query, At: at})
		queries = append(queries, query)
	}

	recent := searches
	if len(recent) > recentSearchesLimit {
		recent = recent[:recentSearchesLimit]
	}
	return SearchesResult{
		Total:          len(searches),
		TopSearches:    frequency.Rank(queries, topSearchesLimit),
		TopWords:       frequency.Rank(frequency.Words(queries, searchWordMinLength), topSearchWordsLimit),
		RecentSearches: recent,
	}, nil
}

func buildStoryLikes(document storyLikesDocument) (StoryLikesResult, error) {
	if document.Items == nil {
		return StoryLikesResult{}, archive.MissingKey(keyStoryLikes)
	}
	accounts := []string{}
	for _, item := range *document.Items {
		account := textfix.Repair(strings.TrimSpace(item.Title))
		if account != "" {
			accounts = append(accounts, account)
		}
	}
	ranked := frequency.Rank(accounts, topStoryAccountsLimit)
	return StoryLikesResult{Total: len(accounts), TopAccounts: ranked, UniqueAccounts: ranked.Distinct}, nil
}
