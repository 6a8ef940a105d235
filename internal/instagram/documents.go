package instagram

import (
	"bytes"
	"encoding/json"
)

// Raw shapes of the Instagram "download your information" JSON files.

type stringListEntry struct {
	Href      string `json:"href"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

type listItem struct {
	Title          string            `json:"title"`
	StringListData []stringListEntry `json:"string_list_data"`
}

func (item listItem) first() stringListEntry {
	if len(item.StringListData) == 0 {
		return stringListEntry{}
	}
	return item.StringListData[0]
}

type mapValue struct {
	Href      string `json:"href"`
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

type mediaListEntry struct {
	URI string `json:"uri"`
}

type mapItem struct {
	Title         string              `json:"title"`
	StringMapData map[string]mapValue `json:"string_map_data"`
	MediaListData []mediaListEntry    `json:"media_list_data"`
}

// lookup returns the first present value among localized field names.
func (item mapItem) lookup(fieldNames ...string) mapValue {
	for _, fieldName := range fieldNames {
		if value, found := item.StringMapData[fieldName]; found {
			return value
		}
	}
	return mapValue{}
}

type likedPostsDocument struct {
	Items *[]listItem `json:"likes_media_likes"`
}

type likedCommentsDocument struct {
	Items *[]listItem `json:"likes_comment_likes"`
}

type followingDocument struct {
	Items *[]listItem `json:"relationships_following"`
}

type closeFriendsDocument struct {
	Items *[]listItem `json:"relationships_close_friends"`
}

type unfollowedDocument struct {
	Items *[]listItem `json:"relationships_unfollowed_users"`
}

type storyLikesDocument struct {
	Items *[]listItem `json:"story_activities_story_likes"`
}

type loginActivityDocument struct {
	Items *[]mapItem `json:"account_history_login_history"`
}

type topicsDocument struct {
	Items *[]mapItem `json:"topics_your_topics"`
}

type savedPostsDocument struct {
	Items *[]mapItem `json:"saved_saved_media"`
}

type searchesDocument struct {
	Items *[]mapItem `json:"searches_keyword"`
}

// reelsCommentsDocument accepts both the bare array layout and the newer
// {"comments_reels_comments": [...]} layout.
type reelsCommentsDocument struct {
	Items []mapItem
}

func (document *reelsCommentsDocument) UnmarshalJSON(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &document.Items)
	}
	var wrapped struct {
		Items *[]mapItem `json:"comments_reels_comments"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	if wrapped.Items == nil {
		return errMissingReelsComments
	}
	document.Items = *wrapped.Items
	return nil
}

type participantDocument struct {
	Name string `json:"name"`
}

type reactionDocument struct {
	Reaction string `json:"reaction"`
	Actor    string `json:"actor"`
}

type messageDocument struct {
	SenderName  string             `json:"sender_name"`
	TimestampMS int64              `json:"timestamp_ms"`
	Content     string             `json:"content"`
	Share       json.RawMessage    `json:"share"`
	Photos      []json.RawMessage  `json:"photos"`
	Videos      []json.RawMessage  `json:"videos"`
	AudioFiles  []json.RawMessage  `json:"audio_files"`
	Reactions   []reactionDocument `json:"reactions"`
}

func (message messageDocument) hasShare() bool {
	trimmed := bytes.TrimSpace(message.Share)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func (message messageDocument) hasMedia() bool {
	return len(message.Photos) > 0 || len(message.Videos) > 0 || len(message.AudioFiles) > 0
}

type threadDocument struct {
	Title        string                `json:"title"`
	Participants []participantDocument `json:"participants"`
	Messages     *[]messageDocument    `json:"messages"`
}
