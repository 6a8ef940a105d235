package twitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/f-sync/socialstats/internal/archive"
)

// Raw shapes of the Twitter/X archive data files. Every file is a JavaScript assignment of a JSON
// array whose items wrap the payload in a single named key.

const flexibleIntErrorFormat = "%w: count %s is not a number"

// flexibleInt accepts counts encoded either as JSON numbers or as numeric strings.
type flexibleInt int

func (value *flexibleInt) UnmarshalJSON(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if bytes.Equal(trimmed, []byte("null")) {
		*value = 0
		return nil
	}
	text := string(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		if text == "" {
			*value = 0
			return nil
		}
	}
	parsed, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf(flexibleIntErrorFormat, archive.ErrUnexpectedShape, text)
	}
	*value = flexibleInt(parsed)
	return nil
}

type accountDocument struct {
	Email              string `json:"email"`
	Username           string `json:"username"`
	AccountID          string `json:"accountId"`
	CreatedAt          string `json:"createdAt"`
	AccountDisplayName string `json:"accountDisplayName"`
}

type accountItem struct {
	Account *accountDocument `json:"account"`
}

type hashtagDocument struct {
	Text string `json:"text"`
}

type mentionDocument struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type entitiesDocument struct {
	Hashtags     []hashtagDocument `json:"hashtags"`
	UserMentions []mentionDocument `json:"user_mentions"`
}

type tweetDocument struct {
	IDStr             string           `json:"id_str"`
	FullText          string           `json:"full_text"`
	Source            string           `json:"source"`
	CreatedAt         string           `json:"created_at"`
	FavoriteCount     flexibleInt      `json:"favorite_count"`
	RetweetCount      flexibleInt      `json:"retweet_count"`
	Lang              string           `json:"lang"`
	InReplyToStatusID string           `json:"in_reply_to_status_id"`
	Entities          entitiesDocument `json:"entities"`
}

// tweetItem accepts both the wrapped {"tweet": {...}} layout and older flat tweet objects.
type tweetItem struct {
	tweetDocument
	Tweet *tweetDocument `json:"tweet"`
}

func (item tweetItem) document() tweetDocument {
	if item.Tweet != nil {
		return *item.Tweet
	}
	return item.tweetDocument
}

type likeDocument struct {
	TweetID     string `json:"tweetId"`
	FullText    string `json:"fullText"`
	ExpandedURL string `json:"expandedUrl"`
}

type likeItem struct {
	Like likeDocument `json:"like"`
}

type accountLinkDocument struct {
	AccountID string `json:"accountId"`
	UserLink  string `json:"userLink"`
}

type followerItem struct {
	Follower accountLinkDocument `json:"follower"`
}

type followingItem struct {
	Following accountLinkDocument `json:"following"`
}

type blockItem struct {
	Blocking accountLinkDocument `json:"blocking"`
}

type muteItem struct {
	Muting accountLinkDocument `json:"muting"`
}

type interestDocument struct {
	Name       string `json:"name"`
	IsDisabled bool   `json:"isDisabled"`
}

type languageDocument struct {
	Language   string `json:"language"`
	IsDisabled bool   `json:"isDisabled"`
}

type personalizationDocument struct {
	Interests struct {
		Interests []interestDocument `json:"interests"`
	} `json:"interests"`
	Demographics struct {
		Languages  []languageDocument `json:"languages"`
		GenderInfo struct {
			Gender string `json:"gender"`
		} `json:"genderInfo"`
	} `json:"demographics"`
}

type personalizationItem struct {
	P13nData *personalizationDocument `json:"p13nData"`
}

type screenNameChangeDocument struct {
	ChangedAt   string `json:"changedAt"`
	ChangedFrom string `json:"changedFrom"`
	ChangedTo   string `json:"changedTo"`
}

type screenNameChangeItem struct {
	ScreenNameChange struct {
		AccountID        string                   `json:"accountId"`
		ScreenNameChange screenNameChangeDocument `json:"screenNameChange"`
	} `json:"screenNameChange"`
}

type urlDocument struct {
	URL      string `json:"url"`
	Expanded string `json:"expanded"`
	Display  string `json:"display"`
}

type dmReactionDocument struct {
	SenderID    string `json:"senderId"`
	ReactionKey string `json:"reactionKey"`
	CreatedAt   string `json:"createdAt"`
}

type messageCreateDocument struct {
	ID          string               `json:"id"`
	SenderID    string               `json:"senderId"`
	RecipientID string               `json:"recipientId"`
	Text        string               `json:"text"`
	CreatedAt   string               `json:"createdAt"`
	MediaURLs   []string             `json:"mediaUrls"`
	URLs        []urlDocument        `json:"urls"`
	Reactions   []dmReactionDocument `json:"reactions"`
}

type dmEventDocument struct {
	MessageCreate *messageCreateDocument `json:"messageCreate"`
}

type dmConversationItem struct {
	DMConversation struct {
		ConversationID string            `json:"conversationId"`
		Messages       []dmEventDocument `json:"messages"`
	} `json:"dmConversation"`
}

type ipAuditItem struct {
	IPAudit struct {
		AccountID string `json:"accountId"`
		CreatedAt string `json:"createdAt"`
		LoginIP   string `json:"loginIp"`
	} `json:"ipAudit"`
}
