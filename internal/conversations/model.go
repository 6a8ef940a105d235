// Package conversations splits direct-message threads into sent and received statistics for the
// archive owner and ranks conversations by several metrics.
package conversations

import "time"

// DefaultTopN is the ranking length used when Options.TopN is not positive.
const DefaultTopN = 10

// Reaction is an emoji reaction left on a message.
type Reaction struct {
	Actor    string
	Reaction string
}

// Message is one direct message. Share marks shared external content such as a post, reel or link;
// Media marks attached photos, videos or audio.
type Message struct {
	Sender    string
	At        time.Time
	Text      string
	Share     bool
	Media     bool
	Reactions []Reaction
}

// Thread is one conversation as found in an export.
type Thread struct {
	ID           string
	Title        string
	Participants []string
	Messages     []Message
}

// Counts splits a message total by kind.
type Counts struct {
	Total  int `json:"total"`
	Text   int `json:"text"`
	Shares int `json:"shares"`
	Media  int `json:"media"`
}

// Conversation holds the owner-relative statistics of one thread.
type Conversation struct {
	ThreadID          string    `json:"threadId"`
	Partner           string    `json:"partner"`
	Group             bool      `json:"group"`
	TotalMessages     int       `json:"totalMessages"`
	Sent              Counts    `json:"sent"`
	Received          Counts    `json:"received"`
	ReactionsSent     int       `json:"reactionsSent"`
	ReactionsReceived int       `json:"reactionsReceived"`
	LastMessage       time.Time `json:"lastMessage,omitzero"`
}

// Totals aggregates every analyzed conversation.
type Totals struct {
	Conversations     int `json:"conversations"`
	Messages          int `json:"messages"`
	Sent              int `json:"sent"`
	Received          int `json:"received"`
	SentText          int `json:"sentText"`
	ReceivedText      int `json:"receivedText"`
	SentShares        int `json:"sentShares"`
	ReceivedShares    int `json:"receivedShares"`
	SentMedia         int `json:"sentMedia"`
	ReceivedMedia     int `json:"receivedMedia"`
	ReactionsSent     int `json:"reactionsSent"`
	ReactionsReceived int `json:"reactionsReceived"`
}

// Summary is the result of analyzing every thread of an archive.
type Summary struct {
	OwnerName           string         `json:"ownerName"`
	OwnerInferred       bool           `json:"ownerInferred"`
	Totals              Totals         `json:"totals"`
	Conversations       []Conversation `json:"conversations"`
	TopByTotal          []Conversation `json:"topByTotal"`
	TopBySentText       []Conversation `json:"topBySentText"`
	TopByReceivedText   []Conversation `json:"topByReceivedText"`
	TopBySentShares     []Conversation `json:"topBySentShares"`
	TopByReceivedShares []Conversation `json:"topByReceivedShares"`
}

// Options tunes Analyze. Owner pins an identity known from elsewhere in the export and disables
// inference.
type Options struct {
	TopN  int
	Owner string
}
