package twitter

import (
	"strings"

	"github.com/f-sync/socialstats/internal/conversations"
	"github.com/f-sync/socialstats/internal/textfix"
)

const conversationIDSeparator = "-"

// ConversationParticipants splits a one-to-one conversation id such as "123-456" into account ids.
func ConversationParticipants(conversationID string) []string {
	participants := []string{}
	for _, accountID := range strings.Split(conversationID, conversationIDSeparator) {
		if accountID != "" {
			participants = append(participants, accountID)
		}
	}
	return participants
}

// dmThreads converts the direct-message conversations. Events other than created messages, such as
// participants joining, are skipped.
func dmThreads(items []dmConversationItem) []conversations.Thread {
	threads := make([]conversations.Thread, 0, len(items))
	for _, item := range items {
		conversation := item.DMConversation
		thread := conversations.Thread{
			ID:           conversation.ConversationID,
			Participants: ConversationParticipants(conversation.ConversationID),
		}
		for _, event := range conversation.Messages {
			if event.MessageCreate == nil {
				continue
			}
			thread.Messages = append(thread.Messages, convertDirectMessage(*event.MessageCreate))
		}
		threads = append(threads, thread)
	}
	return threads
}

func convertDirectMessage(message messageCreateDocument) conversations.Message {
	converted := conversations.Message{
		Sender: message.SenderID,
		At:     parseTime(accountDateLayout, message.CreatedAt),
		Text:   textfix.Repair(message.Text),
		Share:  len(message.URLs) > 0,
		Media:  len(message.MediaURLs) > 0,
	}
	for _, reaction := range message.Reactions {
		converted.Reactions = append(converted.Reactions, conversations.Reaction{
			Actor:    reaction.SenderID,
			Reaction: reaction.ReactionKey,
		})
	}
	return converted
}
