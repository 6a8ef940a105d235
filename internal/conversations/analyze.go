package conversations

import "sort"

const unknownPartner = "Unknown"

type participation struct {
	threads  int
	messages int
}

// InferOwner scans every non-empty thread and returns the identity that appears in the most
// threads, then sent the most messages, then sorts first by name. The result does not depend on
// thread order.
func InferOwner(threads []Thread) string {
	participationByName := map[string]*participation{}
	record := func(name string) *participation {
		entry, exists := participationByName[name]
		if !exists {
			entry = &participation{}
			participationByName[name] = entry
		}
		return entry
	}

	for _, thread := range threads {
		if len(thread.Messages) == 0 {
			continue
		}
		seenInThread := map[string]struct{}{}
		for _, participant := range thread.Participants {
			seenInThread[participant] = struct{}{}
		}
		for _, message := range thread.Messages {
			seenInThread[message.Sender] = struct{}{}
			record(message.Sender).messages++
		}
		for name := range seenInThread {
			if name != "" {
				record(name).threads++
			}
		}
	}

	owner := ""
	var best *participation
	for name, entry := range participationByName {
		if name == "" {
			continue
		}
		if best == nil || ranksAbove(name, entry, owner, best) {
			owner = name
			best = entry
		}
	}
	return owner
}

func ranksAbove(name string, entry *participation, currentName string, current *participation) bool {
	if entry.threads != current.threads {
		return entry.threads > current.threads
	}
	if entry.messages != current.messages {
		return entry.messages > current.messages
	}
	return name < currentName
}

// Analyze commits to one owner identity across all threads, then classifies every thread against
// it. It returns nil when no thread carries messages.
func Analyze(threads []Thread, options Options) *Summary {
	topN := options.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	owner := options.Owner
	inferred := false
	if owner == "" {
		owner = InferOwner(threads)
		inferred = true
	}

	conversations := []Conversation{}
	for _, thread := range threads {
		if len(thread.Messages) == 0 {
			continue
		}
		conversations = append(conversations, analyzeThread(thread, owner))
	}
	if len(conversations) == 0 {
		return nil
	}
	sortCanonical(conversations)

	summary := &Summary{
		OwnerName:     owner,
		OwnerInferred: inferred,
		Conversations: conversations,
	}
	for _, conversation := range conversations {
		summary.Totals.add(conversation)
	}

	summary.TopByTotal = topBy(conversations, topN, func(conversation Conversation) int { return conversation.TotalMessages })
	summary.TopBySentText = topBy(conversations, topN, func(conversation Conversation) int { return conversation.Sent.Text })
	summary.TopByReceivedText = topBy(conversations, topN, func(conversation Conversation) int { return conversation.Received.Text })
	summary.TopBySentShares = topBy(conversations, topN, func(conversation Conversation) int { return conversation.Sent.Shares })
	summary.TopByReceivedShares = topBy(conversations, topN, func(conversation Conversation) int { return conversation.Received.Shares })
	return summary
}

func analyzeThread(thread Thread, owner string) Conversation {
	conversation := Conversation{
		ThreadID:      thread.ID,
		Partner:       partnerOf(thread, owner),
		Group:         len(thread.Participants) > 2,
		TotalMessages: len(thread.Messages),
	}

	for _, message := range thread.Messages {
		counts := &conversation.Received
		if message.Sender == owner {
			counts = &conversation.Sent
		}
		counts.Total++
		switch {
		case message.Share:
			counts.Shares++
		case message.Media:
			counts.Media++
		default:
			counts.Text++
		}

		for _, reaction := range message.Reactions {
			if reaction.Actor == message.Sender {
				continue
			}
			if reaction.Actor == owner {
				conversation.ReactionsSent++
			} else {
				conversation.ReactionsReceived++
			}
		}

		if message.At.After(conversation.LastMessage) {
			conversation.LastMessage = message.At
		}
	}
	return conversation
}

// partnerOf names the other side of a thread: the title of a group chat, otherwise the first
// participant or sender that is not the owner.
func partnerOf(thread Thread, owner string) string {
	if len(thread.Participants) > 2 && thread.Title != "" {
		return thread.Title
	}
	for _, participant := range thread.Participants {
		if participant != "" && participant != owner {
			return participant
		}
	}
	for _, message := range thread.Messages {
		if message.Sender != "" && message.Sender != owner {
			return message.Sender
		}
	}
	if thread.Title != "" {
		return thread.Title
	}
	return unknownPartner
}

func (totals *Totals) add(conversation Conversation) {
	totals.Conversations++
	totals.Messages += conversation.TotalMessages
	totals.Sent += conversation.Sent.Total
	totals.Received += conversation.Received.Total
	totals.SentText += conversation.Sent.Text
	totals.ReceivedText += conversation.Received.Text
	totals.SentShares += conversation.Sent.Shares
	totals.ReceivedShares += conversation.Received.Shares
	totals.SentMedia += conversation.Sent.Media
	totals.ReceivedMedia += conversation.Received.Media
	totals.ReactionsSent += conversation.ReactionsSent
	totals.ReactionsReceived += conversation.ReactionsReceived
}

// sortCanonical orders conversations independently of the order threads were supplied in.
func sortCanonical(conversations []Conversation) {
	sort.SliceStable(conversations, func(firstIndex, secondIndex int) bool {
		first := conversations[firstIndex]
		second := conversations[secondIndex]
		if first.ThreadID != second.ThreadID {
			return first.ThreadID < second.ThreadID
		}
		if first.Partner != second.Partner {
			return first.Partner < second.Partner
		}
		if first.TotalMessages != second.TotalMessages {
			return first.TotalMessages < second.TotalMessages
		}
		return first.LastMessage.Before(second.LastMessage)
	})
}

func topBy(conversations []Conversation, topN int, metric func(Conversation) int) []Conversation {
	ranked := append([]Conversation(nil), conversations...)
	sort.SliceStable(ranked, func(firstIndex, secondIndex int) bool {
		return metric(ranked[firstIndex]) > metric(ranked[secondIndex])
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
