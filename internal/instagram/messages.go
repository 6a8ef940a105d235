package instagram

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/f-sync/socialstats/internal/archive"
	"github.com/f-sync/socialstats/internal/conversations"
	"github.com/f-sync/socialstats/internal/pipeline"
	"github.com/f-sync/socialstats/internal/textfix"
)

const (
	inboxPathFragment  = "/messages/inbox/"
	messagePartPattern = `^message_(\d+)\.json$`
)

var reMessagePart = regexp.MustCompile(messagePartPattern)

type messagePart struct {
	path   string
	number int
}

// inboxThreadParts groups the message_N.json files under the inbox by thread folder, each group in
// part order.
func inboxThreadParts(files archive.FileSet) map[string][]messagePart {
	partsByFolder := map[string][]messagePart{}
	for _, filePath := range archive.Select(files, isInboxMessagePart) {
		match := reMessagePart.FindStringSubmatch(archive.BaseName(filePath))
		number, _ := strconv.Atoi(match[1])
		folder := path.Dir(filePath)
		partsByFolder[folder] = append(partsByFolder[folder], messagePart{path: filePath, number: number})
	}
	for _, parts := range partsByFolder {
		sort.SliceStable(parts, func(firstIndex, secondIndex int) bool {
			return parts[firstIndex].number < parts[secondIndex].number
		})
	}
	return partsByFolder
}

func isInboxMessagePart(filePath string) bool {
	return strings.Contains("/"+filePath, inboxPathFragment) && reMessagePart.MatchString(archive.BaseName(filePath))
}

// loadThreads decodes every inbox thread. Unreadable parts are recorded and skipped. It reports
// false when the archive has no inbox message files at all.
func loadThreads(collector *pipeline.Collector) ([]conversations.Thread, bool) {
	partsByFolder := inboxThreadParts(collector.Files())
	if len(partsByFolder) == 0 {
		return nil, false
	}

	folders := make([]string, 0, len(partsByFolder))
	for folder := range partsByFolder {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	threads := make([]conversations.Thread, 0, len(folders))
	for _, folder := range folders {
		thread := conversations.Thread{ID: folder}
		decodedParts := 0
		for _, part := range partsByFolder[folder] {
			var document threadDocument
			if err := archive.DecodeJSON(collector.Files()[part.path], &document); err != nil {
				collector.Record(part.path, err)
				continue
			}
			if document.Messages == nil {
				collector.Record(part.path, archive.MissingKey(keyThreadMessages))
				continue
			}
			if decodedParts == 0 {
				thread.Title = textfix.Repair(document.Title)
				for _, participant := range document.Participants {
					thread.Participants = append(thread.Participants, textfix.Repair(participant.Name))
				}
			}
			decodedParts++
			for _, message := range *document.Messages {
				thread.Messages = append(thread.Messages, convertMessage(message))
			}
		}
		if decodedParts > 0 {
			threads = append(threads, thread)
		}
	}
	return threads, true
}

func convertMessage(message messageDocument) conversations.Message {
	converted := conversations.Message{
		Sender: textfix.Repair(message.SenderName),
		Text:   textfix.Repair(message.Content),
		Share:  message.hasShare(),
		Media:  message.hasMedia(),
	}
	if message.TimestampMS != 0 {
		converted.At = time.UnixMilli(message.TimestampMS)
	}
	for _, reaction := range message.Reactions {
		converted.Reactions = append(converted.Reactions, conversations.Reaction{
			Actor:    textfix.Repair(reaction.Actor),
			Reaction: textfix.Repair(reaction.Reaction),
		})
	}
	return converted
}
