// Package frequency counts and ranks string keys such as accounts, hashtags and search words.
package frequency

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Entry is the number of occurrences of one key.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Table is a ranking sorted by count descending with first-seen order among ties. Total and
// Distinct describe the input before truncation.
type Table struct {
	Entries  []Entry `json:"entries"`
	Total    int     `json:"total"`
	Distinct int     `json:"distinct"`
}

// Keys returns the ranked keys in order.
func (table Table) Keys() []string {
	keys := make([]string, 0, len(table.Entries))
	for _, entry := range table.Entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Share is a ranked entry together with its percentage of the input, rounded to one decimal.
type Share struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution converts the table entries into shares of table.Total.
func (table Table) Distribution() []Share {
	shares := make([]Share, 0, len(table.Entries))
	for _, entry := range table.Entries {
		shares = append(shares, Share{Key: entry.Key, Count: entry.Count, Percentage: percentOneDecimal(entry.Count, table.Total)})
	}
	return shares
}

func percentOneDecimal(count int, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// Rank groups items by exact string equality and keeps the topN most frequent. A topN of zero or
// less keeps every key. The input slice is not modified.
func Rank(items []string, topN int) Table {
	indexByKey := make(map[string]int, len(items))
	entries := []Entry{}
	for _, item := range items {
		if index, seen := indexByKey[item]; seen {
			entries[index].Count++
			continue
		}
		indexByKey[item] = len(entries)
		entries = append(entries, Entry{Key: item, Count: 1})
	}

	sort.SliceStable(entries, func(firstIndex, secondIndex int) bool {
		return entries[firstIndex].Count > entries[secondIndex].Count
	})

	table := Table{Total: len(items), Distinct: len(entries)}
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	table.Entries = entries
	return table
}

// Words splits every text on whitespace, lowercases the tokens and keeps those with at least
// minLength runes.
func Words(texts []string, minLength int) []string {
	words := []string{}
	for _, text := range texts {
		for _, token := range strings.Fields(strings.ToLower(text)) {
			if utf8.RuneCountInString(token) >= minLength {
				words = append(words, token)
			}
		}
	}
	return words
}
